package samurai

import (
	"context"
	"io"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/dom"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

var (
	rxSrcsetURL       = regexp.MustCompile(`(?i)(\S+)(\s+[\d.]+[xw])?(\s*(?:,|$))`)
	rxImageDataSrcset = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|svg|webp)\s+\d`)
	rxImageDataSrc    = regexp.MustCompile(`(?i)^\s*\S+\.(jpg|jpeg|png|gif|svg|webp)\S*\s*$`)
)

// gridMatchers lists where the puzzle grid is looked for, in order.
var gridMatchers = []struct {
	tag, attr, keyword string
}{
	{"table", "id", "puzzle"},
	{"div", "id", "puzzle"},
	{"table", "class", "sudoku"},
	{"div", "class", "sudoku"},
}

// extractPuzzleMarkup cleans the page markup and returns the puzzle grid
// together with the page stylesheets. When there is no grid, the content
// of the page body is returned and found is false. The cookies are sent
// along when downloading the page resources.
func (d *Downloader) extractPuzzleMarkup(ctx context.Context, input io.Reader, baseURL *nurl.URL, cookies []*http.Cookie) (content string, found bool, err error) {
	// Parse input into HTML document
	doc, err := html.Parse(input)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to parse HTML")
	}

	// Prepare documents by doing these steps :
	// - Remove all script and noscript tags
	// - Remove all comments in documents
	// - Convert data-src of lazy images into src
	// - Convert relative URL into absolute URL
	removeScripts(doc)
	removeComments(doc)
	convertLazyImageAttrs(doc)
	if baseURL != nil {
		convertRelativeURLs(doc, baseURL)
	}

	root := findPuzzleGrid(doc)
	found = root != nil
	if !found {
		root = doc
		if bodies := dom.GetElementsByTagName(doc, "body"); len(bodies) > 0 {
			root = bodies[0]
		}
	}

	// Stylesheets outside of the kept content are carried along.
	var styles []*html.Node
	for _, node := range dom.GetElementsByTagName(doc, "*") {
		if dom.TagName(node) != "style" && !isStylesheet(node) {
			continue
		}
		if !isDescendant(node, root) {
			styles = append(styles, node)
		}
	}

	// Embed images and stylesheet resources of the kept nodes.
	emb := d.newEmbedder(cookies)
	g, ctx := errgroup.WithContext(ctx)
	for _, node := range resourceNodes(root, styles) {
		node := node
		g.Go(func() error {
			emb.processNode(ctx, node, baseURL)
			return nil
		})
	}
	g.Wait()

	var sb strings.Builder
	for _, style := range styles {
		sb.WriteString(dom.OuterHTML(style))
		sb.WriteString("\n")
	}

	if found {
		sb.WriteString(dom.OuterHTML(root))
	} else {
		sb.WriteString(dom.InnerHTML(root))
	}

	return sb.String(), found, nil
}

// findPuzzleGrid returns the element that holds the puzzle grid, or nil.
func findPuzzleGrid(doc *html.Node) *html.Node {
	for _, m := range gridMatchers {
		for _, node := range dom.GetElementsByTagName(doc, m.tag) {
			value := strings.ToLower(dom.GetAttribute(node, m.attr))
			if strings.Contains(value, m.keyword) {
				return node
			}
		}
	}
	return nil
}

// isDescendant reports whether node is inside ancestor.
func isDescendant(node, ancestor *html.Node) bool {
	for p := node.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// isStylesheet reports whether node is a <link rel="stylesheet">.
func isStylesheet(node *html.Node) bool {
	if dom.TagName(node) != "link" {
		return false
	}

	for _, rel := range strings.Fields(strings.ToLower(dom.GetAttribute(node, "rel"))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}

// resourceNodes returns the nodes which might have a subresource: the
// extra style nodes, and below root every node with inline style, every
// style, stylesheet link and img. Each node is returned once.
func resourceNodes(root *html.Node, styles []*html.Node) []*html.Node {
	seen := make(map[*html.Node]struct{})
	var nodes []*html.Node
	add := func(node *html.Node) {
		if _, exist := seen[node]; !exist {
			seen[node] = struct{}{}
			nodes = append(nodes, node)
		}
	}

	for _, style := range styles {
		add(style)
	}

	candidates := append([]*html.Node{root}, dom.GetElementsByTagName(root, "*")...)
	for _, node := range candidates {
		if node.Type != html.ElementNode {
			continue
		}

		switch {
		case dom.TagName(node) == "style", dom.TagName(node) == "img", isStylesheet(node):
			add(node)
		default:
			if strings.TrimSpace(dom.GetAttribute(node, "style")) != "" {
				add(node)
			}
		}
	}

	return nodes
}

func (e *embedder) processNode(ctx context.Context, node *html.Node, baseURL *nurl.URL) {
	if style := dom.GetAttribute(node, "style"); strings.TrimSpace(style) != "" {
		newStyle := e.processCSS(ctx, strings.NewReader(style), baseURL)
		dom.SetAttribute(node, "style", newStyle)
	}

	parentURL := ""
	if baseURL != nil {
		parentURL = baseURL.String()
	}

	switch dom.TagName(node) {
	case "link":
		if isStylesheet(node) {
			e.inlineStylesheet(ctx, node, parentURL)
		}
	case "style":
		newCSS := e.processCSS(ctx, strings.NewReader(dom.TextContent(node)), baseURL)
		dom.SetTextContent(node, newCSS)
	case "img":
		if src := dom.GetAttribute(node, "src"); src != "" {
			dom.SetAttribute(node, "src", e.processURL(ctx, src, parentURL))
		}
		// The embedded src is enough, srcset would point back to the site.
		dom.RemoveAttribute(node, "srcset")
	}
}

// convertLazyImageAttrs copies data-src and data-srcset of lazy loaded
// images into src and srcset, since scripts are gone from the saved page.
func convertLazyImageAttrs(doc *html.Node) {
	for _, img := range dom.GetAllNodesWithTag(doc, "img", "picture") {
		src := dom.GetAttribute(img, "src")
		srcset := dom.GetAttribute(img, "srcset")
		if (src != "" || srcset != "") && !strings.Contains(strings.ToLower(dom.ClassName(img)), "lazy") {
			continue
		}

		for _, attr := range img.Attr {
			if attr.Key == "src" || attr.Key == "srcset" {
				continue
			}

			switch {
			case rxImageDataSrcset.MatchString(attr.Val):
				dom.SetAttribute(img, "srcset", attr.Val)
			case rxImageDataSrc.MatchString(attr.Val):
				dom.SetAttribute(img, "src", attr.Val)
			}
		}
	}
}

// convertRelativeURLs converts all relative URL in document into absolute URL.
func convertRelativeURLs(doc *html.Node, baseURL *nurl.URL) {
	convertNode := func(node *html.Node, attrName string) {
		if dom.HasAttribute(node, attrName) {
			val := dom.GetAttribute(node, attrName)
			dom.SetAttribute(node, attrName, createAbsoluteURL(val, baseURL))
		}
	}

	for _, node := range dom.GetAllNodesWithTag(doc, "a", "link") {
		convertNode(node, "href")
	}

	for _, media := range dom.GetAllNodesWithTag(doc, "img", "picture", "source") {
		convertNode(media, "src")

		if srcset := dom.GetAttribute(media, "srcset"); srcset != "" {
			newSrcset := rxSrcsetURL.ReplaceAllStringFunc(srcset, func(s string) string {
				p := rxSrcsetURL.FindStringSubmatch(s)
				return createAbsoluteURL(p[1], baseURL) + p[2] + p[3]
			})
			dom.SetAttribute(media, "srcset", newSrcset)
		}
	}
}

// removeScripts removes script and noscript tags from the document.
func removeScripts(doc *html.Node) {
	scripts := dom.GetAllNodesWithTag(doc, "script", "noscript")
	dom.RemoveNodes(scripts, nil)
}

// removeComments find all comments in document then remove it.
func removeComments(doc *html.Node) {
	var comments []*html.Node
	var finder func(*html.Node)

	finder = func(node *html.Node) {
		if node.Type == html.CommentNode {
			comments = append(comments, node)
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			finder(child)
		}
	}

	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		finder(child)
	}

	dom.RemoveNodes(comments, nil)
}
