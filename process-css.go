package samurai

import (
	"bytes"
	"context"
	"io"
	nurl "net/url"
	"strings"
	"sync"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/sync/errgroup"
)

// processCSS rewrites every url() of the stylesheet, either into a data
// URL or, when the resource can't be fetched, into an absolute URL.
func (e *embedder) processCSS(ctx context.Context, input io.Reader, baseURL *nurl.URL) string {
	// Prepare buffer to store content from input
	buffer := bytes.NewBuffer(nil)

	// Scan CSS and find all URLs
	urls := make(map[string]struct{})
	lexer := css.NewLexer(parse.NewInput(input))

	for {
		token, bt := lexer.Next()

		// Check for error or EOF
		if token == css.ErrorToken {
			break
		}

		// If it's URL save it
		if token == css.URLToken {
			urls[string(bt)] = struct{}{}
		}

		buffer.Write(bt)
	}

	// Process each url concurrently
	mutex := sync.Mutex{}
	processedURLs := make(map[string]string)

	g, ctx := errgroup.WithContext(ctx)
	for url := range urls {
		url := url
		g.Go(func() error {
			cssURL := sanitizeStyleURL(url)
			if baseURL != nil {
				cssURL = createAbsoluteURL(cssURL, baseURL)
			}

			parentURL := ""
			if baseURL != nil {
				parentURL = baseURL.String()
			}
			result := `url("` + e.processURL(ctx, cssURL, parentURL) + `")`

			mutex.Lock()
			processedURLs[url] = result
			mutex.Unlock()

			return nil
		})
	}
	g.Wait()

	// Convert all url into the processed URL
	cssRules := buffer.String()
	for url, processedURL := range processedURLs {
		cssRules = strings.ReplaceAll(cssRules, url, processedURL)
	}

	return cssRules
}
