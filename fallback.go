package samurai

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	nurl "net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Samurai Sudoku - {{.DateText}}</title>
    <style>
        body { font-family: Arial, sans-serif; padding: 20px; max-width: 1200px; margin: 0 auto; }
        .info { margin-bottom: 20px; padding: 15px; background: #f5f5f5; border-radius: 5px; }
        .info p { margin: 5px 0; }
        .puzzle { margin-top: 20px; }
        table { border-collapse: collapse; margin: 20px auto; }
        td { border: 1px solid #999; padding: 5px; text-align: center; min-width: 30px; min-height: 30px; }
    </style>
</head>
<body>
    <div class="info">
        <h1>Samurai Sudoku Puzzle</h1>
        <p><strong>Date:</strong> {{.DateText}}</p>
        <p><strong>Difficulty:</strong> {{.Difficulty}}</p>
        <p><strong>Puzzle ID:</strong> {{.Value}}</p>
        <p><strong>Source:</strong> {{.URL}}</p>
        <p><strong>Downloaded:</strong> {{.Timestamp}}</p>
    </div>
    <div class="puzzle">
        {{.Content}}
    </div>
</body>
</html>
`))

type fallbackPage struct {
	DateText   string
	Difficulty string
	Value      string
	URL        string
	Timestamp  string
	Content    template.HTML
}

// savePageFallback stores the current page as a standalone HTML document
// plus a full page screenshot.
func (d *Downloader) savePageFallback(ctx context.Context, p Puzzle) (*Result, error) {
	var (
		markup string
		url    string
	)
	err := chromedp.Run(ctx,
		chromedp.Location(&url),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read page markup")
	}

	result := &Result{
		Puzzle:    p,
		URL:       url,
		Timestamp: time.Now(),
	}

	baseURL, err := nurl.Parse(url)
	if err != nil {
		baseURL = nil
	}

	content, foundGrid, err := d.extractPuzzleMarkup(ctx, strings.NewReader(markup), baseURL, pageCookies(ctx, url))
	if err != nil {
		return nil, err
	}
	if !foundGrid {
		d.warnf("puzzle grid not found for %s, saving page body\n", p)
	}

	page, err := renderFallback(p, result, content)
	if err != nil {
		return nil, err
	}

	htmlName := p.FallbackName() + ".html"
	if err := os.WriteFile(d.outputPath(htmlName), page, 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to save %s", htmlName)
	}
	result.HTMLFile = htmlName
	d.logVerbose(p, "saved HTML fallback: %s", htmlName)

	shotName := p.ScreenshotName()
	if err := d.saveScreenshot(ctx, shotName); err != nil {
		d.warnf("could not save screenshot for %s: %v\n", p, err)
	} else {
		result.Screenshot = shotName
		d.logVerbose(p, "saved screenshot: %s", shotName)
	}

	return result, nil
}

// pageCookies returns the browser cookies for url, so resources behind a
// session can still be downloaded.
func pageCookies(ctx context.Context, url string) []*http.Cookie {
	var cookies []*http.Cookie
	chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		list, err := network.GetCookies().WithUrls([]string{url}).Do(ctx)
		if err != nil {
			return err
		}

		for _, c := range list {
			cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
		}
		return nil
	}))

	return cookies
}

func renderFallback(p Puzzle, r *Result, content string) ([]byte, error) {
	dateText := p.DateText
	if dateText == "" {
		dateText = "Unknown"
	}

	buf := bytes.NewBuffer(nil)
	err := fallbackTemplate.Execute(buf, fallbackPage{
		DateText:   dateText,
		Difficulty: p.difficulty(),
		Value:      p.Value,
		URL:        r.URL,
		Timestamp:  r.Timestamp.Format(time.RFC3339),
		Content:    template.HTML(content),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render fallback page")
	}

	return buf.Bytes(), nil
}

func (d *Downloader) saveScreenshot(ctx context.Context, name string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return err
	}
	return os.WriteFile(d.outputPath(name), buf, 0644)
}
