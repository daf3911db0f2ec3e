package samurai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentDownload bounds the resource downloads of one fallback page.
const maxConcurrentDownload = 4

// embedder turns the resources of a saved page into data URLs, so the
// page still renders once the site is gone.
type embedder struct {
	sync.RWMutex

	cache      map[string]string
	client     *http.Client
	cookies    []*http.Cookie
	userAgent  string
	maxRetries int
	sem        *semaphore.Weighted
	logf       func(format string, args ...interface{})
}

func (d *Downloader) newEmbedder(cookies []*http.Cookie) *embedder {
	return &embedder{
		cache:      make(map[string]string),
		client:     d.httpClient,
		cookies:    cookies,
		userAgent:  d.UserAgent,
		maxRetries: d.MaxRetries,
		sem:        semaphore.NewWeighted(maxConcurrentDownload),
		logf:       d.warnf,
	}
}

// processURL returns url as data URL. When the resource can't be fetched
// the url is returned as it is.
func (e *embedder) processURL(ctx context.Context, url string, parentURL string) string {
	// Make sure this URL is not empty, data or hash
	url = strings.TrimSpace(url)
	if url == "" || strings.HasPrefix(url, "data:") || strings.HasPrefix(url, "#") {
		return url
	}

	parsedURL, err := nurl.ParseRequestURI(url)
	if err != nil || parsedURL.Hostname() == "" ||
		(parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		return url
	}

	// Check in cache to see if this URL already processed
	e.RLock()
	cache, exist := e.cache[url]
	e.RUnlock()

	if exist {
		return cache
	}

	// Download the resource, use semaphore to limit concurrent downloads
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return url
	}
	content, contentType, err := e.downloadFile(ctx, url, parentURL)
	e.sem.Release(1)
	if err != nil {
		e.logf("failed to embed %s: %v\n", url, err)
		return url
	}

	dataURL := createDataURL(content, contentType)

	e.Lock()
	e.cache[url] = dataURL
	e.Unlock()

	return dataURL
}

// inlineStylesheet turns a stylesheet link into a <style> holding the
// fetched CSS, with its own url() resources embedded. The link is kept
// as it is when the stylesheet can't be fetched.
func (e *embedder) inlineStylesheet(ctx context.Context, node *html.Node, parentURL string) {
	href := strings.TrimSpace(dom.GetAttribute(node, "href"))
	cssURL, err := nurl.ParseRequestURI(href)
	if err != nil || cssURL.Hostname() == "" ||
		(cssURL.Scheme != "http" && cssURL.Scheme != "https") {
		return
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return
	}
	content, _, err := e.downloadFile(ctx, href, parentURL)
	e.sem.Release(1)
	if err != nil {
		e.logf("failed to embed %s: %v\n", href, err)
		return
	}

	// Relative url() inside the stylesheet resolve against its own URL.
	css := e.processCSS(ctx, bytes.NewReader(content), cssURL)

	node.Data = "style"
	node.DataAtom = atom.Style
	node.Attr = nil
	dom.SetTextContent(node, css)
}

func (e *embedder) downloadFile(ctx context.Context, url string, parentURL string) ([]byte, string, error) {
	var (
		content     []byte
		contentType string
	)

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("User-Agent", e.userAgent)
		if parentURL != "" {
			req.Header.Set("Referer", parentURL)
		}

		for _, cookie := range e.cookies {
			req.AddCookie(cookie)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("failed to fetch with status code: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("failed to fetch with status code: %d", resp.StatusCode))
		}

		content, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		contentType = strings.TrimSpace(resp.Header.Get("Content-Type"))
		if contentType == "" {
			contentType = http.DetectContentType(content)
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = maxElapsedTime
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(e.maxRetries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, "", err
	}

	return content, contentType, nil
}
