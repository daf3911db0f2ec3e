package samurai

import (
	"encoding/base64"
	"fmt"
	nurl "net/url"
	"os"
	"regexp"
	"strings"
)

var (
	rxStyleURL = regexp.MustCompile(`(?i)^url\((.+)\)$`)
)

// isValidURL checks if URL is valid.
func isValidURL(s string) bool {
	u, err := nurl.ParseRequestURI(s)
	return err == nil && u.Scheme != "" && u.Hostname() != ""
}

// createAbsoluteURL convert url to absolute path based on base.
func createAbsoluteURL(url string, base *nurl.URL) string {
	url = strings.TrimSpace(url)
	if url == "" || base == nil {
		return ""
	}

	// If it is data url, return as it is
	if strings.HasPrefix(url, "data:") {
		return url
	}

	// If it is fragment path, return as it is
	if strings.HasPrefix(url, "#") {
		return url
	}

	tmp, err := nurl.Parse(url)
	if err != nil {
		return url
	}

	// Fragments point into the live page, not to a resource.
	tmp.Fragment = ""
	return base.ResolveReference(tmp).String()
}

// sanitizeStyleURL sanitizes the URL in CSS by removing `url()`,
// quotation mark and trailing slash
func sanitizeStyleURL(url string) string {
	cssURL := rxStyleURL.ReplaceAllString(url, "$1")
	cssURL = strings.TrimSpace(cssURL)

	if strings.HasPrefix(cssURL, `"`) {
		return strings.Trim(cssURL, `"`)
	}

	if strings.HasPrefix(cssURL, `'`) {
		return strings.Trim(cssURL, `'`)
	}

	return cssURL
}

// createDataURL returns base64 encoded data URL
func createDataURL(content []byte, contentType string) string {
	b64encoded := base64.StdEncoding.EncodeToString(content)
	return fmt.Sprintf("data:%s;base64,%s", contentType, b64encoded)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
