package samurai

import (
	"net/http"
	"net/http/cookiejar"
	"time"
)

// newHTTPClient returns the client used for robots.txt and the resources
// of fallback pages. Cookies set by the site are kept between requests.
func newHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout: time.Minute,
		Jar:     jar,
	}
}
