package samurai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/temoto/robotstxt"
)

// robotsAgent is the user agent group checked in robots.txt.
const robotsAgent = "samurai"

// CheckRobots fetches robots.txt of the archive host and returns
// ErrDisallowed when the archive page may not be fetched. A missing
// robots.txt allows everything.
func (d *Downloader) CheckRobots(ctx context.Context) error {
	if !d.isValidated {
		return ErrNotValidated
	}

	if !isValidURL(d.ArchiveURL) {
		return errors.Errorf("url %q is not valid", d.ArchiveURL)
	}

	archive, _ := nurl.Parse(d.ArchiveURL)
	robotsURL := &nurl.URL{Scheme: archive.Scheme, Host: archive.Host, Path: "/robots.txt"}

	data, err := d.fetchRobots(ctx, robotsURL.String())
	if err != nil {
		return errors.Wrap(err, "failed to fetch robots.txt")
	}

	if !data.TestAgent(archive.Path, robotsAgent) {
		return ErrDisallowed
	}

	d.log("robots.txt allows", archive.Path)
	return nil
}

func (d *Downloader) fetchRobots(ctx context.Context, url string) (*robotstxt.RobotsData, error) {
	var data *robotstxt.RobotsData

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", d.UserAgent)

		resp, err := d.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("failed to fetch with status code: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
		return backoff.Permanent(err)
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = maxElapsedTime
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(d.MaxRetries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}

	return data, nil
}
