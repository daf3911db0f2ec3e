package samurai

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

var dropdownSelector = "select#" + DropdownID

// ListPuzzles loads the archive page and returns every puzzle of its
// dropdown, in page order.
func (d *Downloader) ListPuzzles(ctx context.Context) ([]Puzzle, error) {
	if !d.isValidated {
		return nil, ErrNotValidated
	}

	s, err := d.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	d.logf("loading archive page: %s\n", d.ArchiveURL)
	if err := d.openArchive(s.ctx); err != nil {
		return nil, err
	}

	var markup string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return nil, errors.Wrap(err, "failed to read archive page")
	}

	puzzles, err := parseArchiveOptions(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	d.logf("found %d puzzles in archive\n", len(puzzles))
	return puzzles, nil
}

// openArchive navigates the session to the archive page, retrying on
// failure, then waits for the dropdown to show up.
func (d *Downloader) openArchive(ctx context.Context) error {
	op := func() error {
		return chromedp.Run(ctx, chromedp.Navigate(d.ArchiveURL))
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = maxElapsedTime
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(d.MaxRetries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return errors.Wrapf(err, "failed to load %s", d.ArchiveURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, d.WaitTimeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitReady(dropdownSelector, chromedp.ByQuery))
	if err == nil {
		return nil
	}

	// The page may still be usable, the dropdown check happens on the markup.
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.warnf("dropdown did not show up in %s, continuing\n", d.WaitTimeout)
	return sleep(ctx, 2*time.Second)
}

// parseArchiveOptions reads the options of the archive dropdown.
// The placeholder option (empty value or "0") is skipped.
func parseArchiveOptions(r io.Reader) ([]Puzzle, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse archive page")
	}

	sel := doc.Find(dropdownSelector)
	if sel.Length() == 0 {
		return nil, ErrNoDropdown
	}

	var puzzles []Puzzle
	sel.First().Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		value = strings.TrimSpace(value)
		if value == "" || value == "0" {
			return
		}

		text := strings.TrimSpace(opt.Text())
		dateText, difficulty := parseOptionText(text)
		puzzles = append(puzzles, Puzzle{
			Value:      value,
			Text:       text,
			DateText:   dateText,
			Difficulty: difficulty,
		})
	})

	return puzzles, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
