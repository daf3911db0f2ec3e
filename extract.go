package samurai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// selector is a CSS selector, or an XPath expression when it starts
// with a slash.
type selector string

func (s selector) isXPath() bool {
	return strings.HasPrefix(string(s), "/")
}

// queryOptions returns how s is looked up. CSS goes through querySelectorAll,
// since DOM search also matches plain text and attribute values.
func (s selector) queryOptions() []chromedp.QueryOption {
	if s.isXPath() {
		return []chromedp.QueryOption{chromedp.BySearch, chromedp.AtLeast(0)}
	}
	return []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
}

// Candidate selectors of the print button, in order of preference.
var printSelectors = []selector{
	"#print",
	"#btnPrint",
	".print",
	"//button[contains(text(), 'Print')]",
	"//a[contains(text(), 'Print')]",
	"//input[@type='button' and contains(@value, 'Print')]",
	"//button[contains(@class, 'print')]",
	"//a[contains(@class, 'print')]",
}

// Candidate selectors of the "full page" option of the print window.
var fullPageSelectors = []selector{
	"//button[contains(text(), 'Full page')]",
	"//button[contains(text(), 'full page')]",
	"//input[@type='radio' and contains(@value, 'full')]",
	"//label[contains(text(), 'Full page')]",
	"#fullPage",
	"#full-page",
}

// Result describes the files saved for a puzzle.
type Result struct {
	Puzzle    Puzzle
	URL       string
	Timestamp time.Time

	PDFFile    string // empty when the fallback was used
	HTMLFile   string
	Screenshot string
	Size       int64 // size of the PDF in bytes
}

// downloadPuzzle runs a whole puzzle download in its own browser session.
func (d *Downloader) downloadPuzzle(ctx context.Context, p Puzzle, report func(Step)) (*Result, error) {
	s, err := d.newSession(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	if err := d.openArchive(s.ctx); err != nil {
		return nil, err
	}

	report(StepDownloading)
	return d.extractPuzzle(s.ctx, p, func() { report(StepSaving) })
}

// extractPuzzle selects p in the archive dropdown of an already loaded
// page, then prints it to PDF. If the print button can't be found the
// page markup and a screenshot are saved instead.
func (d *Downloader) extractPuzzle(ctx context.Context, p Puzzle, saving func()) (*Result, error) {
	d.logVerbose(p, "loading puzzle %s", p.DateText)

	if err := d.selectPuzzle(ctx, p.Value); err != nil {
		return nil, err
	}

	if err := sleep(ctx, settleDelay); err != nil {
		return nil, err
	}

	d.logVerbose(p, "looking for print button")
	button, matched, err := findFirst(ctx, printSelectors)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look for print button")
	}

	if button == nil {
		d.logVerbose(p, "print button not found, saving page HTML instead")
		saving()
		return d.savePageFallback(ctx, p)
	}
	d.logVerbose(p, "found print button using %s", matched)

	printCtx, closeTab, err := d.openPrintTab(ctx, button)
	if err != nil {
		return nil, err
	}
	defer closeTab()
	d.logVerbose(p, "switched to print window")

	if err := sleep(printCtx, settleDelay); err != nil {
		return nil, err
	}

	d.chooseFullPage(printCtx, p)

	saving()
	d.logVerbose(p, "saving PDF from print preview")
	var (
		pdf []byte
		url string
	)
	err = chromedp.Run(printCtx,
		chromedp.Location(&url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithLandscape(false).
				WithDisplayHeaderFooter(false).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "print to PDF failed")
	}

	name := p.FileName()
	if err := os.WriteFile(d.outputPath(name), pdf, 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to save %s", name)
	}
	d.logVerbose(p, "saved PDF: %s", name)

	return &Result{
		Puzzle:    p,
		URL:       url,
		Timestamp: time.Now(),
		PDFFile:   name,
		Size:      int64(len(pdf)),
	}, nil
}

// selectPuzzle sets the dropdown value and fires its change event, the
// same way a user selection would.
func (d *Downloader) selectPuzzle(ctx context.Context, value string) error {
	waitCtx, cancel := context.WithTimeout(ctx, d.WaitTimeout)
	defer cancel()

	if err := chromedp.Run(waitCtx, chromedp.WaitReady(dropdownSelector, chromedp.ByQuery)); err != nil {
		return errors.Wrap(err, "timeout waiting for archive dropdown")
	}

	id, _ := json.Marshal(DropdownID)
	val, _ := json.Marshal(value)
	script := fmt.Sprintf(`(function(id, value) {
		var sel = document.getElementById(id);
		if (!sel) return false;
		sel.value = value;
		sel.dispatchEvent(new Event("change", {bubbles: true}));
		return sel.value === value;
	})(%s, %s)`, id, val)

	var selected bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &selected)); err != nil {
		return errors.Wrap(err, "failed to select puzzle")
	}

	if !selected {
		return errors.Errorf("puzzle %q is not in the archive dropdown", value)
	}

	return nil
}

// openPrintTab clicks the print button and attaches to the tab it opens.
// The returned func closes that tab.
func (d *Downloader) openPrintTab(ctx context.Context, button *cdp.Node) (context.Context, func(), error) {
	newTab := chromedp.WaitNewTarget(ctx, func(info *target.Info) bool {
		return info.Type == "page"
	})

	if err := chromedp.Run(ctx, chromedp.MouseClickNode(button)); err != nil {
		return nil, nil, errors.Wrap(err, "failed to click print button")
	}

	timer := time.NewTimer(d.WaitTimeout)
	defer timer.Stop()

	var id target.ID
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-timer.C:
		return nil, nil, ErrNoPrintTab
	case id = <-newTab:
	}

	tabCtx, cancel := chromedp.NewContext(ctx, chromedp.WithTargetID(id))
	if err := chromedp.Run(tabCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		cancel()
		return nil, nil, errors.Wrap(err, "failed to switch to print window")
	}

	closeTab := func() {
		closeCtx, closeCancel := context.WithTimeout(tabCtx, 5*time.Second)
		defer closeCancel()
		chromedp.Run(closeCtx, page.Close())
		cancel()
	}

	return tabCtx, closeTab, nil
}

// chooseFullPage clicks the "full page" option of the print window when
// there is one. Failures are only logged.
func (d *Downloader) chooseFullPage(ctx context.Context, p Puzzle) {
	d.logVerbose(p, "looking for full page option")

	option, _, err := findFirst(ctx, fullPageSelectors)
	if err != nil {
		d.logVerbose(p, "could not look for full page option: %v", err)
		return
	}

	if option == nil {
		d.logVerbose(p, "full page option not found, using default")
		return
	}

	if err := chromedp.Run(ctx, chromedp.MouseClickNode(option)); err != nil {
		d.logVerbose(p, "could not interact with full page option: %v", err)
		return
	}

	d.logVerbose(p, "found full page option")
	sleep(ctx, optionDelay)
}

// findFirst returns the first element matched by one of the selectors,
// and the selector that matched. It returns a nil node when nothing matches.
func findFirst(ctx context.Context, selectors []selector) (*cdp.Node, selector, error) {
	for _, sel := range selectors {
		var nodes []*cdp.Node
		err := chromedp.Run(ctx, chromedp.Nodes(string(sel), &nodes, sel.queryOptions()...))
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			continue
		}

		if node := firstElement(nodes); node != nil {
			return node, sel, nil
		}
	}

	return nil, "", nil
}

// firstElement skips the text and attribute nodes a DOM search may return.
func firstElement(nodes []*cdp.Node) *cdp.Node {
	for _, node := range nodes {
		if node != nil && node.NodeType == cdp.NodeTypeElement {
			return node
		}
	}
	return nil
}
