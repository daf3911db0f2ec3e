package samurai

import (
	"context"

	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/pkg/errors"
)

// ResolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func ResolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", errors.Wrap(err, "downloading browser")
	}
	return path, nil
}

// LookupBrowser returns the path of a Chrome installed on this system.
func LookupBrowser() (string, bool) {
	return launcher.LookPath()
}

// session is one independent browser process with a single tab.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// chromeFlags returns the command line switches of Chrome. A false value
// removes a switch set by chromedp defaults.
func (d *Downloader) chromeFlags() map[string]interface{} {
	return map[string]interface{}{
		"headless":              !d.Visible,
		"no-sandbox":            !d.EnableSandbox,
		"disable-gpu":           true,
		"disable-dev-shm-usage": true,
		"disable-extensions":    true,
		"no-first-run":          true,
	}
}

// newSession starts a fresh Chrome process. The caller must call close.
func (d *Downloader) newSession(ctx context.Context) (*session, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(d.UserAgent),
	)
	for name, value := range d.chromeFlags() {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}
	if d.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(d.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.Wrap(err, "failed to start chrome, make sure Chrome or Chromium is installed")
	}

	return &session{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

func (s *session) close() {
	s.cancel()
}
