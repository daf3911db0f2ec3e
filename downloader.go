package samurai

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

var (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxElapsedTime   = 30 * time.Second
	settleDelay      = 500 * time.Millisecond
	optionDelay      = 300 * time.Millisecond
)

// Downloader is the core of samurai, which fetches the archive list
// then prints every requested puzzle to PDF.
type Downloader struct {
	OutputDir  string
	ArchiveURL string

	UserAgent        string
	EnableLog        bool
	EnableVerboseLog bool

	// Visible runs Chrome with a window instead of headless.
	Visible    bool
	ChromePath string

	// EnableSandbox keeps the Chrome sandbox, which fails when running
	// as root. By default Chrome runs with --no-sandbox.
	EnableSandbox bool

	Workers     int
	WaitTimeout time.Duration // how long to wait for an element or a new tab
	MaxRetries  int

	// SessionInterval is the minimum delay between two browser session
	// starts. Zero means no limit.
	SessionInterval time.Duration

	// RespectRobots makes DownloadPuzzles check robots.txt first.
	RespectRobots bool

	Progress ProgressFunc

	isValidated bool
	httpClient  *http.Client
	limiter     *rate.Limiter

	// list and fetch are replaced in tests.
	list  func(ctx context.Context) ([]Puzzle, error)
	fetch func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error)
}

// Validate prepares Downloader to make sure its configurations
// are valid and ready to use. Must be run at least once before
// download started.
func (d *Downloader) Validate() {
	if d.OutputDir == "" {
		d.OutputDir = "."
	}

	if d.ArchiveURL == "" {
		d.ArchiveURL = ArchiveURL
	}

	if d.UserAgent == "" {
		d.UserAgent = defaultUserAgent
	}

	if d.Workers <= 0 {
		d.Workers = 3
	}

	if d.WaitTimeout <= 0 {
		d.WaitTimeout = 10 * time.Second
	}

	if d.MaxRetries <= 0 {
		d.MaxRetries = 3
	}

	if d.SessionInterval > 0 {
		d.limiter = rate.NewLimiter(rate.Every(d.SessionInterval), 1)
	} else {
		d.limiter = rate.NewLimiter(rate.Inf, 0)
	}

	if d.httpClient == nil {
		d.httpClient = newHTTPClient()
	}

	if d.list == nil {
		d.list = d.ListPuzzles
	}

	if d.fetch == nil {
		d.fetch = d.downloadPuzzle
	}

	d.isValidated = true
}

// prepareOutputDir makes sure the output directory exists.
func (d *Downloader) prepareOutputDir() error {
	if err := os.MkdirAll(d.OutputDir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "failed to create output dir %s", d.OutputDir)
	}
	return nil
}

// outputPath returns the path of name inside the output directory.
func (d *Downloader) outputPath(name string) string {
	return filepath.Join(d.OutputDir, name)
}

// Exists reports whether the PDF of p is already in the output directory.
func (d *Downloader) Exists(p Puzzle) bool {
	return fileExists(d.outputPath(p.FileName()))
}
