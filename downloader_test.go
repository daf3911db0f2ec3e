package samurai

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDownloader_Validate(t *testing.T) {
	d := &Downloader{}
	d.Validate()

	assert.True(t, d.isValidated)
	assert.Equal(t, ".", d.OutputDir)
	assert.Equal(t, ArchiveURL, d.ArchiveURL)
	assert.NotEmpty(t, d.UserAgent)
	assert.Equal(t, 3, d.Workers)
	assert.Equal(t, 10*time.Second, d.WaitTimeout)
	assert.Equal(t, 3, d.MaxRetries)
	assert.NotNil(t, d.limiter)
	assert.NotNil(t, d.httpClient)
	assert.NotNil(t, d.list)
	assert.NotNil(t, d.fetch)
}

func TestDownloader_ValidateKeepsValues(t *testing.T) {
	d := &Downloader{
		OutputDir:       "/tmp/puzzles",
		UserAgent:       "test-agent",
		Workers:         7,
		WaitTimeout:     time.Second,
		SessionInterval: time.Second,
	}
	d.Validate()

	assert.Equal(t, "/tmp/puzzles", d.OutputDir)
	assert.Equal(t, "test-agent", d.UserAgent)
	assert.Equal(t, 7, d.Workers)
	assert.Equal(t, time.Second, d.WaitTimeout)
	assert.Equal(t, 1, d.limiter.Burst())
}

func TestDownloader_Exists(t *testing.T) {
	dir := t.TempDir()
	d := &Downloader{OutputDir: dir}
	d.Validate()

	p := Puzzle{DateText: "31st October 2025", Difficulty: "Hard"}
	assert.False(t, d.Exists(p))

	touch(t, filepath.Join(dir, "31-Oct-2025 - Hard.pdf"))
	assert.True(t, d.Exists(p))
}

func TestDownloader_ChromeFlags(t *testing.T) {
	d := &Downloader{}
	d.Validate()

	flags := d.chromeFlags()
	assert.Equal(t, true, flags["headless"])
	assert.Equal(t, true, flags["no-sandbox"])
	assert.Equal(t, true, flags["disable-dev-shm-usage"])

	d.Visible = true
	d.EnableSandbox = true
	flags = d.chromeFlags()
	assert.Equal(t, false, flags["headless"])
	assert.Equal(t, false, flags["no-sandbox"])
}
