package samurai

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
}

var archivePuzzles = []Puzzle{
	{Value: "103", Text: "3rd October 2025 - Hard", DateText: "3rd October 2025", Difficulty: "Hard"},
	{Value: "101", Text: "1st October 2025 - Easy", DateText: "1st October 2025", Difficulty: "Easy"},
	{Value: "102", Text: "2nd October 2025 - Medium", DateText: "2nd October 2025", Difficulty: "Medium"},
	{Value: "999", Text: "Bonus puzzle - Hard", DateText: "Bonus puzzle", Difficulty: "Hard"},
	{Value: "130", Text: "30th September 2025 - Hard", DateText: "30th September 2025", Difficulty: "Hard"},
}

// newStubDownloader returns a downloader which lists archivePuzzles and
// writes a fake PDF for every fetched puzzle.
func newStubDownloader(t *testing.T, fetch func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error)) (*Downloader, *[]Progress) {
	var (
		mu      sync.Mutex
		updates []Progress
	)

	d := &Downloader{
		OutputDir: t.TempDir(),
		Workers:   2,
		Progress: func(p Progress) {
			mu.Lock()
			updates = append(updates, p)
			mu.Unlock()
		},
	}
	d.list = func(ctx context.Context) ([]Puzzle, error) {
		return append([]Puzzle(nil), archivePuzzles...), nil
	}
	d.fetch = fetch
	if d.fetch == nil {
		d.fetch = func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error) {
			report(StepDownloading)
			report(StepSaving)
			name := p.FileName()
			if err := os.WriteFile(d.outputPath(name), []byte("%PDF-1.4"), 0644); err != nil {
				return nil, err
			}
			return &Result{Puzzle: p, PDFFile: name, Size: 8, Timestamp: time.Now()}, nil
		}
	}
	d.Validate()

	return d, &updates
}

func finalSteps(updates []Progress) map[string]Step {
	steps := make(map[string]Step)
	for _, u := range updates {
		if u.Step.Done() {
			steps[u.Name] = u.Step
		}
	}
	return steps
}

func TestSelectPuzzles(t *testing.T) {
	start := date(2025, time.October, 1)
	end := date(2025, time.October, 2)

	selected, unparsed := SelectPuzzles(archivePuzzles, start, end)
	require.Len(t, selected, 2)
	assert.Equal(t, "101", selected[0].Value)
	assert.Equal(t, "102", selected[1].Value)
	assert.False(t, selected[0].Date.IsZero())

	require.Len(t, unparsed, 1)
	assert.Equal(t, "999", unparsed[0].Value)

	// The input isn't modified.
	assert.True(t, archivePuzzles[1].Date.IsZero())
}

func TestDownloadPuzzles(t *testing.T) {
	d, updates := newStubDownloader(t, nil)

	summary, err := d.DownloadPuzzles(context.Background(), date(2025, time.October, 1), date(2025, time.October, 31))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "101", summary.Results[0].Puzzle.Value)
	assert.Equal(t, "102", summary.Results[1].Puzzle.Value)
	assert.Equal(t, "103", summary.Results[2].Puzzle.Value)

	for _, name := range []string{"01-Oct-2025 - Easy.pdf", "02-Oct-2025 - Medium.pdf", "03-Oct-2025 - Hard.pdf"} {
		assert.FileExists(t, filepath.Join(d.OutputDir, name))
	}
	assert.NoFileExists(t, filepath.Join(d.OutputDir, "30-Sep-2025 - Hard.pdf"))

	steps := finalSteps(*updates)
	assert.Len(t, steps, 3)
	for _, step := range steps {
		assert.Equal(t, StepComplete, step)
	}

	for _, u := range *updates {
		assert.Equal(t, 3, u.Total)
		assert.True(t, u.Current >= 1 && u.Current <= 3)
	}
}

func TestDownloadPuzzles_SkipExisting(t *testing.T) {
	var fetched int32
	d, updates := newStubDownloader(t, func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error) {
		atomic.AddInt32(&fetched, 1)
		return &Result{Puzzle: p, PDFFile: p.FileName()}, nil
	})
	touch(t, filepath.Join(d.OutputDir, "02-Oct-2025 - Medium.pdf"))

	summary, err := d.DownloadPuzzles(context.Background(), date(2025, time.October, 1), date(2025, time.October, 3))
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&fetched))
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, summary.Results, 2)
	assert.Equal(t, StepSkipped, finalSteps(*updates)["2nd October 2025 - Medium"])
}

func TestDownloadPuzzles_FailureDoesNotStopOthers(t *testing.T) {
	failure := errors.New("print to PDF failed")
	d, updates := newStubDownloader(t, func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error) {
		if p.Value == "102" {
			return nil, failure
		}
		return &Result{Puzzle: p, PDFFile: p.FileName()}, nil
	})

	summary, err := d.DownloadPuzzles(context.Background(), date(2025, time.October, 1), date(2025, time.October, 3))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	for _, u := range *updates {
		if u.Step == StepFailed {
			assert.Equal(t, "2nd October 2025 - Medium", u.Name)
			assert.ErrorIs(t, u.Err, failure)
		}
	}
}

func TestDownloadPuzzles_Workers(t *testing.T) {
	var running, maxRunning int32
	d, _ := newStubDownloader(t, func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error) {
		n := atomic.AddInt32(&running, 1)
		defer atomic.AddInt32(&running, -1)
		for {
			peak := atomic.LoadInt32(&maxRunning)
			if n <= peak || atomic.CompareAndSwapInt32(&maxRunning, peak, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return &Result{Puzzle: p}, nil
	})
	d.Workers = 1

	summary, err := d.DownloadPuzzles(context.Background(), date(2025, time.September, 1), date(2025, time.October, 31))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestDownloadPuzzles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, _ := newStubDownloader(t, func(ctx context.Context, p Puzzle, report func(Step)) (*Result, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})
	d.Workers = 1

	summary, err := d.DownloadPuzzles(ctx, date(2025, time.October, 1), date(2025, time.October, 3))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, summary.Cancelled)
}

func TestDownloadPuzzles_Errors(t *testing.T) {
	t.Run("not validated", func(t *testing.T) {
		d := &Downloader{}
		_, err := d.DownloadPuzzles(context.Background(), time.Now(), time.Now())
		assert.ErrorIs(t, err, ErrNotValidated)
	})

	t.Run("invalid range", func(t *testing.T) {
		d, _ := newStubDownloader(t, nil)
		_, err := d.DownloadPuzzles(context.Background(), date(2025, time.October, 2), date(2025, time.October, 1))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("empty archive", func(t *testing.T) {
		d, _ := newStubDownloader(t, nil)
		d.list = func(ctx context.Context) ([]Puzzle, error) { return nil, nil }
		_, err := d.DownloadPuzzles(context.Background(), date(2025, time.October, 1), date(2025, time.October, 2))
		assert.ErrorIs(t, err, ErrNoPuzzles)
	})

	t.Run("nothing in range", func(t *testing.T) {
		d, _ := newStubDownloader(t, nil)
		_, err := d.DownloadPuzzles(context.Background(), date(2024, time.January, 1), date(2024, time.January, 31))
		assert.ErrorIs(t, err, ErrNoPuzzlesInRange)
		assert.Contains(t, err.Error(), "3rd October 2025")
	})

	t.Run("list failure", func(t *testing.T) {
		d, _ := newStubDownloader(t, nil)
		d.list = func(ctx context.Context) ([]Puzzle, error) { return nil, ErrNoDropdown }
		_, err := d.DownloadPuzzles(context.Background(), date(2025, time.October, 1), date(2025, time.October, 2))
		assert.ErrorIs(t, err, ErrNoDropdown)
	})
}
