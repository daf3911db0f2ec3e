package samurai

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Summary is the outcome of DownloadPuzzles.
type Summary struct {
	Total     int
	Succeeded int // includes skipped puzzles
	Skipped   int
	Failed    int
	Cancelled int

	Results []*Result
}

// SelectPuzzles keeps the puzzles whose date is in [start, end] and
// sorts them by date. Puzzles without a parseable date are dropped and
// returned separately.
func SelectPuzzles(puzzles []Puzzle, start, end time.Time) (selected []Puzzle, unparsed []Puzzle) {
	for _, p := range puzzles {
		if err := p.parseDate(); err != nil {
			unparsed = append(unparsed, p)
			continue
		}

		if p.InRange(start, end) {
			selected = append(selected, p)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Date.Before(selected[j].Date)
	})

	return selected, unparsed
}

// DownloadPuzzles downloads every archived puzzle published between
// start and end, both inclusive. Each puzzle runs in its own browser
// session, at most Workers at a time. Puzzles whose PDF already exists
// are skipped. A failing puzzle doesn't stop the others; cancelling ctx
// stops the puzzles that haven't started yet.
func (d *Downloader) DownloadPuzzles(ctx context.Context, start, end time.Time) (*Summary, error) {
	if !d.isValidated {
		return nil, ErrNotValidated
	}

	if dayOf(start).After(dayOf(end)) {
		return nil, ErrInvalidRange
	}

	if err := d.prepareOutputDir(); err != nil {
		return nil, err
	}

	if d.RespectRobots {
		if err := d.CheckRobots(ctx); err != nil {
			return nil, err
		}
	}

	d.logf("downloading puzzles from %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	d.logf("output directory: %s\n", d.OutputDir)

	available, err := d.list(ctx)
	if err != nil {
		return nil, err
	}

	if len(available) == 0 {
		return nil, ErrNoPuzzles
	}

	puzzles, unparsed := SelectPuzzles(available, start, end)
	for _, p := range unparsed {
		if p.DateText != "" {
			d.warnf("could not parse date %q\n", p.DateText)
		}
	}

	if len(puzzles) == 0 {
		return nil, errors.Wrapf(ErrNoPuzzlesInRange, "available date range: %s to %s",
			available[0].DateText, available[len(available)-1].DateText)
	}

	d.logf("downloading %d puzzles using %d parallel workers\n", len(puzzles), d.Workers)
	return d.dispatch(ctx, puzzles), nil
}

// dispatch runs the download of every puzzle on a bounded pool.
func (d *Downloader) dispatch(ctx context.Context, puzzles []Puzzle) *Summary {
	total := len(puzzles)
	summary := &Summary{Total: total}

	var mu sync.Mutex
	report := func(pr Progress) {
		mu.Lock()
		defer mu.Unlock()

		switch pr.Step {
		case StepComplete:
			summary.Succeeded++
			if pr.Result != nil {
				summary.Results = append(summary.Results, pr.Result)
			}
		case StepSkipped:
			summary.Succeeded++
			summary.Skipped++
		case StepFailed:
			summary.Failed++
		case StepCancelled:
			summary.Cancelled++
		}

		if d.Progress != nil {
			d.Progress(pr)
		}
	}

	sem := semaphore.NewWeighted(int64(d.Workers))
	g := errgroup.Group{}

	for idx, p := range puzzles {
		idx, p := idx+1, p
		base := Progress{Current: idx, Total: total, Name: p.String()}

		// Once cancelled, the remaining puzzles are only reported.
		if err := sem.Acquire(ctx, 1); err != nil {
			base.Step = StepCancelled
			report(base)
			continue
		}

		g.Go(func() error {
			defer sem.Release(1)
			d.runPuzzle(ctx, p, base, report)
			return nil
		})
	}

	g.Wait()

	sort.SliceStable(summary.Results, func(i, j int) bool {
		return summary.Results[i].Puzzle.Date.Before(summary.Results[j].Puzzle.Date)
	})

	return summary
}

// runPuzzle downloads a single puzzle and reports its progress.
func (d *Downloader) runPuzzle(ctx context.Context, p Puzzle, base Progress, report func(Progress)) {
	step := func(s Step) {
		pr := base
		pr.Step = s
		report(pr)
	}

	if ctx.Err() != nil {
		step(StepCancelled)
		return
	}

	// Check the file before starting a browser.
	if d.Exists(p) {
		step(StepSkipped)
		return
	}

	if err := d.limiter.Wait(ctx); err != nil {
		step(StepCancelled)
		return
	}

	step(StepStarting)
	result, err := d.fetch(ctx, p, step)
	if err != nil {
		if ctx.Err() != nil {
			step(StepCancelled)
			return
		}

		pr := base
		pr.Step = StepFailed
		pr.Err = err
		report(pr)
		return
	}

	pr := base
	pr.Step = StepComplete
	pr.Result = result
	report(pr)
}
