package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-shiori/samurai"
	"github.com/sirupsen/logrus"
)

type progressPrinter struct {
	w       io.Writer
	started time.Time
	done    int
	total   int
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, started: time.Now()}
}

// Print writes a progress line. Only finished puzzles are printed, with
// a completion counter, the intermediate steps go to the debug log.
func (pp *progressPrinter) Print(p samurai.Progress) {
	if pp.total == 0 {
		pp.total = p.Total
		fmt.Fprintf(pp.w, "Downloading %d puzzles...\n\n", p.Total)
	}

	if !p.Step.Done() {
		logrus.Debugf("[%d/%d] %s - %s", p.Current, p.Total, p.Name, p.Step)
		return
	}
	pp.done++

	fmt.Fprintln(pp.w, formatProgress(pp.done, pp.total, p))
}

func formatProgress(done, total int, p samurai.Progress) string {
	var status string
	switch p.Step {
	case samurai.StepComplete:
		status = "✓"
	case samurai.StepSkipped:
		status = "⚡"
	default:
		status = "✗"
	}

	msg := fmt.Sprintf("[%d/%d] %s %s - %s", done, total, status, p.Name, p.Step)
	switch {
	case p.Err != nil:
		msg += ": " + p.Err.Error()
	case p.Result != nil && p.Result.PDFFile != "":
		msg += fmt.Sprintf(" (%s, %s)", p.Result.PDFFile, humanize.Bytes(uint64(p.Result.Size)))
	case p.Result != nil && p.Result.HTMLFile != "":
		msg += fmt.Sprintf(" (HTML fallback: %s)", p.Result.HTMLFile)
	}

	return msg
}

// Summary writes the final counters.
func (pp *progressPrinter) Summary(s *samurai.Summary) {
	line := strings.Repeat("=", 60)

	fmt.Fprintln(pp.w)
	fmt.Fprintln(pp.w, line)
	fmt.Fprintf(pp.w, "✓ Successfully downloaded %d of %d puzzles\n", s.Succeeded, s.Total)
	if s.Skipped > 0 {
		fmt.Fprintf(pp.w, "  %d already existed\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(pp.w, "  %d failed\n", s.Failed)
	}
	if s.Cancelled > 0 {
		fmt.Fprintf(pp.w, "  %d cancelled\n", s.Cancelled)
	}
	fmt.Fprintf(pp.w, "  took %s\n", time.Since(pp.started).Round(time.Second))
	fmt.Fprintln(pp.w, line)
}
