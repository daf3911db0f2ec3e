package samurai

import (
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/pkg/errors"
)

// reportRow is one line of the CSV report.
type reportRow struct {
	Value      string `csv:"value"`
	Date       string `csv:"date"`
	Difficulty string `csv:"difficulty"`
	Text       string `csv:"text"`
	PDFFile    string `csv:"pdf_file,omitempty"`
	HTMLFile   string `csv:"html_file,omitempty"`
	Screenshot string `csv:"screenshot,omitempty"`
	Size       int64  `csv:"size"`
	URL        string `csv:"url"`
	Timestamp  string `csv:"timestamp"`
}

// WriteReport writes the results as CSV, with a header line.
func WriteReport(w io.Writer, results []*Result) error {
	rows := make([]reportRow, 0, len(results))
	for _, r := range results {
		date := ""
		if !r.Puzzle.Date.IsZero() {
			date = r.Puzzle.Date.Format("2006-01-02")
		}

		rows = append(rows, reportRow{
			Value:      r.Puzzle.Value,
			Date:       date,
			Difficulty: r.Puzzle.Difficulty,
			Text:       r.Puzzle.Text,
			PDFFile:    r.PDFFile,
			HTMLFile:   r.HTMLFile,
			Screenshot: r.Screenshot,
			Size:       r.Size,
			URL:        r.URL,
			Timestamp:  r.Timestamp.Format(time.RFC3339),
		})
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}

	_, err = w.Write(data)
	return err
}
