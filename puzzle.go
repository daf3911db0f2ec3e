package samurai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"
	"github.com/pkg/errors"
)

var (
	rxOrdinalDay = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	rxDayMonth   = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:of\s+)?([a-z]{3,9})\.?,?\s+(\d{4})\b`)
	rxMonthDay   = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	rxISODate    = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Puzzle is a single option of the archive dropdown.
type Puzzle struct {
	Value      string // value attribute of the option
	Text       string // visible text, e.g. "31st October 2025 - Hard"
	DateText   string // "31st October 2025"
	Difficulty string // "Hard"

	// Date is set once DateText has been parsed.
	Date time.Time
}

// parseOptionText splits option text of form "<date> - <difficulty>".
func parseOptionText(text string) (dateText, difficulty string) {
	if !strings.Contains(text, " - ") {
		return "", ""
	}

	parts := strings.Split(text, " - ")
	dateText = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		difficulty = strings.TrimSpace(parts[1])
	}

	return dateText, difficulty
}

// ParsePuzzleDate finds a calendar date inside text like
// "Friday 31st October 2025". Words around the date are ignored.
func ParsePuzzleDate(text string) (time.Time, error) {
	clean := rxOrdinalDay.ReplaceAllString(text, "$1")

	if m := rxISODate.FindStringSubmatch(clean); m != nil {
		return time.Parse("2006-01-02", m[0])
	}

	if m := rxDayMonth.FindStringSubmatch(clean); m != nil {
		if t, ok := buildDate(m[1], m[2], m[3]); ok {
			return t, nil
		}
	}

	if m := rxMonthDay.FindStringSubmatch(clean); m != nil {
		if t, ok := buildDate(m[2], m[1], m[3]); ok {
			return t, nil
		}
	}

	return time.Time{}, errors.Errorf("no date found in %q", text)
}

func buildDate(day, month, year string) (time.Time, bool) {
	mon, ok := monthNames[strings.ToLower(month)]
	if !ok {
		return time.Time{}, false
	}

	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(y, mon, d, 0, 0, 0, 0, time.UTC)
	// Reject overflowing dates such as 31 February.
	if t.Day() != d || t.Month() != mon {
		return time.Time{}, false
	}

	return t, true
}

// parseDate fills p.Date from p.DateText.
func (p *Puzzle) parseDate() error {
	if p.DateText == "" {
		return errors.New("puzzle has no date")
	}

	date, err := ParsePuzzleDate(p.DateText)
	if err != nil {
		return err
	}

	p.Date = date
	return nil
}

func (p Puzzle) difficulty() string {
	if p.Difficulty == "" {
		return "Unknown"
	}
	return p.Difficulty
}

// formattedDate returns the date as 31-Oct-2025. If DateText can't be
// parsed, the raw text is used with spaces replaced by dashes.
func (p Puzzle) formattedDate() string {
	date := p.Date
	if date.IsZero() {
		parsed, err := ParsePuzzleDate(p.DateText)
		if err != nil {
			if p.DateText == "" {
				return "unknown"
			}
			return strings.ReplaceAll(p.DateText, " ", "-")
		}
		date = parsed
	}

	return date.Format("02-Jan-2006")
}

// FileName returns the name of the PDF, e.g. "31-Oct-2025 - Hard.pdf".
func (p Puzzle) FileName() string {
	name := fmt.Sprintf("%s - %s.pdf", p.formattedDate(), p.difficulty())
	return strings.NewReplacer("/", "-", `\`, "-").Replace(name)
}

// FallbackName returns the base name of the HTML document saved when
// the print button is missing, e.g. "samurai_sudoku_20251031_hard".
func (p Puzzle) FallbackName() string {
	date := "unknown"
	if !p.Date.IsZero() {
		date = p.Date.Format("20060102")
	}

	difficulty := sanitize.BaseName(strings.ToLower(p.Difficulty))
	if difficulty == "" {
		difficulty = "unknown"
	}

	return fmt.Sprintf("samurai_sudoku_%s_%s", date, difficulty)
}

// ScreenshotName returns the file name of the fallback screenshot.
func (p Puzzle) ScreenshotName() string {
	date := sanitize.BaseName(strings.TrimSpace(p.DateText))
	if date == "" {
		date = "unknown"
	}

	return "puzzle_" + date + ".png"
}

// InRange reports whether the puzzle date is within [start, end],
// compared by calendar day.
func (p Puzzle) InRange(start, end time.Time) bool {
	if p.Date.IsZero() {
		return false
	}

	day := dayOf(p.Date)
	return !day.Before(dayOf(start)) && !day.After(dayOf(end))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// String returns the visible option text.
func (p Puzzle) String() string {
	if p.Text != "" {
		return p.Text
	}
	return p.Value
}
