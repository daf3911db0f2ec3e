package samurai

import "github.com/pkg/errors"

// Sentinel errors returned by the downloader.
var (
	// ErrNotValidated is returned when Validate hasn't been called.
	ErrNotValidated = errors.New("downloader hasn't been validated")

	// ErrInvalidRange is returned when start date is after end date.
	ErrInvalidRange = errors.New("start date must be before or equal to end date")

	// ErrNoDropdown is returned when the archive page has no puzzle dropdown.
	ErrNoDropdown = errors.New("archive dropdown not found")

	// ErrNoPuzzles is returned when the archive dropdown has no puzzle.
	ErrNoPuzzles = errors.New("no puzzles found in archive, the website structure may have changed")

	// ErrNoPuzzlesInRange is returned when no archived puzzle matches the date range.
	ErrNoPuzzlesInRange = errors.New("no puzzles found in the specified date range")

	// ErrNoPrintTab is returned when clicking print doesn't open a new tab.
	ErrNoPrintTab = errors.New("print window did not open")

	// ErrDisallowed is returned when robots.txt forbids fetching the archive.
	ErrDisallowed = errors.New("archive is disallowed by robots.txt")
)
