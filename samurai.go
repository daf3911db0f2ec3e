// Package samurai downloads puzzles from the samurai-sudoku.com archive.
//
// The archive page exposes every published puzzle through a single
// dropdown. For each puzzle the Downloader opens a headless Chrome
// session, selects the puzzle, presses the print button and stores the
// printed page as PDF, named after the puzzle date and difficulty:
//
//	d := &samurai.Downloader{OutputDir: "./puzzles", Workers: 3}
//	d.Validate()
//
//	summary, err := d.DownloadPuzzles(ctx, start, end)
//
// When the print button can't be found, the page markup and a screenshot
// are saved instead.
//
// The package targets one site and breaks when its markup changes.
package samurai

const (
	// BaseURL is the home page of the puzzle site.
	BaseURL = "https://www.samurai-sudoku.com/"

	// ArchiveURL is the page that holds the archive dropdown.
	ArchiveURL = BaseURL + "classic/"

	// DropdownID is the id of the <select> listing archived puzzles.
	DropdownID = "ai"
)
