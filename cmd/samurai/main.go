package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-shiori/samurai"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	err := newCommand().Execute()
	if err != nil {
		logrus.Fatalln(err)
	}
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samurai --start YYYY-MM-DD --end YYYY-MM-DD --output DIR",
		Short: "CLI tool for downloading Samurai Sudoku puzzles as PDF",
		Example: `  samurai --start 2024-01-01 --end 2024-01-31 --output ./puzzles
  samurai -s 2024-10-01 -e 2024-10-07 -o ./october_puzzles --visible`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmdHandler,
	}

	cmd.Flags().StringP("start", "s", "", "start date in YYYY-MM-DD format")
	cmd.Flags().StringP("end", "e", "", "end date in YYYY-MM-DD format")
	cmd.Flags().StringP("output", "o", "", "output directory for downloaded puzzles")
	cmd.Flags().IntP("workers", "w", 3, "number of parallel download workers (recommended: 2-5)")
	cmd.Flags().Bool("visible", false, "run browser in visible mode (not headless)")

	cmd.Flags().StringP("config", "c", "", "path to YAML config file")
	cmd.Flags().String("report", "", "write a CSV report of downloaded puzzles to this path")
	cmd.Flags().String("chrome-path", "", "path to Chrome or Chromium executable")
	cmd.Flags().Bool("download-browser", false, "download a Chromium build when no browser is found")
	cmd.Flags().Bool("sandbox", false, "keep the Chrome sandbox enabled (fails when running as root)")
	cmd.Flags().StringP("user-agent", "u", "", "set custom user agent")
	cmd.Flags().IntP("timeout", "t", 10, "maximum time (in second) to wait for page elements")
	cmd.Flags().Int("retries", 3, "maximum retries when loading the archive page")
	cmd.Flags().Duration("interval", 0, "minimum delay between two browser sessions")
	cmd.Flags().Bool("respect-robots", false, "abort when robots.txt disallows the archive page")

	cmd.Flags().BoolP("quiet", "q", false, "disable logging")
	cmd.Flags().Bool("verbose", false, "more verbose logging")

	return cmd
}

func cmdHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	start, end, err := parseDateRange(cfg.Start, cfg.End)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		return fmt.Errorf("output directory is required")
	}

	if info, err := os.Stat(cfg.Output); err == nil && !info.IsDir() {
		return fmt.Errorf("output %s is not a directory", cfg.Output)
	}

	switch {
	case cfg.Quiet:
		logrus.SetLevel(logrus.WarnLevel)
	case cfg.Verbose:
		logrus.SetLevel(logrus.DebugLevel)
	}

	chromePath, err := findBrowser(cfg)
	if err != nil {
		return err
	}

	printer := newProgressPrinter(os.Stdout)
	d := &samurai.Downloader{
		OutputDir:        cfg.Output,
		UserAgent:        cfg.UserAgent,
		EnableLog:        !cfg.Quiet,
		EnableVerboseLog: !cfg.Quiet && cfg.Verbose,

		Visible:       cfg.Visible,
		ChromePath:    chromePath,
		EnableSandbox: cfg.Sandbox,

		Workers:         cfg.Workers,
		WaitTimeout:     time.Duration(cfg.Timeout) * time.Second,
		MaxRetries:      cfg.Retries,
		SessionInterval: cfg.Interval,
		RespectRobots:   cfg.RespectRobots,

		Progress: printer.Print,
	}
	d.Validate()

	// Cancel gracefully on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := d.DownloadPuzzles(ctx, start, end)
	if err != nil {
		if nothingToDownload(err) {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			return nil
		}
		return err
	}

	if ctx.Err() != nil {
		fmt.Println("\n⚠ Download cancelled by user")
	}
	printer.Summary(summary)

	if cfg.Report != "" {
		if err := writeReport(cfg.Report, summary.Results); err != nil {
			return err
		}
		logrus.Printf("report saved to %s\n", cfg.Report)
	}

	return nil
}

// nothingToDownload reports whether err only means the archive offered no
// puzzle to download, which is not a failure of the tool.
func nothingToDownload(err error) bool {
	return errors.Is(err, samurai.ErrNoPuzzlesInRange) ||
		errors.Is(err, samurai.ErrNoPuzzles) ||
		errors.Is(err, samurai.ErrNoDropdown)
}

// findBrowser returns the configured chrome path, or downloads one when
// asked to and none is installed.
func findBrowser(cfg *config) (string, error) {
	if cfg.ChromePath != "" || !cfg.DownloadBrowser {
		return cfg.ChromePath, nil
	}

	if _, found := samurai.LookupBrowser(); found {
		return "", nil
	}

	logrus.Println("no browser found, downloading Chromium")
	return samurai.ResolveBrowser()
}

func writeReport(path string, results []*samurai.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return samurai.WriteReport(f, results)
}
