package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

type config struct {
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Output  string `yaml:"output"`
	Workers int    `yaml:"workers"`
	Visible bool   `yaml:"visible"`

	Report          string        `yaml:"report"`
	ChromePath      string        `yaml:"chrome_path"`
	DownloadBrowser bool          `yaml:"download_browser"`
	Sandbox         bool          `yaml:"sandbox"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         int           `yaml:"timeout"`
	Retries         int           `yaml:"retries"`
	Interval        time.Duration `yaml:"interval"`
	RespectRobots   bool          `yaml:"respect_robots"`

	Quiet   bool `yaml:"quiet"`
	Verbose bool `yaml:"verbose"`
}

// envKeys maps SAMURAI_* environment variables to flag names.
var envKeys = map[string]string{
	"SAMURAI_OUTPUT":         "output",
	"SAMURAI_WORKERS":        "workers",
	"SAMURAI_VISIBLE":        "visible",
	"SAMURAI_REPORT":         "report",
	"SAMURAI_CHROME_PATH":    "chrome-path",
	"SAMURAI_SANDBOX":        "sandbox",
	"SAMURAI_USER_AGENT":     "user-agent",
	"SAMURAI_TIMEOUT":        "timeout",
	"SAMURAI_RETRIES":        "retries",
	"SAMURAI_INTERVAL":       "interval",
	"SAMURAI_RESPECT_ROBOTS": "respect-robots",
}

// loadConfig merges, from lowest to highest priority: flag defaults, the
// YAML config file, SAMURAI_* environment (a .env file is loaded first),
// and flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config, error) {
	flags := cmd.Flags()
	cfg := defaultConfig(flags)

	if path, _ := flags.GetString("config"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// .env is optional
	_ = godotenv.Load()

	for env, name := range envKeys {
		value, ok := os.LookupEnv(env)
		if !ok || flags.Changed(name) {
			continue
		}
		if err := flags.Set(name, value); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", env, err)
		}
	}

	// Changed flags, including the ones set from environment, win.
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err == nil {
			err = cfg.apply(flags, f.Name)
		}
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig(flags *pflag.FlagSet) *config {
	cfg := &config{}
	flags.VisitAll(func(f *pflag.Flag) {
		cfg.apply(flags, f.Name)
	})
	return cfg
}

func (cfg *config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// apply copies the value of flag name into cfg.
func (cfg *config) apply(flags *pflag.FlagSet, name string) error {
	var err error
	switch name {
	case "start":
		cfg.Start, err = flags.GetString(name)
	case "end":
		cfg.End, err = flags.GetString(name)
	case "output":
		cfg.Output, err = flags.GetString(name)
	case "workers":
		cfg.Workers, err = flags.GetInt(name)
	case "visible":
		cfg.Visible, err = flags.GetBool(name)
	case "report":
		cfg.Report, err = flags.GetString(name)
	case "chrome-path":
		cfg.ChromePath, err = flags.GetString(name)
	case "download-browser":
		cfg.DownloadBrowser, err = flags.GetBool(name)
	case "sandbox":
		cfg.Sandbox, err = flags.GetBool(name)
	case "user-agent":
		cfg.UserAgent, err = flags.GetString(name)
	case "timeout":
		cfg.Timeout, err = flags.GetInt(name)
	case "retries":
		cfg.Retries, err = flags.GetInt(name)
	case "interval":
		cfg.Interval, err = flags.GetDuration(name)
	case "respect-robots":
		cfg.RespectRobots, err = flags.GetBool(name)
	case "quiet":
		cfg.Quiet, err = flags.GetBool(name)
	case "verbose":
		cfg.Verbose, err = flags.GetBool(name)
	}
	return err
}

// parseDateRange parses both dates and checks start is not after end.
func parseDateRange(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("both --start and --end are required")
	}

	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date must be before or equal to end date")
	}

	return startDate, endDate, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s. Use YYYY-MM-DD", s)
	}
	return t, nil
}
