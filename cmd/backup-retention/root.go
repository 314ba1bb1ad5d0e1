package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/config"
	appErrors "github.com/raoulx24/backup-retention/internal/errors"
)

type rootFlags struct {
	configFile string

	from, to, logDir string
	days             int
	dryRun           bool

	trigger      string
	schedule     string
	watchMode    string
	pollInterval time.Duration

	logLevel, logFormat string

	metricsListen, metricsTextfile string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "backup-retention",
		Short: "Age-based cleanup and backup of a directory",
		Long: `backup-retention lists the regular files of a source directory, deletes those
created more than --days days ago and copies the rest to a destination directory.

Two CSV reports are written to --log-dir: backupsFrom.log with the source
listing before cleanup and backupsTo.log with one row per copy decision.
Both are replaced atomically, so a crash leaves the previous report intact.

Settings come from defaults, then the --config file, then flags.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return appErrors.Configf("arguments", "unexpected %q, all settings are flags", args)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd, cfg, &f)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return appErrors.Wrap(appErrors.Configuration, "flags", "", err)
	})
	bindFlags(cmd, &f)

	return cmd
}

func bindFlags(cmd *cobra.Command, f *rootFlags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "YAML config file")
	fl.StringVar(&f.from, "from", "", "source directory")
	fl.StringVar(&f.to, "to", "", "destination directory")
	fl.StringVar(&f.logDir, "log-dir", "", "directory for the CSV reports")
	fl.IntVar(&f.days, "days", 3, "retention period in days (>= 0)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "report what would happen without deleting or copying")
	fl.StringVar(&f.trigger, "trigger", config.TriggerOnce, "once, schedule or watch")
	fl.StringVar(&f.schedule, "schedule", "", `cron expression for --trigger schedule, e.g. "0 3 * * *"`)
	fl.StringVar(&f.watchMode, "watch-mode", config.WatchAuto, "auto, poll or fsnotify")
	fl.DurationVar(&f.pollInterval, "poll-interval", 30*time.Second, "listing interval in poll mode")
	fl.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", "console", "console or json")
	fl.StringVar(&f.metricsListen, "metrics-listen", "", "serve /metrics on this address in schedule and watch modes")
	fl.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write metrics to this file after each run")
}

// loadConfig layers the config file and the flags the user set over the defaults.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, appErrors.Wrap(appErrors.Configuration, "config", f.configFile, err)
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("from") {
		cfg.Source.Path = f.from
	}
	if set("to") {
		cfg.Destination.Path = f.to
	}
	if set("log-dir") {
		cfg.Reports.Dir = f.logDir
	}
	if set("days") {
		cfg.Retention.Days = f.days
	}
	if set("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if set("trigger") {
		cfg.Trigger.Mode = f.trigger
	}
	if set("schedule") {
		cfg.Trigger.Schedule = f.schedule
	}
	if set("watch-mode") {
		cfg.Source.Watch.Mode = f.watchMode
	}
	if set("poll-interval") {
		cfg.Source.Watch.PollInterval = f.pollInterval
	}
	if set("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if set("metrics-listen") {
		cfg.Metrics.Listen = f.metricsListen
	}
	if set("metrics-textfile") {
		cfg.Metrics.Textfile = f.metricsTextfile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the command and returns the process exit status.
func Execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
		return appErrors.ExitCode(err)
	}
	return 0
}
