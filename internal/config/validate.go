package config

import (
	"os"

	"github.com/robfig/cron/v3"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
)

// Validate rejects a configuration no run could be trusted with. All returned
// errors are ConfigurationErrors.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return appErrors.Configf("source", "path is required")
	}
	st, err := os.Stat(c.Source.Path)
	if err != nil {
		return appErrors.Configf("source", "%s does not exist or is not accessible: %v", c.Source.Path, err)
	}
	if !st.IsDir() {
		return appErrors.Configf("source", "%s is not a directory", c.Source.Path)
	}

	if c.Destination.Path == "" {
		return appErrors.Configf("destination", "path is required")
	}
	if c.Reports.Dir == "" {
		return appErrors.Configf("reports.dir", "log directory is required")
	}
	if c.Reports.InventoryName == "" || c.Reports.CopyName == "" {
		return appErrors.Configf("reports", "report file names must not be empty")
	}
	if c.InventoryReport() == c.CopyReport() {
		return appErrors.Configf("reports", "inventory and copy reports must differ")
	}

	if c.Retention.Days < 0 {
		return appErrors.Configf("retention.days", "must be >= 0, got %d", c.Retention.Days)
	}

	switch c.Trigger.Mode {
	case TriggerOnce:
	case TriggerSchedule:
		if c.Trigger.Schedule == "" {
			return appErrors.Configf("trigger.schedule", "required when trigger mode is %q", TriggerSchedule)
		}
		if _, err := cron.ParseStandard(c.Trigger.Schedule); err != nil {
			return appErrors.Configf("trigger.schedule", "invalid cron expression %q: %v", c.Trigger.Schedule, err)
		}
	case TriggerWatch:
		if err := c.Source.Watch.validate(); err != nil {
			return err
		}
	default:
		return appErrors.Configf("trigger.mode", "unknown mode %q (valid: once, schedule, watch)", c.Trigger.Mode)
	}

	return nil
}

func (w WatchConfig) validate() error {
	switch w.Mode {
	case WatchAuto, WatchPoll:
		if w.PollInterval <= 0 {
			return appErrors.Configf("source.watch.pollInterval", "must be positive, got %s", w.PollInterval)
		}
	case WatchFsnotify:
	default:
		return appErrors.Configf("source.watch.mode", "unknown mode %q (valid: auto, poll, fsnotify)", w.Mode)
	}
	if w.DebounceWindow < 0 {
		return appErrors.Configf("source.watch.debounceWindow", "must not be negative")
	}
	return nil
}
