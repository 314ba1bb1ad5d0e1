package config

import (
	"path/filepath"
	"time"

	"github.com/raoulx24/backup-retention/internal/report"
)

type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Destination DestinationConfig `yaml:"destination"`
	Reports     ReportsConfig     `yaml:"reports"`
	Retention   RetentionConfig   `yaml:"retention"`
	DryRun      bool              `yaml:"dryRun"`
	Trigger     TriggerConfig     `yaml:"trigger"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type SourceConfig struct {
	Path  string      `yaml:"path"`
	Watch WatchConfig `yaml:"watch"`
}

type WatchConfig struct {
	Mode           string        `yaml:"mode"`           // "auto", "poll", "fsnotify"
	PollInterval   time.Duration `yaml:"pollInterval"`   // e.g. 30s
	DebounceWindow time.Duration `yaml:"debounceWindow"` // e.g. 2s
}

type DestinationConfig struct {
	Path string `yaml:"path"`
}

type ReportsConfig struct {
	Dir           string `yaml:"dir"`
	InventoryName string `yaml:"inventoryName"`
	CopyName      string `yaml:"copyName"`
}

type RetentionConfig struct {
	Days int `yaml:"days"`
}

type TriggerConfig struct {
	Mode     string `yaml:"mode"`     // "once", "schedule", "watch"
	Schedule string `yaml:"schedule"` // standard 5-field cron, e.g. "0 3 * * *"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "console", "json"
}

type MetricsConfig struct {
	Listen   string `yaml:"listen"`   // e.g. ":9109", served in schedule and watch modes
	Textfile string `yaml:"textfile"` // node_exporter textfile collector output
}

const (
	TriggerOnce     = "once"
	TriggerSchedule = "schedule"
	TriggerWatch    = "watch"

	WatchAuto     = "auto"
	WatchPoll     = "poll"
	WatchFsnotify = "fsnotify"
)

// Default returns the configuration used when neither file nor flags say otherwise.
func Default() *Config {
	return &Config{
		Reports: ReportsConfig{
			InventoryName: report.InventoryFile,
			CopyName:      report.CopyFile,
		},
		Retention: RetentionConfig{Days: 3},
		Source: SourceConfig{
			Watch: WatchConfig{
				Mode:           WatchAuto,
				PollInterval:   30 * time.Second,
				DebounceWindow: 2 * time.Second,
			},
		},
		Trigger: TriggerConfig{Mode: TriggerOnce},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// InventoryReport is the full path of the inventory report.
func (c *Config) InventoryReport() string {
	return filepath.Join(c.Reports.Dir, c.Reports.InventoryName)
}

// CopyReport is the full path of the copy report.
func (c *Config) CopyReport() string {
	return filepath.Join(c.Reports.Dir, c.Reports.CopyName)
}
