// Package watcher monitors the source directory and posts a job when its
// listing changes.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/fsprobe"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/mailbox"
	"github.com/raoulx24/backup-retention/internal/worker"
)

// probeWait bounds how long auto mode waits for a test event.
const probeWait = 200 * time.Millisecond

// Watcher fingerprints the source listing (names, sizes, modification times)
// and puts a job into the mailbox whenever the fingerprint changes. The first
// fingerprint always counts as a change, so watching starts with a run.
type Watcher struct {
	mu sync.RWMutex

	dir      string
	mode     string
	interval time.Duration
	debounce time.Duration

	fs  fs.FS
	log logging.Logger
	mb  *mailbox.Mailbox[worker.Job]

	lastSum uint64
	seen    bool
}

// New creates a watcher from the source configuration.
func New(cfg config.SourceConfig, filesystem fs.FS, log logging.Logger, mb *mailbox.Mailbox[worker.Job]) *Watcher {
	if filesystem == nil {
		filesystem = fs.New()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		dir:      cfg.Path,
		mode:     cfg.Watch.Mode,
		interval: cfg.Watch.PollInterval,
		debounce: cfg.Watch.DebounceWindow,
		fs:       filesystem,
		log:      log.With("component", "watcher"),
		mb:       mb,
	}
}

// Start chooses the watching strategy and blocks until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.RLock()
	mode, dir := w.mode, w.dir
	w.mu.RUnlock()

	switch mode {
	case config.WatchFsnotify:
		return w.StartFsNotify(ctx)

	case config.WatchPoll:
		w.StartPolling(ctx)
		return nil

	case config.WatchAuto:
		res := fsprobe.Probe(dir, probeWait)
		if res.Supported {
			w.log.Info("fsnotify events delivered, watching", "dir", dir)
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling instead", "dir", dir, "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown watch mode %q", mode)
	}
}

// UpdateConfig applies hot-reloaded source settings. The directory takes
// effect on the next detection; a new mode or poll interval needs a restart.
func (w *Watcher) UpdateConfig(cfg config.SourceConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cfg.Watch.Mode != w.mode || cfg.Watch.PollInterval != w.interval {
		w.log.Warn("watch mode and poll interval changes apply after restart")
	}
	if cfg.Path != w.dir {
		w.seen = false
	}
	w.dir = cfg.Path
	w.debounce = cfg.Watch.DebounceWindow
}
