// Package worker runs the housekeeping stages for each job it receives.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/raoulx24/backup-retention/internal/backup"
	"github.com/raoulx24/backup-retention/internal/config"
	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/inventory"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/mailbox"
	"github.com/raoulx24/backup-retention/internal/metrics"
	"github.com/raoulx24/backup-retention/internal/retention"
)

// Worker executes inventory, retention and copy in that order, one job at a time.
type Worker struct {
	mu  sync.RWMutex
	cfg config.Config

	fs      fs.FS
	log     logging.Logger
	metrics *metrics.Collector
	clock   Clock
	mb      *mailbox.Mailbox[Job]

	inventory *inventory.Stage
	retention *retention.Engine
	backup    *backup.Stage
}

// Summary describes one finished run.
type Summary struct {
	RunID    string
	Trigger  string
	DryRun   bool
	Started  time.Time
	Finished time.Time

	Inventory inventory.Result
	Retention retention.Result
	Copy      backup.Result
}

// FileErrors counts the per-file failures of all stages.
func (s Summary) FileErrors() int {
	return len(s.Inventory.Errors) + len(s.Retention.Errors) + len(s.Copy.Errors)
}

// New creates a worker. A nil filesystem uses the OS, a nil clock the wall
// clock; metrics may be nil.
func New(cfg *config.Config, filesystem fs.FS, log logging.Logger, m *metrics.Collector, mb *mailbox.Mailbox[Job], clock Clock) *Worker {
	if filesystem == nil {
		filesystem = fs.New()
	}
	if log == nil {
		log = logging.Nop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if mb == nil {
		mb = mailbox.New[Job]()
	}
	log = log.With("component", "worker")

	return &Worker{
		cfg:       *cfg,
		fs:        filesystem,
		log:       log,
		metrics:   m,
		clock:     clock,
		mb:        mb,
		inventory: inventory.New(filesystem, log),
		retention: retention.New(filesystem, log),
		backup:    backup.New(filesystem, log),
	}
}

// UpdateConfig hot-reloads the configuration. A run in progress keeps the
// configuration it started with.
func (w *Worker) UpdateConfig(cfg *config.Config) {
	w.mu.Lock()
	w.cfg = *cfg
	w.mu.Unlock()
	w.log.Info("configuration updated")
}

// Start handles jobs from the mailbox until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	for {
		job, ok := w.mb.Take(ctx)
		if !ok {
			w.log.Info("worker stopped")
			return
		}
		if _, err := w.Handle(ctx, job); err != nil {
			w.log.Error("run failed", "run_id", job.ID, "error", err)
		}
	}
}

// Handle performs one run. The returned error is fatal for the run: a
// listing, directory or report commit failure, or cancellation. Per-file
// failures are only counted in the summary.
func (w *Worker) Handle(ctx context.Context, job Job) (sum Summary, err error) {
	w.mu.RLock()
	cfg := w.cfg
	w.mu.RUnlock()

	log := w.log.With("run_id", job.ID, "trigger", job.Trigger)
	sum = Summary{RunID: job.ID, Trigger: job.Trigger, DryRun: cfg.DryRun, Started: w.clock.Now().UTC()}
	log.Info("run started", "source", cfg.Source.Path, "destination", cfg.Destination.Path,
		"days", cfg.Retention.Days, "dry_run", cfg.DryRun)

	defer func() {
		sum.Finished = w.clock.Now().UTC()
		w.record(log, sum, err, cfg.Metrics.Textfile)
	}()

	if err = w.fs.MkdirAll(cfg.Reports.Dir); err != nil {
		return sum, appErrors.Wrap(appErrors.IOFailure, "mkdir", cfg.Reports.Dir, err)
	}
	if !cfg.DryRun {
		if err = w.fs.MkdirAll(cfg.Destination.Path); err != nil {
			return sum, appErrors.Wrap(appErrors.IOFailure, "mkdir", cfg.Destination.Path, err)
		}
	}

	sum.Inventory, err = w.inventory.Run(ctx, cfg.Source.Path, cfg.InventoryReport())
	if err != nil {
		return sum, err
	}
	log.Info("inventory written", "report", cfg.InventoryReport(), "files", sum.Inventory.Files)

	sum.Retention, err = w.retention.Apply(ctx, cfg.Source.Path, cfg.Retention.Days, w.clock.Now().UTC(), cfg.DryRun)
	if err != nil {
		return sum, err
	}
	log.Info("retention applied", "cutoff", sum.Retention.Cutoff,
		"deleted", len(sum.Retention.Deleted), "kept", len(sum.Retention.Kept))

	sum.Copy, err = w.backup.Run(ctx, cfg.Source.Path, cfg.Destination.Path, cfg.Retention.Days,
		w.clock.Now().UTC(), cfg.CopyReport(), cfg.DryRun)
	if err != nil {
		return sum, err
	}
	log.Info("copy report written", "report", cfg.CopyReport(),
		"copied", sum.Copy.Count(backup.Copied)+sum.Copy.Count(backup.CopiedDryRun),
		"skipped", sum.Copy.Count(backup.Skipped))

	return sum, nil
}

func (w *Worker) record(log logging.Logger, sum Summary, err error, textfile string) {
	result := metrics.ResultSuccess
	switch {
	case err != nil:
		result = metrics.ResultFailed
	case sum.FileErrors() > 0:
		result = metrics.ResultPartial
	}

	w.metrics.ObserveFiles(metrics.StageInventory, "listed", sum.Inventory.Files-len(sum.Inventory.Errors))
	w.metrics.ObserveFiles(metrics.StageInventory, "error", len(sum.Inventory.Errors))
	w.metrics.ObserveFiles(metrics.StageRetention, deletedOutcome(sum.DryRun), len(sum.Retention.Deleted))
	w.metrics.ObserveFiles(metrics.StageRetention, "kept", len(sum.Retention.Kept))
	w.metrics.ObserveFiles(metrics.StageRetention, "error", len(sum.Retention.Errors))
	for _, o := range []backup.Outcome{backup.Skipped, backup.Copied, backup.CopiedDryRun, backup.Failed} {
		w.metrics.ObserveFiles(metrics.StageCopy, o.String(), sum.Copy.Count(o))
	}
	w.metrics.ObserveRun(result, sum.Finished.Sub(sum.Started), sum.Finished)
	if werr := w.metrics.WriteTextfile(textfile); werr != nil {
		log.Warn("writing metrics textfile failed", "path", textfile, "error", werr)
	}

	log.Info("run finished", "result", result, "file_errors", sum.FileErrors(),
		"duration", sum.Finished.Sub(sum.Started))
}

func deletedOutcome(dryRun bool) string {
	if dryRun {
		return "deleted_dry_run"
	}
	return "deleted"
}
