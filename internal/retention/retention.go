// Package retention decides which files are past their retention period and
// purges them from the source directory.
package retention

import (
	"context"
	"time"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/snapshot"
)

type Engine struct {
	fs  fs.FS
	log logging.Logger
}

func New(filesystem fs.FS, log logging.Logger) *Engine {
	if filesystem == nil {
		filesystem = fs.New()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		fs:  filesystem,
		log: log,
	}
}

// Result folds the per-file outcomes of one Apply.
type Result struct {
	Cutoff  time.Time
	Deleted []string // removed, or would be removed in dry-run
	Kept    []string
	Errors  []error // AttributeReadError and DeletionError, one per failed file
}

// Apply removes every file in dir created before now-days. With dryRun set
// the deletions are only logged. Per-file failures are collected in the
// result and never stop the batch; the returned error is reserved for a
// listing failure or cancellation.
func (e *Engine) Apply(ctx context.Context, dir string, days int, now time.Time, dryRun bool) (Result, error) {
	cutoff := Cutoff(now, days)
	res := Result{Cutoff: cutoff}

	snap, err := snapshot.Take(e.fs, dir)
	if err != nil {
		return res, err
	}

	for _, ent := range snap.Entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if !ent.OK() {
			e.log.Warn("retention: skipping unreadable file", "file", ent.Name, "error", ent.Err)
			res.Errors = append(res.Errors, ent.Err)
			continue
		}

		if Classify(ent.Record.CreatedAt, cutoff) == Recent {
			res.Kept = append(res.Kept, ent.Name)
			continue
		}

		path := snap.Path(ent)
		if dryRun {
			e.log.Info("[dry-run] would remove", "file", path, "created_at", ent.Record.CreatedAt)
			res.Deleted = append(res.Deleted, ent.Name)
			continue
		}

		if err := e.fs.Remove(path); err != nil && !fs.IsGone(err) {
			derr := appErrors.Wrap(appErrors.Deletion, "remove", path, err)
			e.log.Error("retention: deletion failed", "file", path, "error", err)
			res.Errors = append(res.Errors, derr)
			continue
		}
		e.log.Info("removed", "file", path, "created_at", ent.Record.CreatedAt)
		res.Deleted = append(res.Deleted, ent.Name)
	}

	return res, nil
}
