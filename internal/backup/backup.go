// Package backup copies the files that are still within their retention
// period to the destination directory and records every decision in the
// copy report.
package backup

import (
	"context"
	"path/filepath"
	"time"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/report"
	"github.com/raoulx24/backup-retention/internal/retention"
	"github.com/raoulx24/backup-retention/internal/snapshot"
)

type Stage struct {
	fs  fs.FS
	log logging.Logger
}

func New(filesystem fs.FS, log logging.Logger) *Stage {
	if filesystem == nil {
		filesystem = fs.New()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Stage{fs: filesystem, log: log}
}

// Outcome is the terminal state of one file.
type Outcome int

const (
	Skipped Outcome = iota
	Copied
	CopiedDryRun
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Copied:
		return "copied"
	case CopiedDryRun:
		return "copied_dry_run"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Result folds the per-file outcomes of one Run.
type Result struct {
	Cutoff   time.Time
	Outcomes map[string]Outcome
	Errors   []error
}

// Count returns how many files ended in o.
func (r Result) Count(o Outcome) int {
	n := 0
	for _, got := range r.Outcomes {
		if got == o {
			n++
		}
	}
	return n
}

// Run copies every file of srcDir created at or after now-days into dstDir,
// replacing files of the same name, and commits one report row per file to
// reportPath. Per-file failures become error rows; the returned error is
// reserved for listing, report commit and cancellation failures.
func (s *Stage) Run(ctx context.Context, srcDir, dstDir string, days int, now time.Time, reportPath string, dryRun bool) (Result, error) {
	cutoff := retention.Cutoff(now, days)
	res := Result{Cutoff: cutoff, Outcomes: map[string]Outcome{}}

	snap, err := snapshot.Take(s.fs, srcDir)
	if err != nil {
		return res, err
	}

	w, err := report.Create(reportPath, report.CopyHeader)
	if err != nil {
		return res, err
	}

	for _, ent := range snap.Entries {
		if err := ctx.Err(); err != nil {
			w.Abort()
			return res, err
		}

		row, outcome, ferr := s.process(ctx, snap, ent, dstDir, cutoff, dryRun)
		res.Outcomes[ent.Name] = outcome
		if ferr != nil {
			res.Errors = append(res.Errors, ferr)
		}
		w.Write(row)
	}

	if err := w.Commit(); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Stage) process(ctx context.Context, snap snapshot.Snapshot, ent snapshot.Entry, dstDir string, cutoff time.Time, dryRun bool) ([]string, Outcome, error) {
	if !ent.OK() {
		s.log.Warn("copy: attributes unreadable", "file", ent.Name, "error", ent.Err)
		return report.CopyErrorRow(ent.Name, nil, "", ent.Err), Failed, ent.Err
	}

	rec := ent.Record
	if retention.Classify(rec.CreatedAt, cutoff) == retention.Old {
		return report.CopyRow(rec, report.ActionSkip, report.StatusSkipped), Skipped, nil
	}

	src := snap.Path(ent)
	dst := filepath.Join(dstDir, ent.Name)
	if dryRun {
		s.log.Info("[dry-run] would copy", "file", src, "to", dst)
		return report.CopyRow(rec, report.ActionCopy, report.StatusCopiedDryRun), CopiedDryRun, nil
	}

	if err := s.fs.CopyFile(ctx, src, dst); err != nil {
		cerr := appErrors.Wrap(appErrors.Copy, "copy", src, err)
		s.log.Error("copy failed", "file", src, "to", dst, "error", err)
		return report.CopyErrorRow(ent.Name, &rec, report.ActionCopy, cerr), Failed, cerr
	}
	s.log.Debug("copied", "file", src, "to", dst)
	return report.CopyRow(rec, report.ActionCopy, report.StatusCopied), Copied, nil
}
