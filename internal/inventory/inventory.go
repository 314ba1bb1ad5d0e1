// Package inventory records every file of the source directory in the
// inventory report without touching the files themselves.
package inventory

import (
	"context"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/report"
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

type Result struct {
	Files  int
	Errors []error
}

// Run writes one row per regular file of dir into reportPath and commits the
// report atomically. Unreadable files keep their row with empty attributes.
func (s *Stage) Run(ctx context.Context, dir, reportPath string) (Result, error) {
	var res Result

	snap, err := snapshot.Take(s.fs, dir)
	if err != nil {
		return res, err
	}

	w, err := report.Create(reportPath, report.InventoryHeader)
	if err != nil {
		return res, err
	}

	for _, ent := range snap.Entries {
		if err := ctx.Err(); err != nil {
			w.Abort()
			return res, err
		}

		res.Files++
		if !ent.OK() {
			s.log.Warn("inventory: attributes unreadable", "file", ent.Name, "error", ent.Err)
			res.Errors = append(res.Errors, ent.Err)
			w.Write(report.InventoryFailedRow(ent.Name))
			continue
		}
		w.Write(report.InventoryRow(ent.Record))
	}

	if err := w.Commit(); err != nil {
		return res, err
	}
	s.log.Debug("inventory report committed", "report", reportPath, "files", res.Files)
	return res, nil
}
