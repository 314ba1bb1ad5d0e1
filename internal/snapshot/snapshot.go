// Package snapshot takes the per-stage listing of a directory: the regular
// files directly inside it, sorted by name, with their attributes resolved.
package snapshot

import (
	"path/filepath"

	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/fs"
)

// Entry is one listed file. Err is set, and Record holds only the name, when
// its attributes could not be read.
type Entry struct {
	Name   string
	Record Record
	Err    error
}

func (e Entry) OK() bool {
	return e.Err == nil
}

// Snapshot is a single listing pass over Dir.
type Snapshot struct {
	Dir     string
	Entries []Entry
}

// Take lists dir and resolves every file's attributes. Only a failure to list
// the directory itself is returned as an error; per-file failures are kept
// in the entries.
func Take(f fs.FS, dir string) (Snapshot, error) {
	names, err := f.ListRegular(dir)
	if err != nil {
		return Snapshot{}, appErrors.Wrap(appErrors.IOFailure, "list", dir, err)
	}

	snap := Snapshot{Dir: dir, Entries: make([]Entry, 0, len(names))}
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := f.Stat(path)
		if err != nil {
			snap.Entries = append(snap.Entries, Entry{
				Name:   name,
				Record: Record{Name: name},
				Err:    appErrors.Wrap(appErrors.AttributeRead, "stat", path, err),
			})
			continue
		}
		rec := FromFileInfo(info)
		rec.Name = name
		snap.Entries = append(snap.Entries, Entry{Name: name, Record: rec})
	}
	return snap, nil
}

// Path returns the full path of an entry.
func (s Snapshot) Path(e Entry) string {
	return filepath.Join(s.Dir, e.Name)
}
