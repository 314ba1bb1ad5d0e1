package snapshot

import (
	"path/filepath"
	"time"

	"github.com/raoulx24/backup-retention/internal/fs"
)

var epoch = time.Unix(0, 0)

// Record describes a single file of a directory listing. Timestamps are UTC.
type Record struct {
	Name       string
	Size       int64
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// FromFileInfo constructs a Record, resolving the creation time with BestEffortCreation.
func FromFileInfo(info fs.FileInfo) Record {
	return Record{
		Name:       filepath.Base(info.Path),
		Size:       info.Size,
		CreatedAt:  BestEffortCreation(info.BTime, info.MTime).UTC(),
		ModifiedAt: info.MTime.UTC(),
	}
}

// BestEffortCreation returns btime, or mtime when the filesystem did not
// report a usable creation time (missing, or at/before the Unix epoch).
func BestEffortCreation(btime, mtime time.Time) time.Time {
	if btime.IsZero() || !btime.After(epoch) {
		return mtime
	}
	return btime
}
