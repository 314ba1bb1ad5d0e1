// Package fs defines the filesystem abstraction used by backup-retention.
// It provides the FS interface, the FileInfo type shared across the system
// and the atomic replace primitive reports and copies are finalized with.
package fs

import (
	"context"
	"os"
	"time"
)

// FileInfo is the raw metadata of one file. BTime is the native creation
// (birth) time and is zero when the platform or filesystem does not report it.
type FileInfo struct {
	Path  string
	Size  int64
	Mode  os.FileMode
	MTime time.Time
	BTime time.Time
	Inode uint64
}

type FS interface {
	// ListRegular returns the names of the regular files directly inside dir.
	// Symlinks count when they resolve to a regular file; directories are never entered.
	ListRegular(dir string) ([]string, error)
	Stat(path string) (FileInfo, error)
	CopyFile(ctx context.Context, src, dst string) error
	Remove(path string) error
	MkdirAll(path string) error
}
