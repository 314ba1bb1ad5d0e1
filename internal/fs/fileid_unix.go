//go:build unix

package fs

import (
	"os"
	"syscall"
)

// fileID identifies the file behind a path, so that a source replaced by
// rename during a copy is noticed even when size and mtime match.
func fileID(_ string, info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
