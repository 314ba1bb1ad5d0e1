//go:build linux

package fs

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime asks statx(2) for the creation time. Older kernels and filesystems
// that do not record it (ext3, tmpfs on some kernels, most network mounts)
// leave STATX_BTIME out of the returned mask.
func birthTime(path string, _ os.FileInfo) time.Time {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
}
