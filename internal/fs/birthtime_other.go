//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package fs

import (
	"os"
	"time"
)

// No portable creation time on this platform.
func birthTime(_ string, _ os.FileInfo) time.Time {
	return time.Time{}
}
