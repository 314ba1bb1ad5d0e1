//go:build darwin || freebsd || netbsd

package fs

import (
	"os"
	"syscall"
	"time"
)

func birthTime(_ string, info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(st.Birthtimespec.Sec), int64(st.Birthtimespec.Nsec))
}
