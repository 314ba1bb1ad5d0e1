package fs

import (
	"errors"
	"io/fs"
	"syscall"
)

// defines helpers for classifying filesystem errors.
// They decide whether a failure is benign for the caller or must be reported.

// IsGone reports whether err means the path no longer exists.
func IsGone(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
