// Package fsprobe checks whether fsnotify works reliably for a directory.
// It performs a real create+rename in the directory and waits for an event.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Result reports whether fsnotify is usable and why not.
type Result struct {
	Supported bool
	Reason    string
}

func unsupported(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Probe watches dir, renames a scratch file inside it and reports whether an
// event arrived within wait. Network and some container filesystems accept
// the watch but never deliver events.
func Probe(dir string, wait time.Duration) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !st.IsDir() {
		return unsupported("not a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	f, err := os.CreateTemp(dir, ".fsprobe-*")
	if err != nil {
		return unsupported("cannot create scratch file: %v", err)
	}
	tmp := f.Name()
	f.Close()

	final := filepath.Join(dir, filepath.Base(tmp)+".done")
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return unsupported("rename failed: %v", err)
	}
	defer os.Remove(final)

	timeout := time.NewTimer(wait)
	defer timeout.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported("event channel closed")
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) != 0 {
				return Result{Supported: true}
			}
		case err := <-w.Errors:
			return unsupported("watch error: %v", err)
		case <-timeout.C:
			return unsupported("no events received within %s", wait)
		}
	}
}
