package watcher

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StartFsNotify runs detect() once and then after every burst of directory
// events, once the burst has been quiet for the debounce window.
func (w *Watcher) StartFsNotify(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w.mu.RLock()
	dir := w.dir
	w.mu.RUnlock()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	w.detect()

	resetCh := make(chan struct{}, 1)
	defer close(resetCh)

	go func() {
		var t *time.Timer
		for range resetCh {
			if t != nil {
				t.Stop()
			}
			w.mu.RLock()
			debounce := w.debounce
			w.mu.RUnlock()
			t = time.AfterFunc(debounce, func() {
				defer func() {
					if r := recover(); r != nil {
						w.log.Error("detect panic", "panic", r)
					}
				}()
				if ctx.Err() == nil {
					w.detect()
				}
			})
		}
		if t != nil {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				w.log.Error("events channel closed")
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug("event", "name", ev.Name, "op", ev.Op.String())

			select {
			case resetCh <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)
		}
	}
}
