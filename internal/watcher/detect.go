package watcher

import (
	"time"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/worker"
)

// detect posts a job if the source fingerprint changed since the last call.
func (w *Watcher) detect() {
	w.mu.RLock()
	dir := w.dir
	last, seen := w.lastSum, w.seen
	w.mu.RUnlock()

	sum, files, err := fingerprint(w.fs, dir)
	if err != nil {
		w.log.Warn("listing source failed", "dir", dir, "error", err)
		return
	}
	if seen && sum == last {
		return
	}

	w.mu.Lock()
	w.lastSum, w.seen = sum, true
	w.mu.Unlock()

	job := worker.NewJob(config.TriggerWatch, time.Now())
	if w.mb.Put(job) {
		w.log.Debug("pending run replaced", "run_id", job.ID)
	}
	w.log.Info("source changed, run queued", "dir", dir, "files", files, "run_id", job.ID)
}
