// Package scheduler posts a housekeeping job on a cron schedule.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/backup-retention/internal/config"
	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/mailbox"
	"github.com/raoulx24/backup-retention/internal/worker"
)

// Scheduler puts a job into the mailbox on every tick of a standard
// 5-field cron expression, e.g. "0 3 * * *" for daily at 3 AM.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entry   cron.EntryID
	expr    string
	mb      *mailbox.Mailbox[worker.Job]
	log     logging.Logger
	running bool
}

// New validates expr and returns a stopped scheduler.
func New(expr string, mb *mailbox.Mailbox[worker.Job], log logging.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(expr); err != nil {
		return nil, appErrors.Configf("trigger.schedule", "invalid cron expression %q: %v", expr, err)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		cron: cron.New(),
		expr: expr,
		mb:   mb,
		log:  log.With("component", "scheduler"),
	}, nil
}

// Start registers the schedule and runs it until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(s.expr, s.tick)
	if err != nil {
		return appErrors.Configf("trigger.schedule", "scheduling %q: %v", s.expr, err)
	}
	s.entry = id
	s.cron.Start()
	s.running = true
	s.log.Info("scheduler started", "schedule", s.expr, "next_run", s.cron.Entry(id).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) tick() {
	job := worker.NewJob(config.TriggerSchedule, time.Now())
	if s.mb.Put(job) {
		s.log.Warn("previous scheduled run still pending, replaced", "run_id", job.ID)
		return
	}
	s.log.Debug("scheduled run queued", "run_id", job.ID)
}

// Reschedule swaps the cron expression of a running scheduler.
func (s *Scheduler) Reschedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return appErrors.Configf("trigger.schedule", "invalid cron expression %q: %v", expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if expr == s.expr {
		return nil
	}
	s.expr = expr
	if !s.running {
		return nil
	}

	s.cron.Remove(s.entry)
	id, err := s.cron.AddFunc(expr, s.tick)
	if err != nil {
		return appErrors.Configf("trigger.schedule", "scheduling %q: %v", expr, err)
	}
	s.entry = id
	s.log.Info("schedule updated", "schedule", expr, "next_run", s.cron.Entry(id).Next)
	return nil
}

// Stop stops the scheduler and waits for a running tick to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("scheduler stopped")
}

// NextRun returns the next tick, or nil when the scheduler is not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	next := s.cron.Entry(s.entry).Next
	return &next
}
