package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/config"
	appErrors "github.com/raoulx24/backup-retention/internal/errors"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/mailbox"
	"github.com/raoulx24/backup-retention/internal/metrics"
	"github.com/raoulx24/backup-retention/internal/scheduler"
	"github.com/raoulx24/backup-retention/internal/watcher"
	"github.com/raoulx24/backup-retention/internal/worker"
)

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, f *rootFlags) error {
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return appErrors.Configf("logging", "%v", err)
	}
	defer func() { _ = log.Sync() }()

	collector := metrics.New(nil)
	mb := mailbox.New[worker.Job]()
	w := worker.New(cfg, nil, log, collector, mb, nil)

	if cfg.Trigger.Mode == config.TriggerOnce {
		sum, err := w.Handle(ctx, worker.NewJob(config.TriggerOnce, time.Now()))
		if err != nil {
			return err
		}
		if n := sum.FileErrors(); n > 0 {
			log.Warn("run finished with per-file errors, see the reports", "file_errors", n)
		}
		return nil
	}

	return daemon(ctx, cmd, cfg, f, log, collector, mb, w)
}

// daemon runs the worker and one trigger until ctx is done. SIGHUP re-reads
// the configuration.
func daemon(ctx context.Context, cmd *cobra.Command, cfg *config.Config, f *rootFlags,
	log logging.Logger, collector *metrics.Collector, mb *mailbox.Mailbox[worker.Job], w *worker.Worker) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if cfg.Metrics.Listen != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metricsMux(collector),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("serving metrics", "addr", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var (
		sched *scheduler.Scheduler
		watch *watcher.Watcher
		fatal = make(chan error, 1)
	)

	switch cfg.Trigger.Mode {
	case config.TriggerSchedule:
		var err error
		if sched, err = scheduler.New(cfg.Trigger.Schedule, mb, log); err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

	case config.TriggerWatch:
		watch = watcher.New(cfg.Source, nil, log, mb)
		go func() {
			if err := watch.Start(ctx); err != nil {
				fatal <- appErrors.Wrap(appErrors.IOFailure, "watch", cfg.Source.Path, err)
			}
		}()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil

		case err := <-fatal:
			return err

		case <-hup:
			next, err := loadConfig(cmd, f)
			if err != nil {
				log.Error("config reload failed, keeping current settings", "error", appErrors.UserMessage(err))
				continue
			}
			if next.Trigger.Mode != cfg.Trigger.Mode {
				log.Warn("trigger mode change applies after restart", "current", cfg.Trigger.Mode, "requested", next.Trigger.Mode)
			}
			w.UpdateConfig(next)
			if sched != nil {
				if err := sched.Reschedule(next.Trigger.Schedule); err != nil {
					log.Error("reschedule failed", "error", err)
				}
			}
			if watch != nil {
				watch.UpdateConfig(next.Source)
			}
			log.Info("config reloaded")
		}
	}
}

func metricsMux(c *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
