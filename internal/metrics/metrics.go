// Package metrics exposes run and per-file counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backup_retention"

// Stage labels.
const (
	StageInventory = "inventory"
	StageRetention = "retention"
	StageCopy      = "copy"
)

// Run result labels.
const (
	ResultSuccess = "success"
	ResultPartial = "partial" // completed with per-file errors
	ResultFailed  = "failed"
)

// Collector owns a private registry so that only housekeeping metrics are
// exported. A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	files       *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// New registers the collector's metrics on registry, or on a fresh registry
// when registry is nil.
func New(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Housekeeping runs by result.",
		}, []string{"result"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files processed by stage and outcome.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a complete run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without a fatal error.",
		}),
	}

	registry.MustRegister(c.runs, c.files, c.duration, c.lastSuccess)
	return c
}

// Registry returns the registry the metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveFiles adds n files with the given stage and outcome.
func (c *Collector) ObserveFiles(stage, outcome string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.files.WithLabelValues(stage, outcome).Add(float64(n))
}

// ObserveRun records one finished run. finished is only used for successful
// and partial runs.
func (c *Collector) ObserveRun(result string, took time.Duration, finished time.Time) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(result).Inc()
	c.duration.Observe(took.Seconds())
	if result != ResultFailed {
		c.lastSuccess.Set(float64(finished.Unix()))
	}
}

// Handler serves the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
