// Package metrics exposes Prometheus collectors for reconcile runs.
//
// Collectors live on their own registry rather than the global default so
// that tests and multiple servers in one process do not collide.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bats"

// Recorder holds the collectors updated after every run.
type Recorder struct {
	registry *prometheus.Registry

	Runs              *prometheus.CounterVec
	DuplicatesRemoved prometheus.Counter
	SalesMatched      *prometheus.CounterVec
	SalesDropped      *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	ActiveSessions    prometheus.Gauge
}

// NewRecorder creates and registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconcile runs by outcome.",
		}, []string{"status"}),
		DuplicatesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_duplicates_removed_total",
			Help:      "Duplicate lead records removed.",
		}),
		SalesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_matched_total",
			Help:      "Sales attributed to a source, by match pass.",
		}, []string{"pass"}),
		SalesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_dropped_total",
			Help:      "Sales rows excluded from attribution, by reason.",
		}, []string{"reason"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_run_duration_seconds",
			Help:      "Wall time of a reconcile run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Working sessions currently held in memory.",
		}),
	}

	r.registry.MustRegister(
		r.Runs,
		r.DuplicatesRemoved,
		r.SalesMatched,
		r.SalesDropped,
		r.RunDuration,
		r.ActiveSessions,
	)
	return r
}

// RunSample is what a finished run reports.
type RunSample struct {
	Status      string // "completed" or "failed"
	Duration    time.Duration
	Duplicates  int
	Pass1       int
	Pass2       int
	Malformed   int
	NonPositive int
	Unmatched   int
}

// ObserveRun records one run. A nil recorder is a no-op.
func (r *Recorder) ObserveRun(s RunSample) {
	if r == nil {
		return
	}
	r.Runs.WithLabelValues(s.Status).Inc()
	r.RunDuration.Observe(s.Duration.Seconds())
	r.DuplicatesRemoved.Add(float64(s.Duplicates))
	r.SalesMatched.WithLabelValues("order_id").Add(float64(s.Pass1))
	r.SalesMatched.WithLabelValues("name").Add(float64(s.Pass2))
	r.SalesDropped.WithLabelValues("malformed").Add(float64(s.Malformed))
	r.SalesDropped.WithLabelValues("non_positive").Add(float64(s.NonPositive))
	r.SalesDropped.WithLabelValues("unmatched").Add(float64(s.Unmatched))
}

// SetActiveSessions updates the session gauge. A nil recorder is a no-op.
func (r *Recorder) SetActiveSessions(n int) {
	if r == nil {
		return
	}
	r.ActiveSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
