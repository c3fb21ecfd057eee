// Package metrics records authentication outcome telemetry. Instruments are
// registered once per Recorder so tests can run with isolated registries.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation label values for auth outcome metrics.
const (
	OpRegister    = "register"
	OpLogin       = "login"
	OpVerifyToken = "verify_token"
	OpGetProfile  = "get_profile"
)

// Status label values for auth outcome metrics.
const (
	StatusSuccess         = "success"
	StatusInvalidInput    = "invalid_input"
	StatusUserExists      = "failed_user_exists"
	StatusNoUser          = "failed_no_user"
	StatusInvalidPassword = "failed_invalid_password"
	StatusNoToken         = "failed_no_token"
	StatusInvalidToken    = "invalid_token"
	StatusNotFound        = "not_found"
	StatusError           = "error"
)

// durationType is the fixed "type" label on the duration histogram; it keeps
// the series shape compatible with dashboards that slice by request type.
const durationType = "request"

// Recorder owns the auth service's Prometheus instruments.
type Recorder struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	poolConnections prometheus.Gauge
}

// NewRecorder creates a registry with Go/process collectors plus the auth
// instruments. Panics on duplicate registration (prometheus convention).
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_operations_total",
				Help: "Total number of authentication operations by operation and outcome",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_operation_duration_seconds",
				Help:    "Authentication operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type", "operation"},
		),
		poolConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_pool_connections",
				Help: "Number of database connections currently held",
			},
		),
	}

	registry.MustRegister(r.operations)
	registry.MustRegister(r.duration)
	registry.MustRegister(r.poolConnections)

	return r
}

// RecordOutcome observes one classified outcome: exactly one counter increment
// and one duration observation. A failed observation is logged and swallowed;
// metrics must never affect request correctness.
func (r *Recorder) RecordOutcome(operation string, status string, elapsed time.Duration) {
	counter, err := r.operations.GetMetricWithLabelValues(operation, status)
	if err != nil {
		slog.Warn("dropping outcome counter observation", "operation", operation, "status", status, "error", err)
	} else {
		counter.Inc()
	}

	histogram, err := r.duration.GetMetricWithLabelValues(durationType, operation)
	if err != nil {
		slog.Warn("dropping outcome duration observation", "operation", operation, "error", err)
		return
	}
	histogram.Observe(elapsed.Seconds())
}

// ConnAcquired increments the pool connection gauge.
func (r *Recorder) ConnAcquired() { r.poolConnections.Inc() }

// ConnReleased decrements the pool connection gauge.
func (r *Recorder) ConnReleased() { r.poolConnections.Dec() }

// Registry exposes the underlying registry for exposition and tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the text exposition of this Recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
