// Package metrics provides Prometheus metrics for the retrivis client daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UploadsTotal    *prometheus.CounterVec
	PollCyclesTotal prometheus.Counter
	RollbacksTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrivis_requests_total",
				Help: "Total backend API requests by operation and status.",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retrivis_request_duration_seconds",
				Help:    "Backend API request duration by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrivis_uploads_total",
				Help: "Total file upload pipelines by outcome.",
			},
			[]string{"outcome"},
		),
		PollCyclesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "retrivis_poll_cycles_total",
				Help: "Total document status poll cycles.",
			},
		),
		RollbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retrivis_rollbacks_total",
				Help: "Total optimistic mutations rolled back, by mutation kind.",
			},
			[]string{"mutation"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.UploadsTotal)
	reg.MustRegister(m.PollCyclesTotal)
	reg.MustRegister(m.RollbacksTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter and observes its duration.
// Safe to call on a nil receiver so the SDK works without a registry.
func (m *Metrics) RecordRequest(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordUpload increments the upload outcome counter.
func (m *Metrics) RecordUpload(outcome string) {
	if m == nil {
		return
	}
	m.UploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordPollCycle increments the poll cycle counter.
func (m *Metrics) RecordPollCycle() {
	if m == nil {
		return
	}
	m.PollCyclesTotal.Inc()
}

// RecordRollback increments the rollback counter for a mutation kind.
func (m *Metrics) RecordRollback(mutation string) {
	if m == nil {
		return
	}
	m.RollbacksTotal.WithLabelValues(mutation).Inc()
}
