// Package metrics exposes Prometheus instrumentation for the analysis desk.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid_input"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors for one process. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Requests    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Narratives  *prometheus.CounterVec
	FeedNotices prometheus.Counter
}

// New registers the desk collectors plus Go runtime and process metrics.
// auditLen, when non-nil, backs the audit_log_entries gauge.
func New(auditLen func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketdesk",
			Name:      "operations_total",
			Help:      "Analysis operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketdesk",
			Name:      "operation_duration_seconds",
			Help:      "Analysis operation latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
		Narratives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketdesk",
			Name:      "narratives_total",
			Help:      "Narrative generations by resulting mode.",
		}, []string{"mode"}),
		FeedNotices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marketdesk",
			Name:      "feed_notices_total",
			Help:      "Regulatory notices ingested from feeds.",
		}),
	}
	reg.MustRegister(
		m.Requests, m.Duration, m.Narratives, m.FeedNotices,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if auditLen != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "marketdesk",
			Name:      "audit_log_entries",
			Help:      "Entries currently retained in the audit log.",
		}, func() float64 { return float64(auditLen()) }))
	}
	return m
}

// Observe records one finished operation.
func (m *Metrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Narrative counts one narrative attempt.
func (m *Metrics) Narrative(mode string) {
	if m == nil {
		return
	}
	m.Narratives.WithLabelValues(mode).Inc()
}

// Notices counts ingested feed notices.
func (m *Metrics) Notices(n int) {
	if m == nil {
		return
	}
	m.FeedNotices.Add(float64(n))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
