package infra

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the prometheus collectors the gateway exposes.
type Metrics struct {
	Requests         *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UpstreamAttempts *prometheus.CounterVec
}

// NewMetrics registers gateway collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviegen",
			Name:      "requests_total",
			Help:      "Gateway requests by action and outcome.",
		}, []string{"action", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "moviegen",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency by action.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"action"}),
		UpstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviegen",
			Name:      "upstream_attempts_total",
			Help:      "Individual upstream call attempts by operation.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Requests, m.RequestDuration, m.UpstreamAttempts)
	return m
}

// RecordAttempt satisfies the upstream executor's attempt observer.
func (m *Metrics) RecordAttempt(operation string) {
	if m == nil {
		return
	}
	m.UpstreamAttempts.WithLabelValues(operation).Inc()
}
