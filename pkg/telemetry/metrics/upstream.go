package metrics

import (
	"time"

	"fastplanner/anvil/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks metrics for calls to the weather upstreams.
//
// Metrics:
//   - anvil_proxy_upstream_requests_total: upstream call count by service, outcome
//   - anvil_proxy_upstream_duration_seconds: upstream call latency
type UpstreamMetrics struct {
	// Upstream call count by outcome
	callsTotal *prometheus.CounterVec

	// Upstream call latency histogram
	callDuration *prometheus.HistogramVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream calls by outcome",
			},
			[]string{"service", "outcome"},
		),

		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_duration_seconds",
				Help:      "Latency of upstream calls in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"service", "outcome"},
		),
	}

	registry.MustRegister(
		um.callsTotal,
		um.callDuration,
	)

	return um
}

// RecordCall records a single upstream call.
func (um *UpstreamMetrics) RecordCall(service, outcome string, duration time.Duration) {
	um.callsTotal.WithLabelValues(service, outcome).Inc()
	um.callDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}
