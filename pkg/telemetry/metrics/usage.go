package metrics

import (
	"fastplanner/anvil/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UsageMetrics exposes the rate limiter's live usage counters as gauges.
// The values come from a snapshot function supplied after the limiter is
// constructed, so the gauges always reflect the limiter's current state
// without the limiter depending on this package.
//
// Metrics:
//   - anvil_proxy_rate_limiter_active_clients: clients with in-window requests
//   - anvil_proxy_rate_limiter_recorded_requests: total in-window timestamps
type UsageMetrics struct {
	cfg      *config.MetricsConfig
	registry *prometheus.Registry

	activeClients    prometheus.GaugeFunc
	recordedRequests prometheus.GaugeFunc
}

// NewUsageMetrics prepares the usage gauge group. Nothing is registered until
// Register is called with a snapshot source.
func NewUsageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UsageMetrics {
	return &UsageMetrics{cfg: cfg, registry: registry}
}

// Register installs the usage gauges backed by snapshot. The function is
// called once per gauge per scrape.
func (um *UsageMetrics) Register(snapshot func() (activeClients, recordedRequests int)) {
	um.activeClients = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: um.cfg.Namespace,
			Subsystem: um.cfg.Subsystem,
			Name:      "rate_limiter_active_clients",
			Help:      "Number of clients with at least one request inside the sliding window",
		},
		func() float64 {
			active, _ := snapshot()
			return float64(active)
		},
	)

	um.recordedRequests = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: um.cfg.Namespace,
			Subsystem: um.cfg.Subsystem,
			Name:      "rate_limiter_recorded_requests",
			Help:      "Total number of request timestamps currently inside the sliding window",
		},
		func() float64 {
			_, recorded := snapshot()
			return float64(recorded)
		},
	)

	um.registry.MustRegister(um.activeClients, um.recordedRequests)
}
