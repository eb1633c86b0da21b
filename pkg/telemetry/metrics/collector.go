package metrics

import (
	"time"

	"fastplanner/anvil/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in the Anvil
// proxy. It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// Recording is cheap enough to sit on the request path: metric instances are
// pre-allocated and every label space is bounded (four services, a handful of
// outcomes, HTTP status codes). Client keys never become labels.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Request metrics
	requestMetrics *RequestMetrics

	// Upstream metrics
	upstreamMetrics *UpstreamMetrics

	// Rate limiter usage gauges, registered lazily once the limiter exists
	usageMetrics *UsageMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh registry
// is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Namespace: "anvil",
//		Subsystem: "proxy",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified, for callers constructing the config
	// directly rather than through config loading.
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = config.DefaultRequestDurationBuckets()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	// Initialize metric subsystems
	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.usageMetrics = NewUsageMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed proxied request.
//
// Parameters:
//   - service: route identifier (e.g., "NOAA", "AWC"), or "none" when no
//     route matched
//   - method: HTTP method of the inbound request
//   - statusCode: HTTP status code written to the client
//   - duration: total request handling duration
//   - responseBytes: size of the response body written to the client
func (c *Collector) RecordRequest(service, method string, statusCode int, duration time.Duration, responseBytes int) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.requestMetrics.RecordRequest(service, method, statusCode, duration, responseBytes)
}

// RecordRateLimited records a request rejected by the rate limiter.
func (c *Collector) RecordRateLimited(service string) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.requestMetrics.RecordRateLimited(service)
}

// RecordUpstream records the outcome and latency of a single upstream call.
//
// Parameters:
//   - service: route identifier
//   - outcome: "success", "timeout", or "network_error"
//   - duration: upstream call latency
func (c *Collector) RecordUpstream(service, outcome string, duration time.Duration) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.upstreamMetrics.RecordCall(service, outcome, duration)
}

// RegisterUsage registers gauges backed by the rate limiter's live counters.
// The snapshot function is invoked on every scrape; it must be safe for
// concurrent use. Calling RegisterUsage more than once panics, matching
// Prometheus duplicate-registration behavior.
func (c *Collector) RegisterUsage(snapshot func() (activeClients, recordedRequests int)) {
	if !c.config.MetricsEnabled() {
		return
	}

	c.usageMetrics.Register(snapshot)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
