package metrics

import (
	"strconv"
	"time"

	"fastplanner/anvil/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics for proxied client requests.
//
// Metrics:
//   - anvil_proxy_requests_total: request count by service, method, status
//   - anvil_proxy_request_duration_seconds: request handling duration
//   - anvil_proxy_rate_limited_total: rejections by the sliding-window limiter
//   - anvil_proxy_response_size_bytes: response body size written to clients
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request handling duration histogram
	requestDuration *prometheus.HistogramVec

	// Rate limiter rejections
	rateLimitedTotal *prometheus.CounterVec

	// Response body size in bytes
	responseSizeBytes *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of proxied requests handled",
			},
			[]string{"service", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"service"},
		),

		rateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rate_limited_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
			[]string{"service"},
		),

		responseSizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "response_size_bytes",
				Help:      "Size of response bodies written to clients in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B to 64MB
			},
			[]string{"service"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.rateLimitedTotal,
		rm.responseSizeBytes,
	)

	return rm
}

// RecordRequest records metrics for a completed request.
func (rm *RequestMetrics) RecordRequest(service, method string, statusCode int, duration time.Duration, responseBytes int) {
	status := strconv.Itoa(statusCode)

	rm.requestsTotal.WithLabelValues(service, method, status).Inc()
	rm.requestDuration.WithLabelValues(service).Observe(duration.Seconds())

	if responseBytes > 0 {
		rm.responseSizeBytes.WithLabelValues(service).Observe(float64(responseBytes))
	}
}

// RecordRateLimited records a request rejected with 429.
func (rm *RequestMetrics) RecordRateLimited(service string) {
	rm.rateLimitedTotal.WithLabelValues(service).Inc()
}
