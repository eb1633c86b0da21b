package types

// UsageStats is the point-in-time aggregation of rate limiter state. It is
// derived on demand and never stored; the JSON field names match what the
// service has always reported.
type UsageStats struct {
	// ActiveClients is the number of client keys with at least one
	// timestamp still inside the sliding window.
	ActiveClients int `json:"active_clients"`

	// TotalRequests is the sum of all window lengths across clients, i.e.
	// the number of requests recorded within the current window.
	TotalRequests int `json:"total_requests"`

	// WindowSeconds is the configured sliding window size.
	WindowSeconds int `json:"rate_limit_window"`

	// MaxRequests is the configured per-client request ceiling within the
	// window.
	MaxRequests int `json:"rate_limit_max"`
}

// StatsReport is the full body served by the stats endpoint: usage stats
// plus static service identity and the endpoint list.
type StatsReport struct {
	// Service is the human-readable service name.
	Service string `json:"service"`

	// Status is always "operational" while the process is serving.
	Status string `json:"status"`

	// Embedded usage stats are flattened into the report body.
	UsageStats

	// Endpoints lists the paths this service exposes.
	Endpoints []string `json:"endpoints"`

	// UptimeSeconds is the time elapsed since process start.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Timestamp is the report generation time in RFC 3339 format.
	Timestamp string `json:"timestamp"`
}

// HealthStatus is the body served by the health endpoint.
type HealthStatus struct {
	// Status is "healthy" whenever the process can serve requests.
	Status string `json:"status"`

	// Timestamp is the check time in RFC 3339 format.
	Timestamp string `json:"timestamp"`

	// Service is the human-readable service name.
	Service string `json:"service"`

	// Version is the service version string.
	Version string `json:"version"`
}
