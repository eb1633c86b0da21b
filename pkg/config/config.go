package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration structure for the Anvil weather proxy.
// It contains all configuration sections for the HTTP server, rate limiting,
// upstream forwarding, routing origins, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and connection limits.
	Server ServerConfig `yaml:"server"`

	// RateLimit contains per-client sliding-window rate limiter configuration.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Forwarder contains configuration for the upstream HTTP client.
	Forwarder ForwarderConfig `yaml:"forwarder"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// Routes contains upstream origin overrides for the fixed service routes.
	Routes RoutesConfig `yaml:"routes"`

	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Journal contains request journal configuration.
	Journal JournalConfig `yaml:"journal"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// Host is the interface to bind to.
	// Default: "0.0.0.0"
	Host string `yaml:"host"`

	// Port is the TCP port to listen on.
	// Default: 5050
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the forwarder timeout or slow upstreams get
	// cut off mid-response.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// to drain during graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ListenAddress returns the host:port string the server binds to.
func (c ServerConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RateLimitConfig contains per-client sliding-window rate limiter configuration.
type RateLimitConfig struct {
	// WindowSeconds is the width of the sliding window in seconds.
	// Default: 900 (15 minutes)
	WindowSeconds int `yaml:"window_seconds"`

	// MaxRequests is the maximum number of requests a single client may make
	// within the window. A pointer distinguishes "not set" (default applies)
	// from an explicit 0, which rejects all proxied traffic.
	// Default: 1000
	MaxRequests *int `yaml:"max_requests"`

	// SweepInterval is how often the background sweeper prunes idle client
	// windows. Zero selects the default; a negative value disables sweeping.
	// Default: 5m
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// TrustProxyHeaders controls whether X-Forwarded-For and X-Real-IP are
	// consulted when deriving the client key. Enable only behind a trusted
	// load balancer, otherwise clients can forge their identity.
	// Default: false
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

// ForwarderConfig contains configuration for the upstream HTTP client.
type ForwarderConfig struct {
	// Timeout is the total time budget for a single upstream request,
	// connection establishment and body read included.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the connection pool size across all upstreams.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the connection pool size per upstream host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle upstream connection is kept open.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// MaxResponseBytes caps the size of an upstream response body. Responses
	// exceeding the cap are treated as network errors.
	// Default: 52428800 (50MB)
	MaxResponseBytes int64 `yaml:"max_response_bytes"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
// CORS headers are attached to every response; only the values are tunable.
type CORSConfig struct {
	// AllowedOrigin is the value of the Access-Control-Allow-Origin header.
	// Default: "*"
	AllowedOrigin string `yaml:"allowed_origin"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 86400 (24 hours)
	MaxAge int `yaml:"max_age"`
}

// RoutesConfig contains upstream origin overrides for the fixed routes.
// Origins must be absolute http(s) URLs without path, query, or fragment.
// Empty fields keep the built-in production origins.
type RoutesConfig struct {
	// NOAAOrigin overrides the nowCOAST map service origin.
	NOAAOrigin string `yaml:"noaa_origin"`

	// AWCOrigin overrides the Aviation Weather Center origin.
	AWCOrigin string `yaml:"awc_origin"`

	// BuoyOrigin overrides the National Data Buoy Center origin.
	BuoyOrigin string `yaml:"buoy_origin"`

	// LightningOrigin overrides the lightning detection origin.
	LightningOrigin string `yaml:"lightning_origin"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active. A pointer
	// distinguishes "not set" (default applies) from an explicit false.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "anvil"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "proxy"
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets defines histogram buckets for request duration
	// in seconds.
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60]
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// MetricsEnabled reports whether metrics collection is active, applying the
// default when the field was not set.
func (c MetricsConfig) MetricsEnabled() bool {
	if c.Enabled == nil {
		return DefaultMetricsEnabled
	}
	return *c.Enabled
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1 (10%)
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to exported spans.
	// Default: "anvil"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure *bool `yaml:"insecure"`

	// ExportTimeout is the timeout for OTLP exports.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`
}

// OTLPInsecure reports whether the OTLP connection skips TLS, applying the
// default when the field was not set.
func (c TracingConfig) OTLPInsecure() bool {
	if c.Insecure == nil {
		return DefaultTracingInsecure
	}
	return *c.Insecure
}

// JournalConfig contains request journal configuration.
type JournalConfig struct {
	// Enabled controls whether request journaling is active. When disabled
	// no database file is created and no background goroutines run.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// DBPath is the file path for the SQLite journal database.
	// Default: "anvil-journal.db"
	DBPath string `yaml:"db_path"`

	// BufferSize is the size of the async write channel. When the buffer is
	// full new entries are dropped rather than blocking request handling.
	// Default: 1024
	BufferSize int `yaml:"buffer_size"`

	// WriteTimeout bounds a single journal write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// RetentionDays is the number of days to retain journal entries.
	// Entries older than this are deleted on the prune schedule.
	// Default: 7
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduling retention pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}
