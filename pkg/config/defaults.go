package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 5050
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Rate limit defaults
	DefaultRateLimitWindowSeconds = 900
	DefaultRateLimitMaxRequests   = 1000
	DefaultRateLimitSweepInterval = 5 * time.Minute

	// Forwarder defaults
	DefaultForwarderTimeout          = 60 * time.Second
	DefaultForwarderMaxIdleConns     = 100
	DefaultForwarderMaxIdlePerHost   = 10
	DefaultForwarderIdleConnTimeout  = 90 * time.Second
	DefaultForwarderMaxResponseBytes = int64(50 << 20) // 50MB

	// CORS defaults
	DefaultCORSAllowedOrigin = "*"
	DefaultCORSMaxAge        = 86400 // 24 hours

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "anvil"
	DefaultMetricsSubsystem = "proxy"

	// Tracing defaults
	DefaultTracingSampler       = "ratio"
	DefaultTracingSampleRatio   = 0.1
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingServiceName   = "anvil"
	DefaultTracingInsecure      = true
	DefaultTracingExportTimeout = 10 * time.Second

	// Journal defaults
	DefaultJournalDBPath        = "anvil-journal.db"
	DefaultJournalBufferSize    = 1024
	DefaultJournalWriteTimeout  = 5 * time.Second
	DefaultJournalRetentionDays = 7
	DefaultJournalPruneSchedule = "0 3 * * *"
)

// DefaultRequestDurationBuckets returns the default histogram buckets for
// request duration in seconds. Upstream weather services routinely take
// multiple seconds for large tile and capability responses, so the buckets
// run out to the forward timeout.
func DefaultRequestDurationBuckets() []float64 {
	return []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Rate limit defaults. MaxRequests is a pointer so that an explicit 0
	// (reject all proxied traffic) survives defaulting.
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = DefaultRateLimitWindowSeconds
	}
	if cfg.RateLimit.MaxRequests == nil {
		max := DefaultRateLimitMaxRequests
		cfg.RateLimit.MaxRequests = &max
	}
	if cfg.RateLimit.SweepInterval == 0 {
		cfg.RateLimit.SweepInterval = DefaultRateLimitSweepInterval
	}

	// Forwarder defaults
	if cfg.Forwarder.Timeout == 0 {
		cfg.Forwarder.Timeout = DefaultForwarderTimeout
	}
	if cfg.Forwarder.MaxIdleConns == 0 {
		cfg.Forwarder.MaxIdleConns = DefaultForwarderMaxIdleConns
	}
	if cfg.Forwarder.MaxIdleConnsPerHost == 0 {
		cfg.Forwarder.MaxIdleConnsPerHost = DefaultForwarderMaxIdlePerHost
	}
	if cfg.Forwarder.IdleConnTimeout == 0 {
		cfg.Forwarder.IdleConnTimeout = DefaultForwarderIdleConnTimeout
	}
	if cfg.Forwarder.MaxResponseBytes == 0 {
		cfg.Forwarder.MaxResponseBytes = DefaultForwarderMaxResponseBytes
	}

	// CORS defaults
	if cfg.CORS.AllowedOrigin == "" {
		cfg.CORS.AllowedOrigin = DefaultCORSAllowedOrigin
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	// Metrics defaults. Enabled is a pointer so that an explicit false
	// survives defaulting.
	if cfg.Metrics.Enabled == nil {
		enabled := DefaultMetricsEnabled
		cfg.Metrics.Enabled = &enabled
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.RequestDurationBuckets) == 0 {
		cfg.Metrics.RequestDurationBuckets = DefaultRequestDurationBuckets()
	}

	// Tracing defaults
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.Insecure == nil {
		insecure := DefaultTracingInsecure
		cfg.Tracing.Insecure = &insecure
	}
	if cfg.Tracing.ExportTimeout == 0 {
		cfg.Tracing.ExportTimeout = DefaultTracingExportTimeout
	}

	// Journal defaults
	if cfg.Journal.DBPath == "" {
		cfg.Journal.DBPath = DefaultJournalDBPath
	}
	if cfg.Journal.BufferSize == 0 {
		cfg.Journal.BufferSize = DefaultJournalBufferSize
	}
	if cfg.Journal.WriteTimeout == 0 {
		cfg.Journal.WriteTimeout = DefaultJournalWriteTimeout
	}
	if cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = DefaultJournalRetentionDays
	}
	if cfg.Journal.PruneSchedule == "" {
		cfg.Journal.PruneSchedule = DefaultJournalPruneSchedule
	}
}

// Default returns a fully defaulted configuration, equivalent to loading an
// empty YAML document.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
