package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.port").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateForwarder(&cfg.Forwarder)...)
	errs = append(errs, validateCORS(&cfg.CORS)...)
	errs = append(errs, validateRoutes(&cfg.Routes)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.Host == "" {
		errs = append(errs, FieldError{
			Field:   "server.host",
			Message: "host is required",
		})
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d is outside the valid range 1-65535", cfg.Port),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must not be negative",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must not be negative",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must not be negative",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must not be negative",
		})
	}

	return errs
}

// validateRateLimit validates rate limiter configuration.
func validateRateLimit(cfg *RateLimitConfig) []FieldError {
	var errs []FieldError

	if cfg.WindowSeconds <= 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.window_seconds",
			Message: "window must be positive",
		})
	}
	// Zero is a valid limit: it rejects every proxied request.
	if cfg.MaxRequests != nil && *cfg.MaxRequests < 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.max_requests",
			Message: "max requests must not be negative",
		})
	}

	return errs
}

// validateForwarder validates upstream client configuration.
func validateForwarder(cfg *ForwarderConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "forwarder.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "forwarder.max_idle_conns",
			Message: "max idle conns must not be negative",
		})
	}
	if cfg.MaxIdleConnsPerHost < 0 {
		errs = append(errs, FieldError{
			Field:   "forwarder.max_idle_conns_per_host",
			Message: "max idle conns per host must not be negative",
		})
	}
	if cfg.MaxResponseBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "forwarder.max_response_bytes",
			Message: "max response bytes must be positive",
		})
	}

	return errs
}

// validateCORS validates CORS configuration.
func validateCORS(cfg *CORSConfig) []FieldError {
	var errs []FieldError

	if cfg.AllowedOrigin == "" {
		errs = append(errs, FieldError{
			Field:   "cors.allowed_origin",
			Message: "allowed origin is required",
		})
	}
	if cfg.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "cors.max_age",
			Message: "max age must not be negative",
		})
	}

	return errs
}

// validateRoutes validates upstream origin overrides. Empty fields are fine,
// they keep the built-in origins.
func validateRoutes(cfg *RoutesConfig) []FieldError {
	var errs []FieldError

	origins := []struct {
		field string
		value string
	}{
		{"routes.noaa_origin", cfg.NOAAOrigin},
		{"routes.awc_origin", cfg.AWCOrigin},
		{"routes.buoy_origin", cfg.BuoyOrigin},
		{"routes.lightning_origin", cfg.LightningOrigin},
	}

	for _, origin := range origins {
		if origin.value == "" {
			continue
		}
		if msg := checkOrigin(origin.value); msg != "" {
			errs = append(errs, FieldError{Field: origin.field, Message: msg})
		}
	}

	return errs
}

// checkOrigin reports why an origin string is unusable, or "" if it is fine.
// Origins must be absolute http(s) URLs with nothing after the authority.
func checkOrigin(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Sprintf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "origin has no host"
	}
	if u.Path != "" && u.Path != "/" {
		return "origin must not include a path"
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "origin must not include a query or fragment"
	}
	return ""
}

// validateLogging validates logging configuration.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Level] {
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q: must be 'json' or 'text'", cfg.Format),
		})
	}

	return errs
}

// validateMetrics validates metrics configuration.
func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if !cfg.MetricsEnabled() {
		return errs
	}

	if !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "metrics.path",
			Message: fmt.Sprintf("path %q must start with '/'", cfg.Path),
		})
	}
	for i := 1; i < len(cfg.RequestDurationBuckets); i++ {
		if cfg.RequestDurationBuckets[i] <= cfg.RequestDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "metrics.request_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	return errs
}

// validateTracing validates tracing configuration.
func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Sampler] {
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: fmt.Sprintf("sample ratio %v is outside the valid range 0.0-1.0", cfg.SampleRatio),
		})
	}
	if cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "endpoint is required when tracing is enabled",
		})
	}

	return errs
}

// validateJournal validates request journal configuration.
func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	if cfg.DBPath == "" {
		errs = append(errs, FieldError{
			Field:   "journal.db_path",
			Message: "db path is required when the journal is enabled",
		})
	}
	if cfg.BufferSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "journal.buffer_size",
			Message: "buffer size must be positive",
		})
	}
	if cfg.RetentionDays <= 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention_days",
			Message: "retention days must be positive",
		})
	}
	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "journal.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
		})
	}

	return errs
}
