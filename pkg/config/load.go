package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention ANVIL_SECTION_FIELD (e.g., ANVIL_SERVER_PORT). Environment
// variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// First load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads configuration from path when it is non-empty, and
// otherwise starts from the built-in defaults. Environment overrides are
// applied in both cases. This is the entry point used by the CLI, where the
// config flag is optional.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadConfigWithEnvOverrides(path)
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format ANVIL_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("ANVIL_SERVER_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("ANVIL_SERVER_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = i
		}
	}
	if val := os.Getenv("ANVIL_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("ANVIL_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("ANVIL_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("ANVIL_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Rate limit overrides
	if val := os.Getenv("ANVIL_RATE_LIMIT_WINDOW_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.WindowSeconds = i
		}
	}
	if val := os.Getenv("ANVIL_RATE_LIMIT_MAX_REQUESTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.MaxRequests = &i
		}
	}
	if val := os.Getenv("ANVIL_RATE_LIMIT_SWEEP_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.SweepInterval = d
		}
	}
	if val := os.Getenv("ANVIL_RATE_LIMIT_TRUST_PROXY_HEADERS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.TrustProxyHeaders = b
		}
	}

	// Forwarder overrides
	if val := os.Getenv("ANVIL_FORWARDER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Forwarder.Timeout = d
		}
	}
	if val := os.Getenv("ANVIL_FORWARDER_MAX_RESPONSE_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Forwarder.MaxResponseBytes = i
		}
	}

	// CORS overrides
	if val := os.Getenv("ANVIL_CORS_ALLOWED_ORIGIN"); val != "" {
		cfg.CORS.AllowedOrigin = val
	}
	if val := os.Getenv("ANVIL_CORS_MAX_AGE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.CORS.MaxAge = i
		}
	}

	// Route origin overrides
	if val := os.Getenv("ANVIL_ROUTES_NOAA_ORIGIN"); val != "" {
		cfg.Routes.NOAAOrigin = val
	}
	if val := os.Getenv("ANVIL_ROUTES_AWC_ORIGIN"); val != "" {
		cfg.Routes.AWCOrigin = val
	}
	if val := os.Getenv("ANVIL_ROUTES_BUOY_ORIGIN"); val != "" {
		cfg.Routes.BuoyOrigin = val
	}
	if val := os.Getenv("ANVIL_ROUTES_LIGHTNING_ORIGIN"); val != "" {
		cfg.Routes.LightningOrigin = val
	}

	// Logging overrides
	if val := os.Getenv("ANVIL_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("ANVIL_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("ANVIL_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = &b
		}
	}
	if val := os.Getenv("ANVIL_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}

	// Tracing overrides
	if val := os.Getenv("ANVIL_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("ANVIL_TRACING_ENDPOINT"); val != "" {
		cfg.Tracing.Endpoint = val
	}
	if val := os.Getenv("ANVIL_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRatio = f
		}
	}
	if val := os.Getenv("ANVIL_TRACING_SERVICE_NAME"); val != "" {
		cfg.Tracing.ServiceName = val
	}

	// Journal overrides
	if val := os.Getenv("ANVIL_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("ANVIL_JOURNAL_DB_PATH"); val != "" {
		cfg.Journal.DBPath = val
	}
	if val := os.Getenv("ANVIL_JOURNAL_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Journal.RetentionDays = i
		}
	}
}
