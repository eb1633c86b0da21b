// Package logging sets up the process-wide structured logger.
//
// The package builds a log/slog handler from configuration (JSON or text,
// configurable level, optional source locations), installs it as the slog
// default, and hands back the slog.LevelVar that the configuration watcher
// drives for dynamic level changes.
//
// # Usage
//
//	logger, level := logging.Setup(&cfg.Logging)
//	logger.Info("starting up", "version", proxy.ServiceVersion)
//
//	// later, applied instantly without rebuilding handlers:
//	level.Set(slog.LevelDebug)
//
// Components throughout the codebase derive their loggers from the
// installed default:
//
//	logger := slog.Default().With("component", "upstream.forwarder")
package logging
