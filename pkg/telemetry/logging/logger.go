package logging

import (
	"io"
	"log/slog"
	"os"

	"fastplanner/anvil/pkg/config"
)

// Setup builds the process logger from configuration and installs it as
// the slog default. It returns the logger together with the level
// variable; the configuration watcher adjusts that variable at runtime, so
// level changes apply without rebuilding handlers.
func Setup(cfg *config.LoggingConfig) (*slog.Logger, *slog.LevelVar) {
	return SetupWithWriter(cfg, os.Stdout)
}

// SetupWithWriter is Setup with an explicit output writer. Tests use it to
// capture log output.
func SetupWithWriter(cfg *config.LoggingConfig, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(config.ParseLogLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, level
}
