package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period required after a file event
// before the configuration is re-read. Editors and config management tools
// tend to emit bursts of writes for a single save.
const DefaultDebounceInterval = 100 * time.Millisecond

// ParseLogLevel converts a configuration level string into a slog.Level.
// Unknown strings fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Watcher watches a configuration file for changes. The only setting applied
// at runtime is the logging level, via the shared slog.LevelVar; any other
// change logs a warning that a restart is required. It implements debouncing
// to prevent reload storms.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	level    *slog.LevelVar
	debounce *debouncer

	// last holds the most recently applied configuration, used to detect
	// which sections changed.
	mu      sync.Mutex
	last    *Config
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path. The
// current configuration is the baseline for change detection, and level is
// the handler's level variable that dynamic updates are applied to.
func NewWatcher(path string, current *Config, level *slog.LevelVar, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		logger:   logger.With("component", "config_watcher"),
		path:     path,
		level:    level,
		debounce: newDebouncer(DefaultDebounceInterval),
		last:     current,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for file changes. This is a blocking operation that
// runs until the context is cancelled or Stop is called.
//
// The parent directory is watched rather than the file itself: most editors
// replace files by rename, which drops a watch registered on the file.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	w.logger.Info("Configuration watcher started",
		"path", w.path,
		"debounce_ms", DefaultDebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Configuration watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Configuration watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("Configuration file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Configuration watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent reports whether an fsnotify event concerns the watched
// configuration file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(w.path)
}

// reload re-reads the configuration file and applies what can be applied at
// runtime. A file that fails to load or validate leaves the running
// configuration untouched.
func (w *Watcher) reload() {
	cfg, err := LoadConfigWithEnvOverrides(w.path)
	if err != nil {
		w.logger.Error("Configuration reload failed, keeping current configuration", "error", err)
		return
	}

	w.mu.Lock()
	previous := w.last
	w.last = cfg
	w.mu.Unlock()

	if cfg.Logging.Level != previous.Logging.Level {
		newLevel := ParseLogLevel(cfg.Logging.Level)
		if w.level != nil {
			w.level.Set(newLevel)
		}
		w.logger.Info("Log level updated", "level", cfg.Logging.Level)
	}

	if restartRequired(previous, cfg) {
		w.logger.Warn("Configuration changed beyond the log level; restart required for changes to take effect")
	}
}

// restartRequired reports whether the two configurations differ in any way
// that cannot be applied at runtime.
func restartRequired(previous, current *Config) bool {
	prev := *previous
	curr := *current
	// Neutralize the hot-reloadable field before comparing.
	prev.Logging.Level = ""
	curr.Logging.Level = ""
	return !reflect.DeepEqual(prev, curr)
}

// debouncer collapses bursts of events into a single callback invocation
// after a quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger schedules callback after the debounce interval, replacing any
// previously scheduled invocation.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, callback)
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
