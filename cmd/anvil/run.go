package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"fastplanner/anvil/pkg/cli"
	"fastplanner/anvil/pkg/config"
	"fastplanner/anvil/pkg/journal"
	"fastplanner/anvil/pkg/proxy"
	"fastplanner/anvil/pkg/ratelimit"
	"fastplanner/anvil/pkg/routing"
	"fastplanner/anvil/pkg/server"
	"fastplanner/anvil/pkg/telemetry/logging"
	"fastplanner/anvil/pkg/telemetry/metrics"
	"fastplanner/anvil/pkg/telemetry/tracing"
	"fastplanner/anvil/pkg/upstream"
)

var runFlags struct {
	port     int
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Anvil proxy server",
	Long: `Start the Anvil proxy server with the specified configuration.

The server listens on the configured address and forwards /api/<service>/
requests to the fixed upstream weather providers, attaching CORS headers to
every response and enforcing a per-client sliding-window rate limit.

Examples:
  # Start with built-in defaults
  anvil run

  # Start with a custom config
  anvil run --config /etc/anvil/config.yaml

  # Override the listen port
  anvil run --port 8080

  # Validate config without starting the server
  anvil run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.port != 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	// Initialize logging based on config
	_, level := logging.Setup(&cfg.Logging)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	// Rate limiter: the only stateful component, torn down with the process.
	limiter := ratelimit.New(ratelimit.Config{
		Window:        time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		MaxRequests:   *cfg.RateLimit.MaxRequests,
		SweepInterval: cfg.RateLimit.SweepInterval,
	})
	defer limiter.Close()

	// Route table from the fixed routes plus any origin overrides.
	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{
		NOAA:      cfg.Routes.NOAAOrigin,
		AWC:       cfg.Routes.AWCOrigin,
		Buoy:      cfg.Routes.BuoyOrigin,
		Lightning: cfg.Routes.LightningOrigin,
	}))
	if err != nil {
		return cli.NewConfigError(cfgFile, "routes", err.Error())
	}

	forwarder := upstream.New(upstream.Config{
		Timeout:             cfg.Forwarder.Timeout,
		MaxIdleConns:        cfg.Forwarder.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Forwarder.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Forwarder.IdleConnTimeout,
		MaxResponseBytes:    cfg.Forwarder.MaxResponseBytes,
	})

	// Metrics
	var collector *metrics.Collector
	if cfg.Metrics.MetricsEnabled() {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
		collector.RegisterUsage(func() (int, int) {
			snap := limiter.Snapshot()
			return snap.ActiveClients, snap.TotalRecorded
		})
	}

	// Tracing
	tracer, err := tracing.New(&cfg.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// Request journal (optional)
	var recorder *journal.Recorder
	if cfg.Journal.Enabled {
		slog.Info("initializing request journal", "db_path", cfg.Journal.DBPath)

		store, err := journal.NewSQLiteStore(cfg.Journal.DBPath)
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open journal database: %w", err))
		}
		defer store.Close()

		recorder = journal.NewRecorder(store, &cfg.Journal)
		defer recorder.Close()

		pruner := journal.NewPruner(store, &cfg.Journal)
		if err := pruner.Start(cmd.Context()); err != nil {
			slog.Warn("failed to start journal retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("journal retention scheduler started", "next_pruning", next)
			}
		}

		fmt.Println("✓ Request journal initialized")
	}

	engine, err := proxy.NewEngine(proxy.EngineConfig{
		Table:     table,
		Limiter:   limiter,
		Forwarder: forwarder,
		Metrics:   collector,
		Journal:   recorder,
		Tracer:    tracer,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	stats := proxy.NewStatsCollector(limiter, table)

	srv := server.NewServer(cfg, engine, stats, collector)

	// Signal-aware lifecycle context: cancellation tears down the config
	// watcher and the server together.
	ctx, cancel := context.WithCancel(cli.SetupSignalHandler())
	defer cancel()

	// Config watcher: applies log-level changes at runtime, warns on
	// anything that needs a restart. Only meaningful with a config file.
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, cfg, level, nil)
		if err != nil {
			slog.Warn("failed to create config watcher", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
			defer func() {
				if err := watcher.Stop(); err != nil {
					slog.Warn("config watcher stop failed", "error", err)
				}
			}()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	address := cfg.Server.ListenAddress()
	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", address)
	for _, prefix := range table.Prefixes() {
		fmt.Printf("✓ Proxy endpoint: http://%s%s\n", address, prefix)
	}
	fmt.Printf("✓ Health endpoint: http://%s/health\n", address)
	fmt.Printf("✓ Stats endpoint: http://%s/stats\n", address)
	if cfg.Metrics.MetricsEnabled() {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", address, cfg.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// srv.Start handles SIGINT/SIGTERM itself and returns after the
	// graceful drain; block until it does.
	if err := <-errChan; err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("%s v%s\n", proxy.ServiceName, Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	} else {
		fmt.Println("Using built-in default configuration")
	}
	fmt.Println("✓ Configuration loaded")

	slog.Debug("rate limit configured",
		"window_seconds", cfg.RateLimit.WindowSeconds,
		"max_requests", *cfg.RateLimit.MaxRequests,
	)
	slog.Debug("forwarder configured",
		"timeout", cfg.Forwarder.Timeout,
	)
	if cfg.Journal.Enabled {
		slog.Debug("journal enabled", "db_path", cfg.Journal.DBPath)
	}
	if cfg.Tracing.Enabled {
		slog.Debug("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}
}
