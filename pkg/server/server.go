package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fastplanner/anvil/pkg/config"
	"fastplanner/anvil/pkg/proxy"
	"fastplanner/anvil/pkg/proxy/handlers"
	"fastplanner/anvil/pkg/proxy/middleware"
	"fastplanner/anvil/pkg/telemetry/metrics"
)

// Server is the HTTP host for the weather proxy: route registration, the
// middleware chain, and graceful lifecycle around the proxy engine.
type Server struct {
	config       *config.Config
	engine       *proxy.Engine
	stats        *proxy.StatsCollector
	metrics      *metrics.Collector
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server over an already-wired engine. The stats
// collector backs the /stats endpoint; the metrics collector is optional
// and, when present and enabled, exposes /metrics.
func NewServer(cfg *config.Config, engine *proxy.Engine, stats *proxy.StatsCollector, collector *metrics.Collector) *Server {
	return &Server{
		config:       cfg,
		engine:       engine,
		stats:        stats,
		metrics:      collector,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress(),
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting proxy server",
			"address", s.httpServer.Addr,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, draining in-flight requests
// within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("proxy server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// The proxy handler owns the root: the engine resolves the four
	// /api/<service>/ prefixes and answers everything else with the 404
	// envelope, so no per-route registration is needed.
	mux.Handle("/", handlers.NewProxyHandler(s.engine))
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/stats", handlers.NewStatsHandler(s.stats))

	if s.metrics != nil && s.config.Metrics.MetricsEnabled() {
		mux.Handle(s.config.Metrics.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux

	// CORS middleware sits innermost so preflight requests short-circuit
	// before any handler and its headers reach every response.
	handler = middleware.CORSMiddleware(&middleware.CORSConfig{
		AllowedOrigin: s.config.CORS.AllowedOrigin,
		MaxAge:        s.config.CORS.MaxAge,
	})(handler)

	// Logging middleware. Wrapped by the enrichment middleware below so the
	// access log reads the request ID and client key out of the context.
	handler = middleware.LoggingMiddleware(handler)

	// Client key middleware
	handler = middleware.ClientKeyMiddleware(s.config.RateLimit.TrustProxyHeaders)(handler)

	// Request ID middleware
	handler = middleware.RequestIDMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Tests drive the full
// middleware chain through this without opening a socket.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
