// Package server provides the HTTP host for the weather proxy.
//
// This package ties together the proxy engine, handlers, and middleware,
// and provides server lifecycle management including start and graceful
// shutdown.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	cfg, err := config.LoadOrDefault("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, _ := proxy.NewEngine(proxy.EngineConfig{
//	    Table:     table,
//	    Limiter:   limiter,
//	    Forwarder: forwarder,
//	})
//
//	srv := server.NewServer(cfg, engine, statsCollector, metricsCollector)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - /api/noaa/, /api/awc/, /api/buoy/, /api/lightning/: proxied services
//   - GET /health: liveness probe
//   - GET /stats: rate limiter usage report
//   - GET /metrics: Prometheus exposition (when enabled)
//
// All other paths return the 404 JSON error envelope.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. CORS: cross-origin headers and preflight short-circuit
//  2. Logging: structured access logging
//  3. ClientKey: rate-limiting identity derivation
//  4. RequestID: correlation ID generation
//  5. Recovery: panic recovery to a 500 envelope
//
// # Graceful Shutdown
//
// The server shuts down on SIGTERM/SIGINT or context cancellation: it
// stops accepting new connections, drains in-flight requests within the
// configured shutdown timeout, then forces closure.
//
// # Thread Safety
//
// All server operations are safe for concurrent use.
package server
