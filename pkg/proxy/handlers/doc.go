// Package handlers provides HTTP request handlers for the proxy server.
//
// This package implements the endpoint handlers: the proxy adapter that
// feeds inbound requests into the engine, the health endpoint for liveness
// probes, and the stats endpoint for operational visibility. Handlers do
// no routing or rate limiting themselves; the engine owns those decisions.
//
// # Endpoints
//
//   - /api/<service>/... : ProxyHandler, the forwarding path
//   - /health            : HealthHandler, liveness (GET/HEAD)
//   - /stats             : StatsHandler, usage report (GET)
//
// The middleware chain around these handlers (CORS, client key, request
// ID, logging, recovery) lives in the middleware package and is assembled
// by the server package.
package handlers
