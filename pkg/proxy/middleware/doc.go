// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all HTTP requests: CORS headers and preflight
// handling, client key derivation, request ID generation, structured
// access logging, and panic recovery.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(RequestID(ClientKey(Logging(CORS(mux)))))
//
// Order (innermost to outermost):
//  1. CORS: attach cross-origin headers, short-circuit OPTIONS preflight
//  2. Logging: log request/response details
//  3. ClientKey: derive the rate-limiting client key
//  4. RequestID: generate and propagate the request ID
//  5. Recovery: recover from panics
//
// CORS sits innermost so that its headers are written before any handler
// output, and preflight requests never reach the proxy engine. RequestID
// and ClientKey wrap Logging so the access log sees the enriched context.
// Recovery sits outermost so a panic anywhere in the chain still produces
// a well-formed JSON error response.
//
// # CORS
//
// The whole point of this service is that the upstream weather providers
// don't send cross-origin headers. CORSMiddleware therefore attaches them
// to every response, success or error:
//
//	Access-Control-Allow-Origin: *
//	Access-Control-Allow-Methods: GET, POST, OPTIONS
//	Access-Control-Allow-Headers: Content-Type, Authorization, X-Requested-With
//
// and answers OPTIONS preflight with an empty 204 plus a 24-hour
// Access-Control-Max-Age.
//
// # Client Key
//
// ClientKeyMiddleware resolves the caller identity the rate limiter keys
// on: the remote address host, or, behind a trusted load balancer, the
// first X-Forwarded-For entry or X-Real-IP.
//
// # Request ID
//
// RequestIDMiddleware generates a 32-hex-character ID for each request,
// adds it to the context and the X-Request-ID response header, and honors
// a client-provided ID.
package middleware
