// Package tracing provides OpenTelemetry distributed tracing for the Anvil
// proxy, exporting spans over OTLP gRPC.
//
// Tracing is disabled by default; when disabled New returns a noop tracer so
// callers never branch on the setting. Spans cover the proxy's own work only:
// the outbound header set sent to weather upstreams is fixed, so no trace
// context is ever injected into upstream requests.
package tracing
