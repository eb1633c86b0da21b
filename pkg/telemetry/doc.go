// Package telemetry groups the observability subsystems of the weather
// proxy.
//
// # Components
//
//   - logging: process-wide structured logging (log/slog) with dynamic
//     level control
//   - metrics: Prometheus metrics collection and exposition
//   - tracing: optional OpenTelemetry distributed tracing with OTLP export
//
// Metrics and tracing are optional collaborators of the proxy engine: a
// nil collector or tracer simply isn't consulted, and none of them can
// alter a response.
package telemetry
