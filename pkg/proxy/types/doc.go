// Package types defines the wire-level response types for the weather proxy.
//
// This package contains the data transfer objects shared by the proxy engine
// and the HTTP handlers: the uniform JSON error envelope, the usage-stats
// report, and the health status body.
//
// # Error Envelope
//
// Every failed request, regardless of which stage rejected it, produces the
// same envelope:
//
//	{"error": "Rate limit exceeded", "service": "NOAA"}
//
// The service field names the resolved route and is omitted when the failure
// occurred before route resolution (unknown paths). ErrorKind categorizes
// failures internally and maps each category to its HTTP status code; kinds
// never appear on the wire.
//
// # Stats and Health
//
// UsageStats is computed on demand from rate limiter state. StatsReport and
// HealthStatus are the exact bodies served by the stats and health
// endpoints; their field names are part of the public contract.
//
// All types use standard encoding/json serialization with snake_case field
// names.
package types
