// Package upstream executes outbound calls against the weather providers.
//
// The Forwarder owns a pooled HTTP client with a bounded timeout and sends a
// fixed header set on every call: a service-identifying User-Agent, the
// Accept lines, and keep-alive. Nothing caller-supplied crosses the boundary,
// so the proxy's upstream identity is constant.
//
// Every call resolves to exactly one of three outcomes. A response received
// within the timeout is a Success regardless of its status code (upstream
// 4xx/5xx pass through verbatim); an exchange that exceeds the timeout is a
// Timeout; everything else that prevents a response (DNS, refused
// connections, TLS and protocol failures) is a NetworkError.
//
// URL construction lives here too: origin plus path, with inbound query
// parameters appended in their original order, percent-encoded. The reserved
// "path" routing parameter never reaches an upstream.
package upstream
