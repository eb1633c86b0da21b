// Package metrics provides Prometheus instrumentation for the Anvil proxy.
//
// The Collector owns a private registry and three metric groups: request
// metrics (counts, durations, rate limit rejections, response sizes),
// upstream metrics (per-service call outcomes and latencies), and usage
// gauges reading the rate limiter's live state on each scrape.
//
// When metrics are disabled in configuration every Record* method is a no-op,
// so callers never need their own enabled checks.
package metrics
