package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute helpers.
//
// Standard attribute keys follow OpenTelemetry semantic conventions where one
// applies (http.*, error.*). Custom attribute keys use the "anvil.*"
// namespace.

// Common attribute keys used throughout the proxy
const (
	// Route attributes
	AttrService = "anvil.service"

	// Request attributes
	AttrRequestID = "anvil.request_id"
	AttrClientKey = "anvil.client_key"

	// Upstream attributes
	AttrUpstreamURL     = "anvil.upstream.url"
	AttrUpstreamOutcome = "anvil.upstream.outcome"

	// Response attributes
	AttrStatusCode  = "http.response.status_code"
	AttrContentType = "anvil.response.content_type"
)

// SetRouteAttributes sets route resolution attributes on a span.
func SetRouteAttributes(span trace.Span, service string) {
	span.SetAttributes(attribute.String(AttrService, service))
}

// SetRequestAttributes sets inbound request attributes on a span.
func SetRequestAttributes(span trace.Span, requestID, clientKey string) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	if clientKey != "" {
		attrs = append(attrs, attribute.String(AttrClientKey, clientKey))
	}
	span.SetAttributes(attrs...)
}

// SetUpstreamAttributes sets upstream call attributes on a span.
func SetUpstreamAttributes(span trace.Span, upstreamURL, outcome string) {
	span.SetAttributes(
		attribute.String(AttrUpstreamURL, upstreamURL),
		attribute.String(AttrUpstreamOutcome, outcome),
	)
}

// SetResponseAttributes sets response attributes on a span.
func SetResponseAttributes(span trace.Span, statusCode int, contentType string) {
	span.SetAttributes(
		attribute.Int(AttrStatusCode, statusCode),
		attribute.String(AttrContentType, contentType),
	)
}
