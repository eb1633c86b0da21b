package types

// ErrorResponse is the JSON error envelope returned for every failed
// request. The same shape is used for all error classes so browser clients
// can handle failures uniformly regardless of which stage rejected the
// request.
type ErrorResponse struct {
	// Error is a human-readable description of the failure.
	Error string `json:"error"`

	// Service identifies the route the request resolved to, when known.
	// Omitted for failures that occur before route resolution.
	Service string `json:"service,omitempty"`
}

// ErrorKind categorizes a request failure. Kinds are internal: they drive
// HTTP status mapping and metrics labels, and never appear in response
// bodies.
type ErrorKind string

const (
	// KindRouteNotFound indicates the inbound path matched no configured
	// route (404).
	KindRouteNotFound ErrorKind = "route_not_found"

	// KindMissingPathParameter indicates a route that requires an upstream
	// path received none (400).
	KindMissingPathParameter ErrorKind = "missing_path_parameter"

	// KindRateLimitExceeded indicates the client exhausted its sliding
	// window quota (429).
	KindRateLimitExceeded ErrorKind = "rate_limit_exceeded"

	// KindUpstreamTimeout indicates the outbound call exceeded the forward
	// timeout (504).
	KindUpstreamTimeout ErrorKind = "upstream_timeout"

	// KindUpstreamNetworkError indicates the outbound call failed before a
	// response was received (500).
	KindUpstreamNetworkError ErrorKind = "upstream_network_error"

	// KindInternalError indicates an unexpected failure inside the proxy
	// itself (500).
	KindInternalError ErrorKind = "internal_error"
)

// Fixed error messages. These are part of the public contract: clients
// match on them, so they must not drift between releases.
const (
	// MessageUnknownService is returned when no route matches.
	MessageUnknownService = "unknown service"

	// MessageRateLimited is returned on sliding-window rejection.
	MessageRateLimited = "Rate limit exceeded"

	// MessageMissingPath is returned when a required upstream path is
	// absent.
	MessageMissingPath = "Missing 'path' parameter"

	// MessageTimeout is returned when the upstream call times out.
	MessageTimeout = "Request timeout"
)

// HTTPStatusCode returns the HTTP status code for the error kind.
func (k ErrorKind) HTTPStatusCode() int {
	switch k {
	case KindRouteNotFound:
		return 404
	case KindMissingPathParameter:
		return 400
	case KindRateLimitExceeded:
		return 429
	case KindUpstreamTimeout:
		return 504
	case KindUpstreamNetworkError:
		return 500
	case KindInternalError:
		return 500
	default:
		return 500
	}
}

// NewRouteNotFoundError creates the envelope for an unmatched path (404).
// No service field is set because the request never resolved to a route.
func NewRouteNotFoundError() *ErrorResponse {
	return &ErrorResponse{Error: MessageUnknownService}
}

// NewRateLimitError creates the envelope for a rate-limited request (429).
func NewRateLimitError(service string) *ErrorResponse {
	return &ErrorResponse{Error: MessageRateLimited, Service: service}
}

// NewMissingPathError creates the envelope for a missing upstream path (400).
func NewMissingPathError(service string) *ErrorResponse {
	return &ErrorResponse{Error: MessageMissingPath, Service: service}
}

// NewTimeoutError creates the envelope for an upstream timeout (504).
func NewTimeoutError(service string) *ErrorResponse {
	return &ErrorResponse{Error: MessageTimeout, Service: service}
}

// NewNetworkError creates the envelope for an upstream transport failure
// (500). The message carries the underlying error text, mirroring what the
// service has always reported to callers.
func NewNetworkError(message, service string) *ErrorResponse {
	return &ErrorResponse{Error: message, Service: service}
}

// NewInternalError creates the envelope for an unexpected proxy-side
// failure (500).
func NewInternalError(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}
