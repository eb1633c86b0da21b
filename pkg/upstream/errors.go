package upstream

import (
	"fmt"
	"time"
)

// TimeoutError reports an outbound call that exceeded the forward timeout.
// Upstream 4xx/5xx responses are not errors; only an exchange that never
// completed within the deadline produces this type.
type TimeoutError struct {
	// URL is the upstream URL the call was made against.
	URL string

	// Timeout is the configured forward timeout.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream request to %q timed out after %s", e.URL, e.Timeout)
}

// NetworkError reports an outbound call that failed before a response was
// received: DNS failure, connection refused, TLS failure, protocol error, or
// a truncated body read.
type NetworkError struct {
	// URL is the upstream URL the call was made against.
	URL string

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream request to %q failed: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}
