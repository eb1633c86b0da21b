package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// UnknownClientKey is the sentinel recorded when no client identity can be
// derived at all.
const UnknownClientKey = "unknown"

// ClientKeyMiddleware derives the rate-limiting client key for each request
// and stores it in the context. The key is the remote address host with the
// port stripped. When trustProxyHeaders is set, the first X-Forwarded-For
// entry wins, then X-Real-IP; enable that only behind a load balancer that
// overwrites those headers, otherwise callers can forge their identity.
func ClientKeyMiddleware(trustProxyHeaders bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r, trustProxyHeaders)
			ctx := context.WithValue(r.Context(), ClientKeyKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientKey extracts the client key from the context. Returns the
// unknown sentinel if the middleware did not run.
func GetClientKey(ctx context.Context) string {
	if key, ok := ctx.Value(ClientKeyKey).(string); ok && key != "" {
		return key
	}
	return UnknownClientKey
}

// clientKey resolves the caller identity for one request.
func clientKey(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// The first entry is the originating client; later entries
			// are the proxies the request passed through.
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
			return rip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// Not host:port, e.g. a unix socket peer; use the address as-is.
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return UnknownClientKey
	}
	if host == "" {
		return UnknownClientKey
	}
	return host
}
