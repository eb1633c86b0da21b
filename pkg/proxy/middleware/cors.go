package middleware

import (
	"net/http"
	"strconv"
)

// CORS header values fixed by the service contract. Browser clients call
// the proxy precisely because the upstream providers don't send these, so
// the methods and headers lists are part of the public behavior, not
// tunables.
const (
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "Content-Type, Authorization, X-Requested-With"
)

// CORSConfig contains configuration for the CORS middleware. Only the
// origin value and the preflight cache lifetime are tunable.
type CORSConfig struct {
	// AllowedOrigin is the value of the Access-Control-Allow-Origin header
	// attached to every response.
	AllowedOrigin string

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns the default CORS configuration: all origins,
// 24-hour preflight cache.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigin: "*",
		MaxAge:        86400,
	}
}

// CORSMiddleware attaches permissive cross-origin headers to every
// response, success or failure, and short-circuits OPTIONS preflight
// requests with an empty 204 before they reach the rate limiter or any
// outbound call.
//
// Example usage:
//
//	handler = CORSMiddleware(DefaultCORSConfig())(handler)
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	origin := config.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	maxAge := config.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultCORSConfig().MaxAge
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
