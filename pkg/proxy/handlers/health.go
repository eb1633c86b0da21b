package handlers

import (
	"net/http"
	"time"

	"fastplanner/anvil/pkg/proxy"
	"fastplanner/anvil/pkg/proxy/types"
)

// HealthHandler serves the liveness endpoint. It applies no routing and no
// rate limiting: if the process can run this handler, it is healthy.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := types.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   proxy.ServiceName,
		Version:   proxy.ServiceVersion,
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}

	_ = proxy.WriteJSON(w, http.StatusOK, status)
}
