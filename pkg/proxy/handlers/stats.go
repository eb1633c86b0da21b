package handlers

import (
	"net/http"

	"fastplanner/anvil/pkg/proxy"
)

// StatsHandler serves the operational stats endpoint: current rate-limiter
// usage plus the static endpoint list. Like the health endpoint it bypasses
// routing and rate limiting entirely.
type StatsHandler struct {
	collector *proxy.StatsCollector
}

// NewStatsHandler creates a stats handler over the given collector.
func NewStatsHandler(collector *proxy.StatsCollector) *StatsHandler {
	return &StatsHandler{collector: collector}
}

// ServeHTTP implements http.Handler for the stats report.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_ = proxy.WriteJSON(w, http.StatusOK, h.collector.Snapshot())
}
