package proxy

import (
	"time"

	"fastplanner/anvil/pkg/proxy/types"
	"fastplanner/anvil/pkg/ratelimit"
	"fastplanner/anvil/pkg/routing"
)

// Service identity reported by the health and stats endpoints. Clients
// display these strings, so they are part of the public contract.
const (
	ServiceName    = "FastPlanner Weather Proxy"
	ServiceVersion = "1.0.0"
)

// statusOperational is the status string the stats endpoint reports while
// the process is serving.
const statusOperational = "operational"

// StatsCollector assembles the point-in-time usage report served at
// /stats. It reads limiter state without mutating it.
type StatsCollector struct {
	limiter   *ratelimit.Limiter
	endpoints []string
	startTime time.Time
}

// NewStatsCollector creates a StatsCollector over the given limiter and
// route table. Uptime is measured from this call.
func NewStatsCollector(limiter *ratelimit.Limiter, table *routing.Table) *StatsCollector {
	endpoints := append(table.Prefixes(), "/health", "/stats")
	return &StatsCollector{
		limiter:   limiter,
		endpoints: endpoints,
		startTime: time.Now(),
	}
}

// Snapshot assembles the current stats report.
func (sc *StatsCollector) Snapshot() *types.StatsReport {
	snap := sc.limiter.Snapshot()
	return &types.StatsReport{
		Service: ServiceName,
		Status:  statusOperational,
		UsageStats: types.UsageStats{
			ActiveClients: snap.ActiveClients,
			TotalRequests: snap.TotalRecorded,
			WindowSeconds: int(sc.limiter.Window().Seconds()),
			MaxRequests:   sc.limiter.MaxRequests(),
		},
		Endpoints:     sc.endpoints,
		UptimeSeconds: int64(time.Since(sc.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}
