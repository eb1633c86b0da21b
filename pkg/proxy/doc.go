// Package proxy implements the request pipeline of the Anvil weather proxy.
//
// The proxy fronts a fixed set of public weather data providers (NOAA
// nowCOAST, the Aviation Weather Center, NDBC marine buoys, and lightning
// detection) for browser-based flight planning clients that cannot call
// those providers directly. Every inbound request runs through the same
// pipeline: route resolution, per-client rate limiting, upstream
// forwarding with a bounded timeout, and response shaping.
//
// # Architecture
//
// The package is transport-free: the Engine consumes a Request built by the
// HTTP layer and produces a Response the HTTP layer writes out. Splitting
// the pipeline from net/http keeps the decision logic testable without a
// listener and keeps the HTTP handlers thin.
//
//   - Engine: the decision pipeline (resolve, limit, forward, shape)
//   - StatsCollector: the point-in-time usage report served at /stats
//   - Handlers: HTTP entry points (pkg/proxy/handlers)
//   - Middleware: CORS, request IDs, access logging, panic recovery
//     (pkg/proxy/middleware)
//   - Types: wire-level envelope and report bodies (pkg/proxy/types)
//
// # Request Flow
//
//  1. Client sends a request to one of the /api/<service>/ prefixes.
//  2. Middleware chain processes it (recovery → logging → request ID → CORS).
//  3. The handler derives the client key and builds an Engine Request.
//  4. The Engine resolves the route, checks the rate limit, and forwards
//     to the upstream provider with the fixed outbound header set.
//  5. The upstream response body is returned verbatim with a resolved
//     content type; failures become the uniform JSON error envelope.
//
// # Error Handling
//
// All failures, regardless of stage, produce the same envelope shape:
//
//	{"error": "Rate limit exceeded", "service": "NOAA"}
//
// The service field names the resolved route and is omitted when the
// request never matched one. Status codes are fixed per failure class:
// 404 unknown service, 429 rate limited, 400 missing upstream path,
// 504 upstream timeout, 500 upstream network error.
//
// # Basic Usage
//
// Creating an engine and handling a request:
//
//	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, err := proxy.NewEngine(proxy.EngineConfig{
//	    Table:     table,
//	    Limiter:   ratelimit.New(ratelimit.Config{}),
//	    Forwarder: upstream.New(upstream.Config{}),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp := engine.Handle(ctx, &proxy.Request{
//	    Path:      "/api/awc/data/metar",
//	    RawQuery:  "ids=KJFK&format=json",
//	    Method:    http.MethodGet,
//	    ClientKey: "203.0.113.9",
//	})
//	resp.Write(w)
//
// # Observability
//
// Each handled request optionally emits Prometheus metrics, an
// asynchronous journal record, and an OpenTelemetry span. All three
// collaborators are optional; the pipeline result never depends on them.
//
// # Thread Safety
//
// The Engine is immutable after construction and safe for concurrent use.
// Its collaborators (route table, rate limiter, forwarder) are themselves
// concurrency-safe, so one Engine serves all inbound requests.
package proxy
