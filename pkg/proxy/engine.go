package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"fastplanner/anvil/pkg/journal"
	"fastplanner/anvil/pkg/proxy/types"
	"fastplanner/anvil/pkg/ratelimit"
	"fastplanner/anvil/pkg/routing"
	"fastplanner/anvil/pkg/telemetry/metrics"
	"fastplanner/anvil/pkg/telemetry/tracing"
	"fastplanner/anvil/pkg/upstream"
)

// serviceNone is the service label recorded for requests that matched no
// route. It keeps the metrics label space bounded; it never appears in
// response bodies.
const serviceNone = "none"

// Request is the transport-independent form of one inbound call. The HTTP
// layer constructs it; the Engine never reads from net/http directly.
type Request struct {
	// Path is the inbound URL path, e.g. "/api/noaa/arcgis/rest/services".
	Path string

	// RawQuery is the unparsed query string. Kept raw so parameter order
	// survives to the upstream URL.
	RawQuery string

	// Method is the inbound HTTP method. Upstream calls are always GET;
	// the method is kept for logging and journaling.
	Method string

	// ClientKey identifies the caller for rate limiting.
	ClientKey string

	// RequestID is the correlation ID assigned by the middleware chain.
	RequestID string
}

// EngineConfig wires an Engine's collaborators. Table, Limiter, and
// Forwarder are required. Metrics, Journal, and Tracer are optional; a nil
// collaborator simply isn't consulted.
type EngineConfig struct {
	Table     *routing.Table
	Limiter   *ratelimit.Limiter
	Forwarder *upstream.Forwarder

	Metrics *metrics.Collector
	Journal *journal.Recorder
	Tracer  *tracing.Tracer
	Logger  *slog.Logger
}

// Engine runs the proxy pipeline for one request: route resolution, rate
// limiting, upstream forwarding, and response shaping. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	table     *routing.Table
	limiter   *ratelimit.Limiter
	forwarder *upstream.Forwarder
	metrics   *metrics.Collector
	journal   *journal.Recorder
	tracer    *tracing.Tracer
	logger    *slog.Logger
}

// NewEngine creates an Engine from the given configuration.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Table == nil {
		return nil, fmt.Errorf("route table cannot be nil")
	}
	if cfg.Limiter == nil {
		return nil, fmt.Errorf("rate limiter cannot be nil")
	}
	if cfg.Forwarder == nil {
		return nil, fmt.Errorf("forwarder cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "proxy.engine")
	}

	return &Engine{
		table:     cfg.Table,
		limiter:   cfg.Limiter,
		forwarder: cfg.Forwarder,
		metrics:   cfg.Metrics,
		journal:   cfg.Journal,
		tracer:    cfg.Tracer,
		logger:    logger,
	}, nil
}

// Handle runs one request through the pipeline and returns the terminal
// response. It never returns nil: every failure class maps to the uniform
// JSON error envelope with its fixed status code, and successful forwards
// pass the upstream status and body through verbatim.
func (e *Engine) Handle(ctx context.Context, req *Request) *Response {
	start := time.Now()

	ctx, span := e.startSpan(ctx)
	defer span.End()
	tracing.SetRequestAttributes(span, req.RequestID, req.ClientKey)

	route, ok := e.table.Resolve(req.Path)
	if !ok {
		e.logger.Debug("no route matched",
			"path", req.Path,
			"client_key", req.ClientKey)
		resp := newEnvelope(types.KindRouteNotFound, types.NewRouteNotFoundError())
		return e.finish(span, req, serviceNone, "", string(types.KindRouteNotFound), resp, start)
	}
	tracing.SetRouteAttributes(span, route.Name)

	if !e.limiter.CheckAndRecord(req.ClientKey, time.Now()) {
		if e.metrics != nil {
			e.metrics.RecordRateLimited(route.Name)
		}
		e.logger.Warn("rate limit exceeded",
			"client_key", req.ClientKey,
			"service", route.Name)
		resp := newEnvelope(types.KindRateLimitExceeded, types.NewRateLimitError(route.Name))
		return e.finish(span, req, route.Name, "", string(types.KindRateLimitExceeded), resp, start)
	}

	remainder := route.Remainder(req.Path)
	if remainder == "" {
		remainder = upstream.PathValue(req.RawQuery)
	}
	if route.RequiresPath && remainder == "" {
		e.logger.Debug("missing upstream path",
			"service", route.Name,
			"client_key", req.ClientKey)
		resp := newEnvelope(types.KindMissingPathParameter, types.NewMissingPathError(route.Name))
		return e.finish(span, req, route.Name, "", string(types.KindMissingPathParameter), resp, start)
	}

	target := targetURL(route, remainder, upstream.ParseQuery(req.RawQuery))
	e.logger.Debug("forwarding request",
		"service", route.Name,
		"url", target)

	result := e.forwarder.Forward(ctx, target)
	tracing.SetUpstreamAttributes(span, target, string(result.Outcome))
	if e.metrics != nil {
		e.metrics.RecordUpstream(route.Name, string(result.Outcome), result.Duration)
	}

	switch result.Outcome {
	case upstream.OutcomeTimeout:
		e.logger.Warn("upstream timeout",
			"service", route.Name,
			"url", target,
			"timeout", e.forwarder.Timeout())
		tracing.SetError(span, result.Err)
		resp := newEnvelope(types.KindUpstreamTimeout, types.NewTimeoutError(route.Name))
		return e.finish(span, req, route.Name, target, string(result.Outcome), resp, start)

	case upstream.OutcomeNetworkError:
		e.logger.Error("upstream request failed",
			"service", route.Name,
			"url", target,
			"error", result.Err)
		tracing.SetError(span, result.Err)
		resp := newEnvelope(types.KindUpstreamNetworkError,
			types.NewNetworkError(result.Err.Error(), route.Name))
		return e.finish(span, req, route.Name, target, string(result.Outcome), resp, start)
	}

	resp := &Response{
		StatusCode:  result.StatusCode,
		Body:        result.Body,
		ContentType: ResolveContentType(target, result.Header, route.DefaultContentType),
	}
	return e.finish(span, req, route.Name, target, string(result.Outcome), resp, start)
}

// finish emits the per-request telemetry for a terminal response and
// returns it. Telemetry never alters the response.
func (e *Engine) finish(span trace.Span, req *Request, service, upstreamURL, outcome string, resp *Response, start time.Time) *Response {
	duration := time.Since(start)
	tracing.SetResponseAttributes(span, resp.StatusCode, resp.ContentType)

	if e.metrics != nil {
		e.metrics.RecordRequest(service, req.Method, resp.StatusCode, duration, len(resp.Body))
	}
	if e.journal != nil {
		e.journal.Record(&journal.Record{
			RequestID:      req.RequestID,
			ClientKey:      req.ClientKey,
			RouteName:      service,
			Method:         req.Method,
			UpstreamURL:    upstreamURL,
			StatusCode:     resp.StatusCode,
			Outcome:        outcome,
			DurationMillis: duration.Milliseconds(),
		})
	}
	return resp
}

// startSpan begins the handling span when a tracer is wired. Without one
// it returns a no-op span so the attribute helpers stay unconditional.
func (e *Engine) startSpan(ctx context.Context) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, noop.Span{}
	}
	return e.tracer.Start(ctx, "proxy.handle")
}

// targetURL assembles the outbound URL for a route: the fixed suffix when
// the route has one (the remainder is ignored), otherwise the inbound
// remainder, plus the forwarded query parameters in inbound order.
func targetURL(route *routing.Route, remainder string, params []upstream.Param) string {
	path := remainder
	if route.FixedSuffix != "" {
		path = route.FixedSuffix
	}
	return upstream.BuildURL(route.UpstreamOrigin, path, params)
}
