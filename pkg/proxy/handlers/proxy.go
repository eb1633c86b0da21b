package handlers

import (
	"log/slog"
	"net/http"

	"fastplanner/anvil/pkg/proxy"
	"fastplanner/anvil/pkg/proxy/middleware"
)

// ProxyHandler is the HTTP adapter in front of the proxy engine. It turns
// the inbound net/http request into the engine's transport-independent
// form and writes the terminal response back out. All routing, rate
// limiting, and forwarding decisions live in the engine; this handler owns
// nothing but the translation.
type ProxyHandler struct {
	engine *proxy.Engine
	logger *slog.Logger
}

// NewProxyHandler creates a handler over the given engine.
func NewProxyHandler(engine *proxy.Engine) *ProxyHandler {
	return &ProxyHandler{
		engine: engine,
		logger: slog.Default().With("component", "handlers.proxy"),
	}
}

// ServeHTTP implements http.Handler. OPTIONS preflight never arrives here;
// the CORS middleware answers it first.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := &proxy.Request{
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		Method:    r.Method,
		ClientKey: middleware.GetClientKey(ctx),
		RequestID: middleware.GetRequestID(ctx),
	}

	resp := h.engine.Handle(ctx, req)
	if err := resp.Write(w); err != nil {
		// The response line is already on the wire; nothing to send the
		// client, so just record it.
		h.logger.Debug("failed to write response",
			"error", err,
			"path", r.URL.Path,
		)
	}
}
