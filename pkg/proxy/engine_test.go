package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fastplanner/anvil/pkg/proxy/types"
	"fastplanner/anvil/pkg/ratelimit"
	"fastplanner/anvil/pkg/routing"
	"fastplanner/anvil/pkg/upstream"
)

// newTestEngine wires an engine against a single upstream origin with no
// optional collaborators. maxRequests < 0 selects the limiter default.
func newTestEngine(t *testing.T, origin string, maxRequests int) *Engine {
	t.Helper()

	limiter := ratelimit.New(ratelimit.Config{
		Window:        time.Minute,
		MaxRequests:   maxRequests,
		SweepInterval: -1,
	})
	t.Cleanup(limiter.Close)

	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{
		NOAA:      origin,
		AWC:       origin,
		Buoy:      origin,
		Lightning: origin,
	}))
	if err != nil {
		t.Fatalf("failed to build route table: %v", err)
	}

	engine, err := NewEngine(EngineConfig{
		Table:     table,
		Limiter:   limiter,
		Forwarder: upstream.New(upstream.Config{Timeout: 5 * time.Second}),
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	return engine
}

func decodeError(t *testing.T, resp *Response) types.ErrorResponse {
	t.Helper()
	var env types.ErrorResponse
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		t.Fatalf("failed to decode error envelope from %q: %v", resp.Body, err)
	}
	return env
}

func TestNewEngineValidation(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{MaxRequests: -1, SweepInterval: -1})
	defer limiter.Close()

	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{}))
	if err != nil {
		t.Fatalf("failed to build route table: %v", err)
	}
	forwarder := upstream.New(upstream.Config{})

	tests := []struct {
		name string
		cfg  EngineConfig
	}{
		{"nil table", EngineConfig{Limiter: limiter, Forwarder: forwarder}},
		{"nil limiter", EngineConfig{Table: table, Forwarder: forwarder}},
		{"nil forwarder", EngineConfig{Table: table, Limiter: limiter}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(tt.cfg); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestEngineForwardsVerbatim(t *testing.T) {
	var gotPath, gotQuery string
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"observations":[]}`))
	}))
	defer us.Close()

	engine := newTestEngine(t, us.URL, -1)

	resp := engine.Handle(context.Background(), &Request{
		Path:      "/api/noaa/arcgis/rest/services",
		RawQuery:  "f=json&bbox=1,2,3,4",
		Method:    http.MethodGet,
		ClientKey: "198.51.100.1",
	})

	// Upstream status passes through even when it is an error-ish code.
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
	if string(resp.Body) != `{"observations":[]}` {
		t.Errorf("Body = %q, not passed through verbatim", resp.Body)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("ContentType = %q, want application/json", resp.ContentType)
	}
	if gotPath != "/arcgis/rest/services" {
		t.Errorf("upstream path = %q, want %q", gotPath, "/arcgis/rest/services")
	}
	if gotQuery != "f=json&bbox=1%2C2%2C3%2C4" {
		t.Errorf("upstream query = %q, want re-encoded inbound parameters", gotQuery)
	}
}

func TestEngineRouteNotFound(t *testing.T) {
	engine := newTestEngine(t, "http://127.0.0.1:1", -1)

	resp := engine.Handle(context.Background(), &Request{
		Path:      "/api/nothing/here",
		ClientKey: "198.51.100.1",
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", resp.StatusCode)
	}
	env := decodeError(t, resp)
	if env.Error != types.MessageUnknownService {
		t.Errorf("error = %q, want %q", env.Error, types.MessageUnknownService)
	}
	if env.Service != "" {
		t.Errorf("service = %q, want empty", env.Service)
	}
}

func TestEngineRateLimit(t *testing.T) {
	var upstreamCalls int
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.WriteHeader(http.StatusOK)
	}))
	defer us.Close()

	engine := newTestEngine(t, us.URL, 2)

	req := &Request{
		Path:      "/api/awc/data/metar",
		ClientKey: "198.51.100.1",
	}
	for i := 0; i < 2; i++ {
		if resp := engine.Handle(context.Background(), req); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: StatusCode = %d, want 200", i+1, resp.StatusCode)
		}
	}

	resp := engine.Handle(context.Background(), req)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("StatusCode = %d, want 429", resp.StatusCode)
	}
	env := decodeError(t, resp)
	if env.Error != types.MessageRateLimited {
		t.Errorf("error = %q, want %q", env.Error, types.MessageRateLimited)
	}
	if env.Service != routing.ServiceAWC {
		t.Errorf("service = %q, want %q", env.Service, routing.ServiceAWC)
	}
	if upstreamCalls != 2 {
		t.Errorf("upstream calls = %d, rejected request must not go out", upstreamCalls)
	}

	// A different client still has its own quota.
	other := &Request{Path: "/api/awc/data/metar", ClientKey: "198.51.100.2"}
	if resp := engine.Handle(context.Background(), other); resp.StatusCode != http.StatusOK {
		t.Errorf("other client: StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestEngineMissingPath(t *testing.T) {
	var upstreamCalls int
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.WriteHeader(http.StatusOK)
	}))
	defer us.Close()

	engine := newTestEngine(t, us.URL, -1)

	t.Run("bare prefix is rejected before forwarding", func(t *testing.T) {
		resp := engine.Handle(context.Background(), &Request{
			Path:      "/api/buoy/",
			ClientKey: "198.51.100.1",
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("StatusCode = %d, want 400", resp.StatusCode)
		}
		env := decodeError(t, resp)
		if env.Error != types.MessageMissingPath {
			t.Errorf("error = %q, want %q", env.Error, types.MessageMissingPath)
		}
		if env.Service != routing.ServiceBuoy {
			t.Errorf("service = %q, want %q", env.Service, routing.ServiceBuoy)
		}
		if upstreamCalls != 0 {
			t.Errorf("upstream calls = %d, want 0", upstreamCalls)
		}
	})

	t.Run("path query parameter fills the remainder", func(t *testing.T) {
		resp := engine.Handle(context.Background(), &Request{
			Path:      "/api/buoy/",
			RawQuery:  "path=data/latest_obs/46042.txt",
			ClientKey: "198.51.100.1",
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
		}
		if upstreamCalls != 1 {
			t.Errorf("upstream calls = %d, want 1", upstreamCalls)
		}
	})

	t.Run("lightning tolerates an empty remainder", func(t *testing.T) {
		resp := engine.Handle(context.Background(), &Request{
			Path:      "/api/lightning/",
			RawQuery:  "service=WMS&request=GetCapabilities",
			ClientKey: "198.51.100.1",
		})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
		}
	})
}

func TestEngineUpstreamTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	limiter := ratelimit.New(ratelimit.Config{MaxRequests: -1, SweepInterval: -1})
	t.Cleanup(limiter.Close)

	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{NOAA: slow.URL}))
	if err != nil {
		t.Fatalf("failed to build route table: %v", err)
	}
	engine, err := NewEngine(EngineConfig{
		Table:     table,
		Limiter:   limiter,
		Forwarder: upstream.New(upstream.Config{Timeout: 100 * time.Millisecond}),
	})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}

	resp := engine.Handle(context.Background(), &Request{
		Path:      "/api/noaa/slow/layer",
		ClientKey: "198.51.100.1",
	})

	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("StatusCode = %d, want 504", resp.StatusCode)
	}
	env := decodeError(t, resp)
	if env.Error != types.MessageTimeout {
		t.Errorf("error = %q, want %q", env.Error, types.MessageTimeout)
	}
	if env.Service != routing.ServiceNOAA {
		t.Errorf("service = %q, want %q", env.Service, routing.ServiceNOAA)
	}
}

func TestEngineUpstreamNetworkError(t *testing.T) {
	// A closed test server leaves a port nothing listens on.
	dead := httptest.NewServer(http.NotFoundHandler())
	origin := dead.URL
	dead.Close()

	engine := newTestEngine(t, origin, -1)

	resp := engine.Handle(context.Background(), &Request{
		Path:      "/api/awc/data/metar",
		ClientKey: "198.51.100.1",
	})

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("StatusCode = %d, want 500", resp.StatusCode)
	}
	env := decodeError(t, resp)
	if env.Error == "" {
		t.Error("error message should carry the transport failure")
	}
	if env.Service != routing.ServiceAWC {
		t.Errorf("service = %q, want %q", env.Service, routing.ServiceAWC)
	}
}

func TestEngineLightningFixedSuffix(t *testing.T) {
	var gotPath string
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer us.Close()

	engine := newTestEngine(t, us.URL, -1)

	resp := engine.Handle(context.Background(), &Request{
		Path:      "/api/lightning/anything/at/all",
		RawQuery:  "service=WMS",
		ClientKey: "198.51.100.1",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if gotPath != routing.LightningOWSPath {
		t.Errorf("upstream path = %q, want the fixed OWS path", gotPath)
	}
}

func BenchmarkEngineHandle(b *testing.B) {
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer us.Close()

	// Quota far beyond any plausible b.N so the limiter never rejects.
	limiter := ratelimit.New(ratelimit.Config{MaxRequests: 1 << 30, SweepInterval: -1})
	defer limiter.Close()

	table, err := routing.NewTable(routing.DefaultRoutes(routing.Origins{
		NOAA: us.URL, AWC: us.URL, Buoy: us.URL, Lightning: us.URL,
	}))
	if err != nil {
		b.Fatalf("failed to build route table: %v", err)
	}
	engine, err := NewEngine(EngineConfig{
		Table:     table,
		Limiter:   limiter,
		Forwarder: upstream.New(upstream.Config{Timeout: 5 * time.Second}),
	})
	if err != nil {
		b.Fatalf("failed to build engine: %v", err)
	}

	req := &Request{
		Path:      "/api/awc/data/metar",
		RawQuery:  "ids=KSFO&format=json",
		ClientKey: "bench-client",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp := engine.Handle(context.Background(), req)
		if resp.StatusCode != http.StatusOK {
			b.Fatalf("StatusCode = %d", resp.StatusCode)
		}
	}
}

func TestResponseWrite(t *testing.T) {
	t.Run("success response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		resp := &Response{
			StatusCode:  http.StatusOK,
			Body:        []byte("payload"),
			ContentType: "text/plain",
		}
		if err := resp.Write(rec); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
			t.Errorf("Cache-Control = %q, want no-cache", got)
		}
		if rec.Body.String() != "payload" {
			t.Errorf("body = %q, want payload", rec.Body.String())
		}
	})

	t.Run("extra headers are attached", func(t *testing.T) {
		rec := httptest.NewRecorder()
		resp := &Response{
			StatusCode:   http.StatusOK,
			ExtraHeaders: http.Header{"X-Custom": []string{"a", "b"}},
		}
		if err := resp.Write(rec); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if got := rec.Header().Values("X-Custom"); len(got) != 2 {
			t.Errorf("X-Custom values = %v, want two", got)
		}
	})

	t.Run("error helper renders the envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if err := WriteError(rec, types.KindRateLimitExceeded, types.NewRateLimitError("NOAA")); err != nil {
			t.Fatalf("WriteError failed: %v", err)
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), types.MessageRateLimited) {
			t.Errorf("body = %q, want the rate limit message", rec.Body.String())
		}
	})
}
