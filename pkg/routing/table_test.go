package routing

import (
	"strings"
	"testing"
)

// ============================================================================
// Route Table Construction Tests
// ============================================================================

func TestNewTable_DefaultRoutes(t *testing.T) {
	table, err := NewTable(DefaultRoutes(Origins{}))
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	if got := len(table.Routes()); got != 4 {
		t.Fatalf("Expected 4 routes, got %d", got)
	}

	for _, route := range table.Routes() {
		if route.Name == ServiceLightning {
			if route.FixedSuffix != LightningOWSPath {
				t.Errorf("Lightning route suffix = %q, want %q", route.FixedSuffix, LightningOWSPath)
			}
			if route.RequiresPath {
				t.Error("Lightning route must not require a path remainder")
			}
		} else if !route.RequiresPath {
			t.Errorf("Route %s must require a path remainder", route.Name)
		}
	}
}

func TestNewTable_OriginOverrides(t *testing.T) {
	table, err := NewTable(DefaultRoutes(Origins{
		NOAA:      "https://nowcast.example.com",
		Lightning: "https://lightning.example.com",
	}))
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	route, ok := table.Resolve("/api/noaa/layers")
	if !ok {
		t.Fatal("Expected /api/noaa/layers to resolve")
	}
	if route.UpstreamOrigin != "https://nowcast.example.com" {
		t.Errorf("NOAA origin = %q, want override", route.UpstreamOrigin)
	}

	route, ok = table.Resolve("/api/lightning/")
	if !ok {
		t.Fatal("Expected /api/lightning/ to resolve")
	}
	if route.UpstreamOrigin != "https://lightning.example.com" {
		t.Errorf("Lightning origin = %q, want override", route.UpstreamOrigin)
	}

	// Unset origins keep their defaults.
	route, ok = table.Resolve("/api/buoy/data.txt")
	if !ok {
		t.Fatal("Expected /api/buoy/data.txt to resolve")
	}
	if route.UpstreamOrigin != DefaultBuoyOrigin {
		t.Errorf("Buoy origin = %q, want default %q", route.UpstreamOrigin, DefaultBuoyOrigin)
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route
		errSub string
	}{
		{
			name:   "empty table",
			routes: nil,
			errSub: "empty",
		},
		{
			name: "missing name",
			routes: []Route{
				{Prefix: "/api/x/", UpstreamOrigin: "https://example.com"},
			},
			errSub: "name",
		},
		{
			name: "prefix without trailing slash",
			routes: []Route{
				{Name: "X", Prefix: "/api/x", UpstreamOrigin: "https://example.com"},
			},
			errSub: "prefix",
		},
		{
			name: "duplicate prefix",
			routes: []Route{
				{Name: "A", Prefix: "/api/x/", UpstreamOrigin: "https://example.com"},
				{Name: "B", Prefix: "/api/x/", UpstreamOrigin: "https://example.org"},
			},
			errSub: "already used",
		},
		{
			name: "relative origin",
			routes: []Route{
				{Name: "X", Prefix: "/api/x/", UpstreamOrigin: "example.com"},
			},
			errSub: "absolute",
		},
		{
			name: "origin with path",
			routes: []Route{
				{Name: "X", Prefix: "/api/x/", UpstreamOrigin: "https://example.com/base"},
			},
			errSub: "must not carry a path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.routes)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Error %q does not mention %q", err.Error(), tt.errSub)
			}
		})
	}
}

// ============================================================================
// Resolution Tests
// ============================================================================

func TestTable_Resolve(t *testing.T) {
	table, err := NewTable(DefaultRoutes(Origins{}))
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	tests := []struct {
		path     string
		wantName string
		wantOK   bool
	}{
		{"/api/noaa/arcgis/rest/services", ServiceNOAA, true},
		{"/api/noaa/", ServiceNOAA, true},
		{"/api/noaa", ServiceNOAA, true},
		{"/api/awc/api/data/metar", ServiceAWC, true},
		{"/api/buoy/data/realtime2/46042.txt", ServiceBuoy, true},
		{"/api/lightning/", ServiceLightning, true},
		{"/api/lightning", ServiceLightning, true},
		{"/api/noaax", "", false},
		{"/api/", "", false},
		{"/health", "", false},
		{"/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		route, ok := table.Resolve(tt.path)
		if ok != tt.wantOK {
			t.Errorf("Resolve(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			continue
		}
		if ok && route.Name != tt.wantName {
			t.Errorf("Resolve(%q) = %s, want %s", tt.path, route.Name, tt.wantName)
		}
	}
}

func TestTable_Resolve_LongestPrefixWins(t *testing.T) {
	routes := []Route{
		{Name: "BROAD", Prefix: "/api/", UpstreamOrigin: "https://broad.example.com", DefaultContentType: "application/json"},
		{Name: "NARROW", Prefix: "/api/noaa/", UpstreamOrigin: "https://narrow.example.com", DefaultContentType: "application/json"},
	}
	table, err := NewTable(routes)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	route, ok := table.Resolve("/api/noaa/layers")
	if !ok || route.Name != "NARROW" {
		t.Errorf("Expected longest prefix NARROW, got %v", route)
	}

	route, ok = table.Resolve("/api/other")
	if !ok || route.Name != "BROAD" {
		t.Errorf("Expected fallback to BROAD, got %v", route)
	}
}

func TestTable_Resolve_TieBreaksByDeclarationOrder(t *testing.T) {
	// Equal-length prefixes cannot both match one path, so force the tie
	// with two tables declaring the same length prefix in opposite orders
	// and a path that matches both via the bare form.
	routes := []Route{
		{Name: "FIRST", Prefix: "/api/one/", UpstreamOrigin: "https://one.example.com"},
		{Name: "SECOND", Prefix: "/api/two/", UpstreamOrigin: "https://two.example.com"},
	}
	table, err := NewTable(routes)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	route, ok := table.Resolve("/api/one/x")
	if !ok || route.Name != "FIRST" {
		t.Errorf("Resolve picked %v, want FIRST", route)
	}
	route, ok = table.Resolve("/api/two/x")
	if !ok || route.Name != "SECOND" {
		t.Errorf("Resolve picked %v, want SECOND", route)
	}
}

// ============================================================================
// Remainder Tests
// ============================================================================

func TestRoute_Remainder(t *testing.T) {
	table, err := NewTable(DefaultRoutes(Origins{}))
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"/api/noaa/arcgis/rest/services", "arcgis/rest/services"},
		{"/api/noaa/", ""},
		{"/api/noaa", ""},
	}

	for _, tt := range tests {
		route, ok := table.Resolve(tt.path)
		if !ok {
			t.Fatalf("Resolve(%q) failed", tt.path)
		}
		if got := route.Remainder(tt.path); got != tt.want {
			t.Errorf("Remainder(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestTable_Prefixes(t *testing.T) {
	table, err := NewTable(DefaultRoutes(Origins{}))
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	want := []string{"/api/noaa/", "/api/awc/", "/api/buoy/", "/api/lightning/"}
	got := table.Prefixes()
	if len(got) != len(want) {
		t.Fatalf("Prefixes() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Prefixes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
