package routing

import (
	"fmt"
	"net/url"
	"strings"
)

// Service identifiers. These appear in the "service" field of error
// envelopes and as metric labels, so they are stable names, not display
// strings.
const (
	// ServiceNOAA is the marine/radar nowcast service.
	ServiceNOAA = "NOAA"

	// ServiceAWC is the aviation weather service.
	ServiceAWC = "AWC"

	// ServiceBuoy is the marine buoy observation service.
	ServiceBuoy = "BUOY"

	// ServiceLightning is the lightning detection service.
	ServiceLightning = "LIGHTNING"
)

// Default upstream origins. Each can be overridden through configuration,
// which matters for staging mirrors and offline testing; the route set
// itself is fixed.
const (
	DefaultNOAAOrigin = "https://nowcoast.noaa.gov"
	DefaultAWCOrigin  = "https://aviationweather.gov"
	DefaultBuoyOrigin = "https://www.ndbc.noaa.gov"

	// LightningOWSPath is the constant upstream path for lightning
	// queries. The lightning service exposes a single OGC endpoint, so the
	// inbound path remainder is ignored and only query parameters are
	// forwarded.
	LightningOWSPath = "/geoserver/observations/lightning_detection/ows"
)

// Route is one immutable entry of the route table: an inbound path prefix
// mapped to an upstream origin plus response defaults.
type Route struct {
	// Name is the service identifier (ServiceNOAA, ServiceAWC, ...).
	Name string

	// Prefix is the inbound path prefix, always starting and ending with
	// "/" (e.g. "/api/noaa/"). The prefix also matches the bare form
	// without the trailing slash.
	Prefix string

	// UpstreamOrigin is the scheme://host[:port] the request is forwarded
	// to. Never carries a path.
	UpstreamOrigin string

	// DefaultContentType is reported to the caller when neither the
	// upstream response nor the URL heuristics determine a content type.
	DefaultContentType string

	// FixedSuffix, when non-empty, is appended to UpstreamOrigin instead of
	// the inbound path remainder. Routes with a fixed suffix ignore the
	// remainder entirely.
	FixedSuffix string

	// RequiresPath marks routes that must receive a non-empty path
	// remainder; requests without one are rejected before any outbound
	// call.
	RequiresPath bool
}

// Remainder returns the part of path after the route prefix, without a
// leading slash. The bare prefix form ("/api/noaa") yields an empty
// remainder.
func (r *Route) Remainder(path string) string {
	if rest, ok := strings.CutPrefix(path, r.Prefix); ok {
		return rest
	}
	return ""
}

// Origins holds the per-service upstream origin overrides. Zero values fall
// back to the defaults.
type Origins struct {
	NOAA      string
	AWC       string
	Buoy      string
	Lightning string
}

// DefaultRoutes returns the fixed route set with any origin overrides
// applied. Declaration order is significant: it breaks ties between
// equally long matching prefixes.
func DefaultRoutes(origins Origins) []Route {
	noaa := origins.NOAA
	if noaa == "" {
		noaa = DefaultNOAAOrigin
	}
	awc := origins.AWC
	if awc == "" {
		awc = DefaultAWCOrigin
	}
	buoy := origins.Buoy
	if buoy == "" {
		buoy = DefaultBuoyOrigin
	}
	lightning := origins.Lightning
	if lightning == "" {
		lightning = DefaultNOAAOrigin
	}

	return []Route{
		{
			Name:               ServiceNOAA,
			Prefix:             "/api/noaa/",
			UpstreamOrigin:     noaa,
			DefaultContentType: "application/json",
			RequiresPath:       true,
		},
		{
			Name:               ServiceAWC,
			Prefix:             "/api/awc/",
			UpstreamOrigin:     awc,
			DefaultContentType: "application/json",
			RequiresPath:       true,
		},
		{
			Name:               ServiceBuoy,
			Prefix:             "/api/buoy/",
			UpstreamOrigin:     buoy,
			DefaultContentType: "text/plain",
			RequiresPath:       true,
		},
		{
			Name:               ServiceLightning,
			Prefix:             "/api/lightning/",
			UpstreamOrigin:     lightning,
			DefaultContentType: "application/xml",
			FixedSuffix:        LightningOWSPath,
			RequiresPath:       false,
		},
	}
}

// Table resolves inbound paths to routes by longest matching prefix. It is
// populated once at startup and read-only afterwards, so it is safe for
// concurrent use without locking.
type Table struct {
	routes []Route
}

// NewTable builds a route table from the given routes after validating
// them. Routes are kept in declaration order.
func NewTable(routes []Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("route table cannot be empty")
	}

	seen := make(map[string]string, len(routes))
	for i := range routes {
		r := &routes[i]
		if r.Name == "" {
			return nil, fmt.Errorf("route %d: name cannot be empty", i)
		}
		if !strings.HasPrefix(r.Prefix, "/") || !strings.HasSuffix(r.Prefix, "/") {
			return nil, fmt.Errorf("route %s: prefix %q must start and end with '/'", r.Name, r.Prefix)
		}
		if prev, dup := seen[r.Prefix]; dup {
			return nil, fmt.Errorf("route %s: prefix %q already used by %s", r.Name, r.Prefix, prev)
		}
		seen[r.Prefix] = r.Name

		u, err := url.Parse(r.UpstreamOrigin)
		if err != nil {
			return nil, fmt.Errorf("route %s: invalid upstream origin %q: %w", r.Name, r.UpstreamOrigin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
			return nil, fmt.Errorf("route %s: upstream origin %q must be an absolute http(s) URL", r.Name, r.UpstreamOrigin)
		}
		if u.Path != "" || u.RawQuery != "" {
			return nil, fmt.Errorf("route %s: upstream origin %q must not carry a path or query", r.Name, r.UpstreamOrigin)
		}
	}

	t := &Table{routes: make([]Route, len(routes))}
	copy(t.routes, routes)
	return t, nil
}

// Resolve returns the route whose prefix is the longest match for path, or
// false when no prefix matches. Ties between equal-length prefixes go to the
// earlier declaration.
func (t *Table) Resolve(path string) (*Route, bool) {
	var best *Route
	bestLen := -1
	for i := range t.routes {
		r := &t.routes[i]
		if !matchesPrefix(r.Prefix, path) {
			continue
		}
		if len(r.Prefix) > bestLen {
			best = r
			bestLen = len(r.Prefix)
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Routes returns a copy of the table's routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Prefixes returns the configured path prefixes in declaration order. The
// stats endpoint uses this to advertise the service's endpoints.
func (t *Table) Prefixes() []string {
	out := make([]string, 0, len(t.routes))
	for i := range t.routes {
		out = append(out, t.routes[i].Prefix)
	}
	return out
}

// matchesPrefix reports whether path falls under prefix. The bare form
// without the trailing slash matches too, so "/api/noaa" resolves like
// "/api/noaa/", while "/api/noaax" does not.
func matchesPrefix(prefix, path string) bool {
	if strings.HasPrefix(path, prefix) {
		return true
	}
	return path == strings.TrimSuffix(prefix, "/")
}
