// Package routing maps inbound request paths to upstream weather services.
//
// The route table is static: four services (marine/radar nowcast, aviation
// weather, marine buoy, lightning detection) exposed under /api/<service>/
// prefixes. Resolution is by longest matching prefix, with ties broken by
// declaration order, so adding a service is a table entry rather than a new
// handler.
//
// Routes are immutable once the table is built; the table is populated at
// startup from configuration (upstream origins can be overridden, the route
// set cannot) and is safe for concurrent reads without locking.
//
// The lightning route is the one irregular entry: its upstream path is a
// constant OGC endpoint, so the inbound path remainder is ignored and only
// query parameters travel upstream.
package routing
