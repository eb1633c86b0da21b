package proxy

import (
	"net/http"
	"strings"
)

// Content types produced by the URL heuristics below.
const (
	contentTypePNG  = "image/png"
	contentTypeXML  = "application/xml"
	contentTypeJSON = "application/json"
)

// ResolveContentType picks the Content-Type for a proxied response.
//
// An explicit upstream Content-Type always wins. Without one, the upstream
// URL is matched against known provider endpoint shapes: WMS tile and map
// requests serve PNG imagery, OGC capabilities documents and anything
// addressed as XML serve XML, and endpoints addressed as JSON serve JSON.
// When nothing matches, the route's default applies. The heuristics exist
// because several nowCOAST and NDBC endpoints omit the header entirely.
func ResolveContentType(upstreamURL string, header http.Header, routeDefault string) string {
	if ct := header.Get("Content-Type"); ct != "" {
		return ct
	}

	lower := strings.ToLower(upstreamURL)
	switch {
	case strings.Contains(lower, "getmap"), strings.Contains(lower, "wms"):
		return contentTypePNG
	case strings.Contains(lower, "xml"), strings.Contains(lower, "capabilities"):
		return contentTypeXML
	case strings.Contains(lower, "json"):
		return contentTypeJSON
	}
	return routeDefault
}
