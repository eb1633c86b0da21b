package upstream

import (
	"net/url"
	"strings"
)

// ReservedPathParam is the inbound query key consumed during route
// resolution. It names the upstream path for clients that cannot express it
// as a URL remainder, and it must never be forwarded upstream.
const ReservedPathParam = "path"

// Param is one inbound query parameter. Parameters keep their inbound order
// all the way to the upstream URL; url.Values would re-sort them.
type Param struct {
	Key   string
	Value string
}

// ParseQuery splits a raw query string into ordered parameters, decoding
// percent-escapes. Malformed escapes leave the token as-is rather than
// dropping it; the upstream sees exactly what the client managed to send.
// The reserved routing parameter is filtered out.
func ParseQuery(rawQuery string) []Param {
	if rawQuery == "" {
		return nil
	}

	var params []Param
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		if key == ReservedPathParam {
			continue
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}

// PathValue returns the decoded value of the reserved routing parameter, or
// "" when absent. Used as a fallback when the inbound URL carries no path
// remainder.
func PathValue(rawQuery string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if key != ReservedPathParam {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			return decoded
		}
		return value
	}
	return ""
}

// BuildURL assembles the outbound URL: origin + path, then the forwarded
// parameters in inbound order, percent-encoded, introduced by "?" when the
// URL has no query string yet and joined with "&" after that.
func BuildURL(origin, path string, params []Param) string {
	var b strings.Builder
	b.WriteString(origin)
	if path != "" && !strings.HasPrefix(path, "/") {
		b.WriteString("/")
	}
	b.WriteString(path)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range params {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.Value))
		sep = "&"
	}
	return b.String()
}
