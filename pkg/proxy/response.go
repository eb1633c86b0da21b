package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fastplanner/anvil/pkg/proxy/types"
)

// Response is the terminal result of handling one request, independent of
// the transport. The HTTP layer writes it out with Write; tests inspect it
// directly.
type Response struct {
	// StatusCode is the HTTP status written to the client. On successful
	// forwards it is the upstream status verbatim.
	StatusCode int

	// Body is the response body. On successful forwards it is the upstream
	// body verbatim; on failures it is the JSON error envelope.
	Body []byte

	// ContentType is the resolved Content-Type header value.
	ContentType string

	// ExtraHeaders are additional headers to attach, beyond the content
	// type and the caching directive that every response carries.
	ExtraHeaders http.Header
}

// Write sends the response to w. Every response carries Cache-Control:
// no-cache; weather data is time-sensitive and the service has never
// allowed intermediaries to cache it.
func (r *Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for key, values := range r.ExtraHeaders {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	if r.ContentType != "" {
		h.Set("Content-Type", r.ContentType)
	}
	h.Set("Cache-Control", "no-cache")
	w.WriteHeader(r.StatusCode)

	if len(r.Body) == 0 {
		return nil
	}
	if _, err := w.Write(r.Body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// newEnvelope builds the terminal response for a failed request: the
// uniform JSON error envelope with the kind's HTTP status code.
func newEnvelope(kind types.ErrorKind, env *types.ErrorResponse) *Response {
	return &Response{
		StatusCode:  kind.HTTPStatusCode(),
		Body:        marshalEnvelope(env),
		ContentType: contentTypeJSON,
	}
}

// marshalEnvelope renders the envelope body. The fallback keeps the
// response well-formed if marshaling ever fails.
func marshalEnvelope(env *types.ErrorResponse) []byte {
	body, err := json.Marshal(env)
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return body
}

// WriteJSON writes data as a JSON response to w. It sets the content type
// and the uniform caching directive, then streams the encoded body.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteError writes the uniform JSON error envelope for the given failure
// kind. The status code comes from the kind, never from the caller.
func WriteError(w http.ResponseWriter, kind types.ErrorKind, env *types.ErrorResponse) error {
	return newEnvelope(kind, env).Write(w)
}
