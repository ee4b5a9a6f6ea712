package oauth2

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// Response is a transport-agnostic HTTP response produced by the
// authorization server. Handlers build one of these and replay it onto
// whatever ResponseWriter the host application uses.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewResponse returns an empty-bodied response with the given status.
func NewResponse(statusCode int) *Response {
	return &Response{
		StatusCode: statusCode,
		Header:     make(http.Header),
	}
}

// NewJSONResponse marshals body and returns a response carrying it with
// a JSON content type.
func NewJSONResponse(statusCode int, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "NewJSONResponse Marshal")
	}
	resp := NewResponse(statusCode)
	resp.Header.Set("Content-Type", "application/json")
	resp.Body = data
	return resp, nil
}

// NewRedirectResponse returns a 302 redirect to location.
func NewRedirectResponse(location string) *Response {
	resp := NewResponse(http.StatusFound)
	resp.Header.Set("Location", location)
	return resp
}

// WithHeader sets a header and returns the response for chaining.
func (r *Response) WithHeader(key, value string) *Response {
	r.Header.Set(key, value)
	return r
}

// Write replays the response onto w.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(r.StatusCode)
	if len(r.Body) == 0 {
		return nil
	}
	if _, err := w.Write(r.Body); err != nil {
		return errors.Wrap(err, "Response.Write")
	}
	return nil
}
