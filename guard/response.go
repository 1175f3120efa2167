package guard

import (
	"encoding/json"
	"net/http"
)

// HandlerFunc is a handler that returns its response instead of writing it.
// A returned error is written by the guard in the standard error shape.
type HandlerFunc func(r *http.Request) (*Response, error)

// Response is the result of a HandlerFunc.
type Response struct {
	Status int
	Header http.Header
	Body   any
}

// JSON returns a Response that encodes body as JSON.
func JSON(status int, body any) *Response {
	return &Response{Status: status, Body: body}
}

// NoContent returns an empty 204 Response.
func NoContent() *Response {
	return &Response{Status: http.StatusNoContent}
}

func (resp *Response) write(w http.ResponseWriter) error {
	if resp == nil {
		resp = NoContent()
	}

	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if resp.Body == nil {
		w.WriteHeader(status)

		return nil
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(resp.Body)
}
