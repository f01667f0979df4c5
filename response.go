package endpoint

import "net/http"

// DefaultContentType is written when a result does not name a content type.
const DefaultContentType = "application/json"

// Response is returned from a handler for explicit control over the status
// code and content type. A zero StatusCode means 200 and an empty
// ContentType means DefaultContentType.
type Response struct {
	StatusCode  int
	ContentType string
	Body        any
}

func (r *Response) status() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

func (r *Response) contentType() string {
	if r.ContentType == "" {
		return DefaultContentType
	}
	return r.ContentType
}

// Result carries the value a handler invocation produced from the publisher
// to the Materializer.
type Result struct {
	value any
}

// NewResult wraps a handler's return value.
func NewResult(v any) Result {
	return Result{value: v}
}

// Value returns the raw value the handler returned.
func (r Result) Value() any { return r.value }

// Handled reports whether the handler wrote the response itself. Only a nil
// return counts; a Response with a nil Body is still written.
func (r Result) Handled() bool {
	switch v := r.value.(type) {
	case nil:
		return true
	case *Response:
		return v == nil
	}
	return false
}

// Response returns the result as a descriptor with defaults applied. A value
// that is not a Response becomes the body of a 200 application/json
// response. Response returns nil when the result is Handled.
func (r Result) Response() *Response {
	if r.Handled() {
		return nil
	}

	var resp Response
	switch v := r.value.(type) {
	case *Response:
		resp = *v
	case Response:
		resp = v
	default:
		resp = Response{Body: v}
	}

	resp.StatusCode = resp.status()
	resp.ContentType = resp.contentType()
	return &resp
}
