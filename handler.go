package endpoint

import "context"

// Void is used as a payload type when a handler takes nothing from the request.
type Void struct{}

// Handler is the capability every published handler type implements. The
// payload is bound from the request before Handle is called.
//
// Handle returns the pipeline result: a value to write as the body, a
// *Response for explicit control, or nil when the handler already wrote the
// response itself.
type Handler[P any] interface {
	Handle(ctx context.Context, payload *P) (any, error)
}

// Recoverer is optionally implemented by handlers that turn their own errors
// into a response. Catch receives the error returned by Handle and its result
// is treated exactly like a result returned by Handle. An error returned from
// Catch goes to the error handler.
type Recoverer interface {
	Catch(ctx context.Context, err error) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[P any] func(ctx context.Context, payload *P) (any, error)

// Handle calls f(ctx, payload).
func (f HandlerFunc[P]) Handle(ctx context.Context, payload *P) (any, error) {
	return f(ctx, payload)
}

// invoke runs Handle and, if it fails and h can recover, Catch. The second
// return reports whether Catch produced the result.
func invoke[P any](ctx context.Context, h Handler[P], payload *P) (any, bool, error) {
	v, err := h.Handle(ctx, payload)
	if err == nil {
		return v, false, nil
	}

	rec, ok := h.(Recoverer)
	if !ok {
		return nil, false, err
	}

	v, err = rec.Catch(ctx, err)
	if err != nil {
		return nil, true, err
	}
	return v, true, nil
}
