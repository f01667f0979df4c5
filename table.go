package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Descriptor declares one route: the method and path it answers and the
// handler type constructed for each request. Descriptors are created by the
// registration functions and do not change afterwards.
type Descriptor struct {
	Method string
	Path   string
	Name   string

	middleware []Middleware
	pipeline   pipeline
}

// pipeline constructs the handler from the request scope, binds its
// payload, and invokes it. recovered reports whether Catch produced res.
type pipeline func(s *Scope, r *http.Request, codecs *codecRegistry) (res Result, recovered bool, err error)

// RouteOption configures a descriptor at registration time.
type RouteOption func(*Descriptor)

// WithName sets the route name used in logs and metrics. It defaults to the
// handler type name.
func WithName(name string) RouteOption {
	return func(d *Descriptor) {
		d.Name = name
	}
}

// WithMiddleware adds middleware that wraps only this route. Middleware is
// applied in the order given, the first being outermost.
func WithMiddleware(mw ...Middleware) RouteOption {
	return func(d *Descriptor) {
		d.middleware = append(d.middleware, mw...)
	}
}

// Table is the ordered set of descriptors published together. Registration
// problems are collected and reported by Err and Publish.
type Table struct {
	mu          sync.Mutex
	descriptors []Descriptor
	seen        map[string]string
	errs        *multierror.Error
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{seen: make(map[string]string)}
}

// Descriptors returns the registered descriptors in registration order.
func (t *Table) Descriptors() []Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Descriptor, len(t.descriptors))
	copy(out, t.descriptors)
	return out
}

// Err returns every registration error so far, or nil.
func (t *Table) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errs.ErrorOrNil()
}

func (t *Table) add(d Descriptor) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := d.Method + " " + d.Path
	if prev, ok := t.seen[key]; ok {
		t.errs = multierror.Append(t.errs, fmt.Errorf("%w: %s registered by %s and %s", ErrDuplicateRoute, key, prev, d.Name))
		return
	}
	t.seen[key] = d.Name
	t.descriptors = append(t.descriptors, d)
}

func (t *Table) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs = multierror.Append(t.errs, err)
}

// Route registers a handler type H for method and path. ctor is a
// constructor returning H or (H, error); its parameters are resolved from
// the request scope on every request, so each request gets its own H.
func Route[P any, H Handler[P]](t *Table, method, path string, ctor any, opts ...RouteOption) {
	ht := reflect.TypeFor[H]()
	d := Descriptor{
		Method: method,
		Path:   path,
		Name:   ht.String(),
	}
	for _, opt := range opts {
		opt(&d)
	}

	if method == "" || path == "" {
		t.fail(fmt.Errorf("%w: %s: method and path are required", ErrInvalidRoute, d.Name))
		return
	}
	if err := checkConstructor(reflect.TypeOf(ctor), ht); err != nil {
		t.fail(fmt.Errorf("%s %s: %w", method, path, err))
		return
	}

	d.pipeline = func(s *Scope, r *http.Request, codecs *codecRegistry) (Result, bool, error) {
		v, err := s.Construct(ctor)
		if err != nil {
			return Result{}, false, err
		}
		h := v.(H) //nolint:forcetypeassert // checked at registration

		payload, err := bindPayload[P](r, codecs)
		if err != nil {
			return Result{}, false, asBindError(err)
		}

		out, recovered, err := invoke[P](r.Context(), h, payload)
		if err != nil {
			return Result{}, recovered, err
		}
		return NewResult(out), recovered, nil
	}

	t.add(d)
}

// asBindError gives binding failures a 400 status unless they carry one.
func asBindError(err error) error {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return err
	}
	return withStatus(http.StatusBadRequest, err)
}

// Get registers a GET handler.
func Get[P any, H Handler[P]](t *Table, path string, ctor any, opts ...RouteOption) {
	Route[P, H](t, http.MethodGet, path, ctor, opts...)
}

// Post registers a POST handler.
func Post[P any, H Handler[P]](t *Table, path string, ctor any, opts ...RouteOption) {
	Route[P, H](t, http.MethodPost, path, ctor, opts...)
}

// Put registers a PUT handler.
func Put[P any, H Handler[P]](t *Table, path string, ctor any, opts ...RouteOption) {
	Route[P, H](t, http.MethodPut, path, ctor, opts...)
}

// Patch registers a PATCH handler.
func Patch[P any, H Handler[P]](t *Table, path string, ctor any, opts ...RouteOption) {
	Route[P, H](t, http.MethodPatch, path, ctor, opts...)
}

// Delete registers a DELETE handler.
func Delete[P any, H Handler[P]](t *Table, path string, ctor any, opts ...RouteOption) {
	Route[P, H](t, http.MethodDelete, path, ctor, opts...)
}

// Func registers a handler function that needs no dependencies. The
// function itself is the handler, so it is shared by every request.
func Func[P any](t *Table, method, path string, fn func(ctx context.Context, payload *P) (any, error), opts ...RouteOption) {
	h := HandlerFunc[P](fn)
	Route[P, HandlerFunc[P]](t, method, path, func() HandlerFunc[P] { return h }, opts...)
}
