package endpoint

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/dig"
)

// Container holds the application-level services shared by every request.
// It is built once at startup and only read while serving. Request scopes
// created from it fall back to it for anything they do not bind themselves.
//
// dig does not support concurrent use, so every call into it is serialized.
// Values resolved for request scopes are cached per type.
type Container struct {
	mu    sync.Mutex
	dig   *dig.Container
	cache map[reflect.Type]reflect.Value
}

// NewContainer creates an empty Container.
func NewContainer(opts ...dig.Option) *Container {
	return &Container{
		dig:   dig.New(opts...),
		cache: make(map[reflect.Type]reflect.Value),
	}
}

// Provide registers an application service constructor with the underlying
// dig container. Services are constructed once, on first use.
func (c *Container) Provide(ctor any, opts ...dig.ProvideOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dig.Provide(ctor, opts...)
}

// Invoke runs fn with its parameters resolved from the container.
func (c *Container) Invoke(fn any, opts ...dig.InvokeOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dig.Invoke(fn, opts...)
}

// Create returns a new request scope whose lookups fall back to c.
func (c *Container) Create() *Scope {
	return &Scope{
		parent: c,
		values: make(map[reflect.Type]reflect.Value),
	}
}

// resolve looks up a single value of type t.
func (c *Container) resolve(t reflect.Type) (reflect.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cache[t]; ok {
		return v, nil
	}

	var out reflect.Value
	sink := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{t}, nil, false),
		func(args []reflect.Value) []reflect.Value {
			out = args[0]
			return nil
		},
	)

	if err := c.dig.Invoke(sink.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrResolve, t, dig.RootCause(err))
	}

	c.cache[t] = out
	return out, nil
}
