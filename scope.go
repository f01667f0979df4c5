package endpoint

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Scope is a dependency scope that lives for exactly one request. Values
// bound into the scope take precedence; every other type is resolved from
// the parent Container. A scope never writes into its parent.
//
// A Scope is used by a single request and is not safe for concurrent use.
type Scope struct {
	parent *Container
	values map[reflect.Type]reflect.Value
}

// BindValue binds v to the token T in s. Each token can be bound once per
// scope.
func BindValue[T any](s *Scope, v T) error {
	return s.bind(reflect.TypeFor[T](), reflect.ValueOf(&v).Elem())
}

// Resolve returns the value bound to the token T, looking in s first and
// then in its parent.
func Resolve[T any](s *Scope) (T, error) {
	var zero T
	v, err := s.resolve(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil //nolint:forcetypeassert // keyed by T
}

func (s *Scope) bind(t reflect.Type, v reflect.Value) error {
	if _, ok := s.values[t]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, t)
	}
	s.values[t] = v
	return nil
}

func (s *Scope) resolve(t reflect.Type) (reflect.Value, error) {
	if v, ok := s.values[t]; ok {
		return v, nil
	}
	if s.parent == nil {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrResolve, t)
	}
	return s.parent.resolve(t)
}

// Construct calls ctor with each parameter resolved from the scope and
// returns its first result. ctor must return T or (T, error). A constructor
// error is reported as a resolution error.
func (s *Scope) Construct(ctor any) (any, error) {
	ft := reflect.TypeOf(ctor)
	if err := checkConstructor(ft, nil); err != nil {
		return nil, err
	}

	fn := reflect.ValueOf(ctor)
	args := make([]reflect.Value, ft.NumIn())
	for i := range ft.NumIn() {
		v, err := s.resolve(ft.In(i))
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	out := fn.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		//nolint:forcetypeassert // checked by checkConstructor
		return nil, fmt.Errorf("%w: %s: %w", ErrResolve, ft.Out(0), out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

// checkConstructor verifies that t is a constructor for want. A nil want
// accepts any result type.
func checkConstructor(t reflect.Type, want reflect.Type) error {
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("%w: %v is not a function", ErrConstructor, t)
	}
	if t.IsVariadic() {
		return fmt.Errorf("%w: %s is variadic", ErrConstructor, t)
	}

	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != reflect.TypeFor[error]() {
			return fmt.Errorf("%w: second result of %s must be error", ErrConstructor, t)
		}
	default:
		return fmt.Errorf("%w: %s must return T or (T, error)", ErrConstructor, t)
	}

	if want != nil && !t.Out(0).AssignableTo(want) {
		return fmt.Errorf("%w: %s does not return %s", ErrConstructor, t, want)
	}
	return nil
}

// RequestID identifies a request. It is bound into every request scope.
type RequestID string

// newRequestScope creates the scope for one request and binds the live
// request, response writer, context, and request ID into it.
func newRequestScope(parent *Container, w http.ResponseWriter, r *http.Request) (*Scope, error) {
	s := parent.Create()

	err := errors.Join(
		BindValue(s, r),
		BindValue(s, w),
		BindValue(s, r.Context()),
		BindValue(s, RequestID(GetRequestID(r))),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
