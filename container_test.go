package endpoint_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/endpoint"
)

type settings struct {
	Name string
}

type store struct {
	settings *settings
}

func newStore(s *settings) *store { return &store{settings: s} }

type missing struct{}

func TestScope_BindValue_and_Resolve(t *testing.T) {
	t.Parallel()

	s := endpoint.NewContainer().Create()

	require.NoError(t, endpoint.BindValue(s, &settings{Name: "child"}))

	got, err := endpoint.Resolve[*settings](s)
	require.NoError(t, err)
	assert.Equal(t, "child", got.Name)
}

func TestScope_BindValue_interface_token(t *testing.T) {
	t.Parallel()

	s := endpoint.NewContainer().Create()
	rec := httptest.NewRecorder()

	require.NoError(t, endpoint.BindValue[http.ResponseWriter](s, rec))

	got, err := endpoint.Resolve[http.ResponseWriter](s)
	require.NoError(t, err)
	assert.Same(t, rec, got)

	_, err = endpoint.Resolve[*httptest.ResponseRecorder](s)
	require.ErrorIs(t, err, endpoint.ErrResolve, "tokens are exact types")
}

func TestScope_BindValue_once(t *testing.T) {
	t.Parallel()

	s := endpoint.NewContainer().Create()

	require.NoError(t, endpoint.BindValue(s, &settings{Name: "first"}))
	err := endpoint.BindValue(s, &settings{Name: "second"})
	require.ErrorIs(t, err, endpoint.ErrAlreadyBound)

	got, err := endpoint.Resolve[*settings](s)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestScope_falls_back_to_parent(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "parent"} }))
	require.NoError(t, c.Provide(newStore))

	s := c.Create()

	got, err := endpoint.Resolve[*store](s)
	require.NoError(t, err)
	assert.Equal(t, "parent", got.settings.Name)
}

func TestScope_child_binding_takes_precedence(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "parent"} }))

	child := c.Create()
	require.NoError(t, endpoint.BindValue(child, &settings{Name: "child"}))

	got, err := endpoint.Resolve[*settings](child)
	require.NoError(t, err)
	assert.Equal(t, "child", got.Name)

	other, err := endpoint.Resolve[*settings](c.Create())
	require.NoError(t, err)
	assert.Equal(t, "parent", other.Name, "a child binding must not reach the parent")
}

func TestScope_isolated_from_siblings(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()

	first := c.Create()
	require.NoError(t, endpoint.BindValue(first, &settings{Name: "first"}))

	_, err := endpoint.Resolve[*settings](c.Create())
	require.ErrorIs(t, err, endpoint.ErrResolve)
}

func TestScope_parent_services_are_shared(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "shared"} }))

	a, err := endpoint.Resolve[*settings](c.Create())
	require.NoError(t, err)
	b, err := endpoint.Resolve[*settings](c.Create())
	require.NoError(t, err)

	assert.Same(t, a, b)
}

func TestScope_Resolve_missing(t *testing.T) {
	t.Parallel()

	_, err := endpoint.Resolve[*missing](endpoint.NewContainer().Create())
	require.ErrorIs(t, err, endpoint.ErrResolve)
	assert.Contains(t, err.Error(), "endpoint_test.missing")
}

func TestScope_Construct(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "app"} }))

	tests := map[string]struct {
		ctor    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		"single result": {
			ctor: newStore,
			check: func(t *testing.T, v any) {
				t.Helper()
				assert.Equal(t, "app", v.(*store).settings.Name) //nolint:forcetypeassert // test
			},
		},
		"result with nil error": {
			ctor: func(s *settings) (*store, error) { return newStore(s), nil },
			check: func(t *testing.T, v any) {
				t.Helper()
				assert.IsType(t, &store{}, v)
			},
		},
		"constructor error is a resolution error": {
			ctor:    func() (*store, error) { return nil, errors.New("database down") },
			wantErr: endpoint.ErrResolve,
		},
		"missing dependency": {
			ctor:    func(*missing) *store { return &store{} },
			wantErr: endpoint.ErrResolve,
		},
		"not a function": {
			ctor:    &store{},
			wantErr: endpoint.ErrConstructor,
		},
		"nil": {
			ctor:    nil,
			wantErr: endpoint.ErrConstructor,
		},
		"no results": {
			ctor:    func() {},
			wantErr: endpoint.ErrConstructor,
		},
		"variadic": {
			ctor:    func(...*settings) *store { return nil },
			wantErr: endpoint.ErrConstructor,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v, err := c.Create().Construct(tc.ctor)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, v)
		})
	}
}

func TestScope_Construct_prefers_scope_bindings(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "app"} }))

	s := c.Create()
	require.NoError(t, endpoint.BindValue(s, &settings{Name: "request"}))

	v, err := s.Construct(newStore)
	require.NoError(t, err)
	assert.Equal(t, "request", v.(*store).settings.Name) //nolint:forcetypeassert // test
}

func TestContainer_concurrent_scopes(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "app"} }))
	require.NoError(t, c.Provide(newStore))

	const n = 50
	stores := make([]*store, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := c.Create()
			_ = endpoint.BindValue(s, i) //nolint:errcheck // fresh scope
			stores[i], _ = endpoint.Resolve[*store](s)
		}()
	}
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
}

func TestContainer_Invoke(t *testing.T) {
	t.Parallel()

	c := endpoint.NewContainer()
	require.NoError(t, c.Provide(func() *settings { return &settings{Name: "app"} }))

	var name string
	require.NoError(t, c.Invoke(func(s *settings) { name = s.Name }))
	assert.Equal(t, "app", name)
}
