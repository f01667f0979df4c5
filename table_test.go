package endpoint_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/endpoint"
)

type ping struct{}

func newPing() *ping { return &ping{} }

func (*ping) Handle(context.Context, *endpoint.Void) (any, error) { return "pong", nil }

func TestTable_registration_order(t *testing.T) {
	t.Parallel()

	tbl := endpoint.NewTable()
	endpoint.Get[endpoint.Void, *ping](tbl, "/a", newPing)
	endpoint.Post[endpoint.Void, *ping](tbl, "/b", newPing, endpoint.WithName("b"))
	endpoint.Put[endpoint.Void, *ping](tbl, "/c", newPing)
	endpoint.Patch[endpoint.Void, *ping](tbl, "/d", newPing)
	endpoint.Delete[endpoint.Void, *ping](tbl, "/e", newPing)

	require.NoError(t, tbl.Err())

	got := tbl.Descriptors()
	require.Len(t, got, 5)

	want := []struct{ method, path, name string }{
		{http.MethodGet, "/a", "*endpoint_test.ping"},
		{http.MethodPost, "/b", "b"},
		{http.MethodPut, "/c", "*endpoint_test.ping"},
		{http.MethodPatch, "/d", "*endpoint_test.ping"},
		{http.MethodDelete, "/e", "*endpoint_test.ping"},
	}
	for i, w := range want {
		assert.Equal(t, w.method, got[i].Method)
		assert.Equal(t, w.path, got[i].Path)
		assert.Equal(t, w.name, got[i].Name)
	}
}

func TestTable_rejects_invalid_registrations(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		register func(tbl *endpoint.Table)
		wantErr  error
	}{
		"constructor is not a function": {
			register: func(tbl *endpoint.Table) {
				endpoint.Get[endpoint.Void, *ping](tbl, "/x", &ping{})
			},
			wantErr: endpoint.ErrConstructor,
		},
		"constructor returns another type": {
			register: func(tbl *endpoint.Table) {
				endpoint.Get[endpoint.Void, *ping](tbl, "/x", func() string { return "" })
			},
			wantErr: endpoint.ErrConstructor,
		},
		"second result is not an error": {
			register: func(tbl *endpoint.Table) {
				endpoint.Get[endpoint.Void, *ping](tbl, "/x", func() (*ping, bool) { return nil, false })
			},
			wantErr: endpoint.ErrConstructor,
		},
		"missing path": {
			register: func(tbl *endpoint.Table) {
				endpoint.Get[endpoint.Void, *ping](tbl, "", newPing)
			},
			wantErr: endpoint.ErrInvalidRoute,
		},
		"missing method": {
			register: func(tbl *endpoint.Table) {
				endpoint.Route[endpoint.Void, *ping](tbl, "", "/x", newPing)
			},
			wantErr: endpoint.ErrInvalidRoute,
		},
		"duplicate method and path": {
			register: func(tbl *endpoint.Table) {
				endpoint.Get[endpoint.Void, *ping](tbl, "/x", newPing)
				endpoint.Get[endpoint.Void, *ping](tbl, "/x", newPing)
			},
			wantErr: endpoint.ErrDuplicateRoute,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tbl := endpoint.NewTable()
			tc.register(tbl)

			require.ErrorIs(t, tbl.Err(), tc.wantErr)
		})
	}
}

func TestTable_same_path_different_methods(t *testing.T) {
	t.Parallel()

	tbl := endpoint.NewTable()
	endpoint.Get[endpoint.Void, *ping](tbl, "/x", newPing)
	endpoint.Post[endpoint.Void, *ping](tbl, "/x", newPing)

	require.NoError(t, tbl.Err())
	assert.Len(t, tbl.Descriptors(), 2)
}

func TestTable_collects_every_error(t *testing.T) {
	t.Parallel()

	tbl := endpoint.NewTable()
	endpoint.Get[endpoint.Void, *ping](tbl, "/a", "not a constructor")
	endpoint.Get[endpoint.Void, *ping](tbl, "/b", newPing)
	endpoint.Get[endpoint.Void, *ping](tbl, "/b", newPing)

	err := tbl.Err()
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, endpoint.ErrConstructor)
	assert.ErrorIs(t, err, endpoint.ErrDuplicateRoute)

	assert.Len(t, tbl.Descriptors(), 1, "invalid registrations are not kept")
}

func TestFunc(t *testing.T) {
	t.Parallel()

	tbl := endpoint.NewTable()
	endpoint.Func(tbl, http.MethodGet, "/fn", func(context.Context, *endpoint.Void) (any, error) {
		return "ok", nil
	}, endpoint.WithName("fn"))

	require.NoError(t, tbl.Err())
	require.Len(t, tbl.Descriptors(), 1)
	assert.Equal(t, "fn", tbl.Descriptors()[0].Name)
}
