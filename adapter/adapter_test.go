package adapter_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/endpoint"
	"github.com/bjaus/endpoint/adapter"
	"github.com/bjaus/endpoint/endpointtest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type userReq struct {
	ID   string `path:"id"`
	Team string `query:"team" default:"core"`
}

type getUser struct{}

func (getUser) Handle(_ context.Context, p *userReq) (any, error) {
	return map[string]string{"id": p.ID, "team": p.Team}, nil
}

func newTable(path string) *endpoint.Table {
	tbl := endpoint.NewTable()
	endpoint.Get[userReq, getUser](tbl, path, func() getUser { return getUser{} })
	endpoint.Func(tbl, http.MethodPost, path, func(context.Context, *endpoint.Void) (any, error) {
		return &endpoint.Response{StatusCode: http.StatusCreated}, nil
	})
	return tbl
}

func TestAdapters(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		build func(tbl *endpoint.Table) (http.Handler, error)
		path  string
	}{
		"gorilla": {
			path: "/users/{id}",
			build: func(tbl *endpoint.Table) (http.Handler, error) {
				r := mux.NewRouter()
				return r, endpoint.Publish(adapter.Gorilla(r), endpoint.NewContainer(), tbl, endpoint.WithLogger(slog.New(slog.DiscardHandler)))
			},
		},
		"chi": {
			path: "/users/{id}",
			build: func(tbl *endpoint.Table) (http.Handler, error) {
				r := chi.NewRouter()
				return r, endpoint.Publish(adapter.Chi(r), endpoint.NewContainer(), tbl, endpoint.WithLogger(slog.New(slog.DiscardHandler)))
			},
		},
		"gin": {
			path: "/users/:id",
			build: func(tbl *endpoint.Table) (http.Handler, error) {
				r := gin.New()
				return r, endpoint.Publish(adapter.Gin(r), endpoint.NewContainer(), tbl, endpoint.WithLogger(slog.New(slog.DiscardHandler)))
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h, err := tc.build(newTable(tc.path))
			require.NoError(t, err)
			client := endpointtest.NewClient(t, h)

			resp := client.Get(t, "/users/42?team=platform")
			require.Equal(t, http.StatusOK, resp.Status, resp.Text())
			assert.JSONEq(t, `{"id":"42","team":"platform"}`, resp.Text())

			resp = client.Get(t, "/users/7")
			require.Equal(t, http.StatusOK, resp.Status)
			assert.JSONEq(t, `{"id":"7","team":"core"}`, resp.Text())

			resp = client.Do(t, http.MethodPost, "/users/7", nil, nil)
			assert.Equal(t, http.StatusCreated, resp.Status)

			resp = client.Do(t, http.MethodPut, "/users/7", nil, nil)
			assert.NotEqual(t, http.StatusOK, resp.Status, "unregistered methods are left to the router")
		})
	}
}

func TestGin_router_group(t *testing.T) {
	t.Parallel()

	engine := gin.New()
	v1 := engine.Group("/v1")
	require.NoError(t, endpoint.Publish(adapter.Gin(v1), endpoint.NewContainer(), newTable("/users/:id"),
		endpoint.WithLogger(slog.New(slog.DiscardHandler))))

	resp := endpointtest.NewClient(t, engine).Get(t, "/v1/users/9")

	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"id":"9","team":"core"}`, resp.Text())
}
