package adapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bjaus/endpoint"
)

type chiRouter struct {
	r chi.Router
}

// Chi returns an endpoint.Router that registers routes on r.
func Chi(r chi.Router) endpoint.Router {
	return chiRouter{r: r}
}

func (c chiRouter) Handle(method, path string, h http.Handler) {
	c.r.Method(method, path, withPathValues(h, chiParams))
}

func chiParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return params
}
