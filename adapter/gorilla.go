package adapter

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bjaus/endpoint"
)

type gorillaRouter struct {
	r *mux.Router
}

// Gorilla returns an endpoint.Router that registers routes on r.
func Gorilla(r *mux.Router) endpoint.Router {
	return gorillaRouter{r: r}
}

func (g gorillaRouter) Handle(method, path string, h http.Handler) {
	g.r.Handle(path, withPathValues(h, mux.Vars)).Methods(method)
}
