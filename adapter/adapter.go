// Package adapter publishes endpoint routes onto third-party routers.
//
// Each adapter copies the router's own path parameters into
// (*http.Request).SetPathValue before the route runs, so payload fields
// tagged `path:"name"` bind the same way on every router. Paths passed to
// endpoint.Route are handed to the router unchanged and use its syntax:
// "/users/{id}" for gorilla/mux and chi, "/users/:id" for gin.
package adapter

import "net/http"

// withPathValues sets every parameter returned by params as a path value on
// the request before calling h.
func withPathValues(h http.Handler, params func(r *http.Request) map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range params(r) {
			r.SetPathValue(k, v)
		}
		h.ServeHTTP(w, r)
	})
}
