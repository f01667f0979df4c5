package endpoint

import (
	"context"
	"net/http"
	"time"
)

// Router is the HTTP router routes are published onto. It owns path
// matching: Handle is called once per descriptor and h must be invoked for
// every request matching method and path. Path parameters must be readable
// through (*http.Request).PathValue for payload binding.
type Router interface {
	Handle(method, path string, h http.Handler)
}

// Mux is the default Router, built on http.ServeMux. Paths use ServeMux
// pattern syntax ("/users/{id}"). It implements http.Handler.
type Mux struct {
	mux        *http.ServeMux
	middleware []Middleware
}

// NewMux creates an empty Mux.
func NewMux() *Mux {
	return &Mux{mux: http.NewServeMux()}
}

// Handle implements Router.
func (m *Mux) Handle(method, path string, h http.Handler) {
	m.mux.Handle(method+" "+path, h)
}

// Use adds middleware to the mux. Middleware is applied in the order added
// and runs before route matching.
func (m *Mux) Use(mw ...Middleware) {
	m.middleware = append(m.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (m *Mux) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(m.mux)
	for i := len(m.middleware) - 1; i >= 0; i-- {
		handler = m.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// ListenAndServe serves h on addr. It blocks until the context is
// cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
