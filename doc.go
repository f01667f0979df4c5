// Package endpoint publishes handler types as HTTP routes. Each handler is
// constructed per request from a request-scoped dependency container,
// invoked with a payload bound from the request, and its return value (or
// recovered error) is written as exactly one HTTP response.
//
// Handlers implement Handler and, optionally, Recoverer:
//
//	type Hello struct{ greeter *Greeter }
//
//	func NewHello(g *Greeter) *Hello { return &Hello{greeter: g} }
//
//	func (h *Hello) Handle(ctx context.Context, req *HelloReq) (any, error) {
//	    return map[string]string{"message": h.greeter.Greet(req.Name)}, nil
//	}
//
// Routes are declared on a Table and published onto a Router:
//
//	c := endpoint.NewContainer()
//	c.Provide(NewGreeter)
//
//	t := endpoint.NewTable()
//	endpoint.Get[HelloReq, *Hello](t, "/hello/{name}", NewHello)
//
//	mux := endpoint.NewMux()
//	if err := endpoint.Publish(mux, c, t); err != nil { ... }
//
// A handler may return:
//
//   - any value, written as the body with status 200 and application/json;
//   - a *Response, whose StatusCode, ContentType and Body are written as given;
//   - nil, when it has already written through the injected http.ResponseWriter.
//
// Every request scope binds *http.Request, http.ResponseWriter,
// context.Context and RequestID, so constructors can take any of them as
// parameters alongside application services from the Container.
package endpoint
