package adapter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bjaus/endpoint"
)

type ginRouter struct {
	r gin.IRoutes
}

// Gin returns an endpoint.Router that registers routes on r, which may be
// a *gin.Engine or a *gin.RouterGroup.
func Gin(r gin.IRoutes) endpoint.Router {
	return ginRouter{r: r}
}

func (g ginRouter) Handle(method, path string, h http.Handler) {
	g.r.Handle(method, path, func(c *gin.Context) {
		for _, p := range c.Params {
			c.Request.SetPathValue(p.Key, p.Value)
		}
		h.ServeHTTP(c.Writer, c.Request)
	})
}
