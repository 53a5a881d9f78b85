package api

import (
	"net/http"

	xhttp "HostPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

// Routes composes the individual handlers into the single Handler the HTTP
// server consumes.
type Routes struct {
	handlers []xhttp.Handler
}

var _ xhttp.Handler = (*Routes)(nil)

func NewRoutes(handlers ...xhttp.Handler) *Routes {
	return &Routes{handlers: handlers}
}

func (r *Routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}
