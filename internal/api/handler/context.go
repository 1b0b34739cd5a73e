package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/api/middleware"
	"github.com/printcraft/storefront/internal/core/ports"
)

// ctxViewer extracts the caller injected by the Auth middleware. A missing
// user id means the route was mounted without Auth.
func ctxViewer(c echo.Context) (ports.Viewer, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return ports.Viewer{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get(middleware.ContextRole).(string)
	return ports.Viewer{UserID: userID, Role: role}, nil
}

// optionalViewer returns the caller on routes mounted with OptionalAuth. The
// zero Viewer stands for an anonymous request.
func optionalViewer(c echo.Context) ports.Viewer {
	v, err := ctxViewer(c)
	if err != nil {
		return ports.Viewer{}
	}
	return v
}
