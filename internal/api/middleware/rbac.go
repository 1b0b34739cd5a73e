package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/domain"
)

// RBAC admits requests whose role, as set by Auth, is one of roles. Mount it
// after Auth: a request that reaches it without a role is unauthenticated.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).
					SetInternal(fmt.Errorf("%w: role %s on %s %s", domain.ErrForbidden, role, c.Request().Method, c.Path()))
			}
			return next(c)
		}
	}
}
