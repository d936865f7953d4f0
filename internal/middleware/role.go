package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/model"
)

// RequireRole returns middleware enforcing that the authenticated user's
// role is in the allow-list. Roles are compared as the closed model.Role
// enumeration, never as raw strings; JWTAuth must run first. Requests with
// a missing or disallowed role are rejected with 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(model.Role)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
