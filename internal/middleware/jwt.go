// Package middleware provides shared request processing for handlers: JWT
// validation, role enforcement and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/model"
)

// Context keys set by JWTAuth and read by RequireRole and the handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWTAuth returns middleware that validates a Bearer access token and
// injects the subject and role claims into the request context. The secret
// must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(authz, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			// Numeric JSON claims decode as float64.
			if sub, ok := claims["sub"].(float64); ok {
				c.Set(CtxUserID, uint64(sub))
			}
			if role, ok := claims["role"].(string); ok {
				c.Set(CtxRole, model.ParseRole(role))
			}
			return next(c)
		}
	}
}

// UserID extracts the authenticated user's ID from the context.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxUserID).(uint64)
	return id, ok
}

// CurrentRole extracts the authenticated role from the context, guest when
// absent.
func CurrentRole(c echo.Context) model.Role {
	if r, ok := c.Get(CtxRole).(model.Role); ok {
		return r
	}
	return model.RoleGuest
}
