package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// RequireIdentity returns a middleware that reads the requester identity set
// by the upstream auth proxy. Token verification happens there; this service
// only consumes the resulting headers.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawID := c.Request().Header.Get("X-User-ID")
			if rawID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}

			userID, err := strconv.ParseUint(rawID, 10, 32)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity")
			}

			// Set requester info in context for downstream handlers
			c.Set("userID", uint(userID))
			c.Set("isAdmin", c.Request().Header.Get("X-User-Role") == "admin")

			return next(c)
		}
	}
}

// RequesterID reads the identity placed in context by RequireIdentity.
func RequesterID(c echo.Context) uint {
	if v, ok := c.Get("userID").(uint); ok {
		return v
	}
	return 0
}

// RequesterIsAdmin reports whether the requester carries the admin role.
func RequesterIsAdmin(c echo.Context) bool {
	v, ok := c.Get("isAdmin").(bool)
	return ok && v
}
