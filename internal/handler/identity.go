package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Headers set by the upstream identity gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

const userIDKey = "user_id"

// RequireUser rejects requests without an authenticated user and stores
// the user id in the echo context.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return c.String(http.StatusUnauthorized, msgUnauthorized)
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the user id stored by RequireUser.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
