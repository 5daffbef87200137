package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hassan123789/go-companion/internal/companion"
)

// Bare-text error bodies returned to clients.
const (
	msgUnauthorized = "Unauthorized"
	msgRateLimited  = "Rate limit exceeded"
	msgNotFound     = "Companion not found"
	msgForbidden    = "Forbidden"
	msgInternal     = "Internal Error"
)

// errorStatus maps an error to an HTTP status and bare-text body.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, companion.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, companion.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, companion.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// textError writes err as a bare-text response.
func textError(c echo.Context, err error) error {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %v", err)
	}
	return c.String(status, msg)
}
