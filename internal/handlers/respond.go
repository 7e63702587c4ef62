package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/service"
)

// httpError converts service taxonomy errors to echo HTTP errors with a
// caller-safe message. Anything unmapped becomes a generic 500 so internal
// details never reach the client.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, stripSentinel(err, service.ErrValidation))
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, stripSentinel(err, service.ErrConflict))
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, stripSentinel(err, service.ErrNotFound))
	case errors.Is(err, service.ErrInvalidEmail):
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrInvalidEmail.Error())
	case errors.Is(err, service.ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrInvalidPassword.Error())
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, service.ErrInvalidToken.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrAdminProtected):
		return echo.NewHTTPError(http.StatusUnauthorized, service.ErrAdminProtected.Error())
	case errors.Is(err, service.ErrSameName):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, service.ErrSameName.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// stripSentinel drops the "validation error: " style prefix that error
// wrapping adds, leaving the human-readable part.
func stripSentinel(err error, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
