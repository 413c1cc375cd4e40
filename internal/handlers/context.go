package handlers

import (
	"errors"
	"net/http"

	"github.com/ToseebNadaf/TaskStream/internal/models"
	"github.com/labstack/echo/v4"
)

// callerUID returns the authenticated caller's UID set by the JWT middleware,
// or "" when the request is unauthenticated.
func callerUID(c echo.Context) string {
	uid, _ := c.Get("userUID").(string)
	return uid
}

// httpError maps the core's sentinel errors onto HTTP statuses
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
