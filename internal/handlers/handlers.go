package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stayx/backend/internal/middleware"
	"github.com/stayx/backend/internal/models"
	"github.com/stayx/backend/internal/storage"
)

// currentUserID returns the authenticated user's id placed in the context by
// the JWT middleware.
func currentUserID(c echo.Context) (uint, error) {
	id, ok := c.Get(middleware.ContextUserID).(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return id, nil
}

// currentUser resolves the authenticated user's full record.
func currentUser(c echo.Context, store storage.Storage) (*models.User, error) {
	id, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	user, err := store.GetUser(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}

// httpError translates storage sentinel errors into HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict), errors.Is(err, storage.ErrTerminalState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrNotConnected):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
