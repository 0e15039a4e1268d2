package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/api/middleware"
	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// caller extracts the identity injected by the Auth middleware and fails
// fast when it is missing.
func caller(c echo.Context) (userID int64, role string, err error) {
	role, _ = c.Get(middleware.ContextRole).(string)
	userID, _ = c.Get(middleware.ContextUserID).(int64)
	if role == "" || userID <= 0 {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}

// actingFor allows a caller to act on behalf of userID only when it is
// themselves or the caller is an ADMIN.
func actingFor(callerID int64, role string, userID int64) error {
	if callerID == userID || role == string(domain.RoleAdmin) {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, "only admins can act on behalf of another user")
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
