package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// UserHandler handles club account administration.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary   List users
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   userResponse
// @Router    /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(users, toUserResponse))
}

// Get godoc
// @Summary   Get a user
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "User ID"
// @Success   200  {object}  userResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Create godoc
// @Summary   Create a user (ADMIN)
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      userRequest  true  "User"
// @Success   201   {object}  userResponse
// @Failure   409   {object}  errorResponse
// @Failure   422   {object}  errorResponse
// @Router    /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.CreateUser(c.Request().Context(), toUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update godoc
// @Summary      Replace a user (ADMIN)
// @Description  An empty password keeps the current one.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "User ID"
// @Param        body  body      userRequest  true  "User"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req userRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.Request().Context(), id, toUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete godoc
// @Summary   Delete a user and their reservations (ADMIN)
// @Tags      users
// @Security  BearerAuth
// @Param     id  path  int  true  "User ID"
// @Success   204
// @Failure   404  {object}  errorResponse
// @Router    /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	removed, err := h.service.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound(domain.KindUser, id)
	}
	return c.NoContent(http.StatusNoContent)
}
