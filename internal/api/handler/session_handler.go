package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// SessionHandler serves training sessions under /api/sessions and
// /api/training-sessions.
type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// List godoc
// @Summary      List training sessions
// @Description  With both from and to, only sessions starting in [from, to] are returned.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "RFC3339 lower bound on start time"
// @Param        to    query     string  false  "RFC3339 upper bound on start time"
// @Success      200   {array}   sessionResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	var in ports.ListSessionsInput
	if err := echo.QueryParamsBinder(c).
		Time("from", &in.From, time.RFC3339).
		Time("to", &in.To, time.RFC3339).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from and to must be RFC3339 timestamps")
	}

	sessions, err := h.service.ListSessions(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(sessions, toSessionResponse))
}

// Get godoc
// @Summary   Get a training session
// @Tags      sessions
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Session ID"
// @Success   200  {object}  sessionResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/sessions/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	session, err := h.service.GetSession(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Create godoc
// @Summary   Schedule a training session
// @Tags      sessions
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      sessionRequest  true  "Session"
// @Success   201   {object}  sessionResponse
// @Failure   404   {object}  errorResponse  "trainer not found"
// @Failure   422   {object}  errorResponse
// @Router    /api/sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.service.CreateSession(c.Request().Context(), toSessionInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Update godoc
// @Summary   Replace a training session
// @Tags      sessions
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      int             true  "Session ID"
// @Param     body  body      sessionRequest  true  "Session"
// @Success   200   {object}  sessionResponse
// @Failure   404   {object}  errorResponse
// @Failure   422   {object}  errorResponse
// @Router    /api/sessions/{id} [put]
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req sessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	session, err := h.service.UpdateSession(c.Request().Context(), id, toSessionInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Delete godoc
// @Summary   Delete a training session and its reservations
// @Tags      sessions
// @Security  BearerAuth
// @Param     id  path  int  true  "Session ID"
// @Success   204
// @Failure   404  {object}  errorResponse
// @Router    /api/sessions/{id} [delete]
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	removed, err := h.service.DeleteSession(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound(domain.KindSession, id)
	}
	return c.NoContent(http.StatusNoContent)
}
