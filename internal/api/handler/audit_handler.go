package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// AuditHandler exposes the reservation event log.
type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary   List reservation events (ADMIN)
// @Tags      audit
// @Produce   json
// @Security  BearerAuth
// @Param     reservationId  query     int     false  "Filter by reservation"
// @Param     userId         query     int     false  "Filter by user"
// @Param     since          query     string  false  "RFC3339 lower bound"
// @Param     limit          query     int     false  "Max events (default 50, max 500)"
// @Success   200            {array}   reservationEventResponse
// @Failure   400            {object}  errorResponse
// @Router    /api/audit/reservations [get]
func (h *AuditHandler) List(c echo.Context) error {
	var filter ports.AuditFilter
	if err := echo.QueryParamsBinder(c).
		Int64("reservationId", &filter.ReservationID).
		Int64("userId", &filter.UserID).
		Time("since", &filter.Since, time.RFC3339).
		Int("limit", &filter.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	events, err := h.service.ListEvents(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(events, toEventResponse))
}
