package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/api/metrics"
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
	"github.com/klubfitness/fitness-club/internal/core/service"
)

const headerIdempotencyKey = "Idempotency-Key"

// ReservationHandler exposes the reservation pipeline.
type ReservationHandler struct {
	service ports.ReservationService
}

func NewReservationHandler(service ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// Create handles POST /api/reservations.
//
// The reservation time is always set by the server. A repeated
// Idempotency-Key from the same caller returns the first reservation with 200.
// Only ADMIN may reserve for a userId other than their own.
//
// @Summary      Reserve a training session
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      reservationRequest  true   "User and session"
// @Success      201              {object}  reservationResponse
// @Success      200              {object}  reservationResponse  "idempotent replay"
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	callerID, role, err := caller(c)
	if err != nil {
		return err
	}

	var req reservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := actingFor(callerID, role, req.UserID); err != nil {
		metrics.ReservationsRejectedTotal.WithLabelValues("forbidden").Inc()
		return err
	}

	in := ports.CreateReservationInput{UserID: req.UserID, SessionID: req.SessionID}
	if key := c.Request().Header.Get(headerIdempotencyKey); key != "" {
		// keys are scoped per caller
		in.IdempotencyKey = strconv.FormatInt(callerID, 10) + ":" + key
	}

	result, err := h.service.CreateReservation(c.Request().Context(), in)
	if err != nil {
		metrics.ReservationsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return err
	}

	if result.Replayed {
		metrics.ReservationsReplayedTotal.Inc()
		return c.JSON(http.StatusOK, toReservationResultResponse(result))
	}

	metrics.ReservationsCreatedTotal.WithLabelValues(string(result.Role), result.Policy).Inc()
	metrics.ReservationDiscountRate.WithLabelValues(result.Policy).Observe(result.Discount.Float())

	c.Response().Header().Set(echo.HeaderLocation, "/api/reservations/"+strconv.FormatInt(result.Reservation.ID, 10))
	return c.JSON(http.StatusCreated, toReservationResultResponse(result))
}

func rejectReason(err error) string {
	switch {
	case domain.IsNotFoundKind(err, domain.KindUser):
		return "user_not_found"
	case domain.IsNotFoundKind(err, domain.KindSession):
		return "session_not_found"
	case errors.Is(err, domain.ErrReservationExists):
		return "duplicate"
	case errors.Is(err, service.ErrIdempotencyKeyReused):
		return "idempotency_key_reused"
	default:
		return "error"
	}
}

// List godoc
// @Summary      List reservations
// @Description  userId wins over sessionId when both are given.
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        userId     query     int  false  "Filter by user"
// @Param        sessionId  query     int  false  "Filter by session"
// @Success      200        {array}   reservationResponse
// @Failure      400        {object}  errorResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	var in ports.ListReservationsInput
	if err := echo.QueryParamsBinder(c).
		Int64("userId", &in.UserID).
		Int64("sessionId", &in.SessionID).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and sessionId must be integers")
	}

	reservations, err := h.service.ListReservations(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(reservations, toReservationResponse))
}

// Get godoc
// @Summary   Get a reservation
// @Tags      reservations
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Reservation ID"
// @Success   200  {object}  reservationResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	reservation, err := h.service.GetReservation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(reservation))
}

// Cancel godoc
// @Summary      Cancel a reservation
// @Description  Members and trainers may only cancel their own reservations.
// @Tags         reservations
// @Security     BearerAuth
// @Param        id  path  int  true  "Reservation ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	callerID, role, err := caller(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.service.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := actingFor(callerID, role, existing.UserID); err != nil {
		return err
	}

	removed, err := h.service.CancelReservation(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound(domain.KindReservation, id)
	}
	metrics.ReservationsCancelledTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
