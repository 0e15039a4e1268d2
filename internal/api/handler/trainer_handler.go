package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

type TrainerHandler struct {
	service ports.TrainerService
}

func NewTrainerHandler(service ports.TrainerService) *TrainerHandler {
	return &TrainerHandler{service: service}
}

// List godoc
// @Summary   List trainers
// @Tags      trainers
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  trainerResponse
// @Router    /api/trainers [get]
func (h *TrainerHandler) List(c echo.Context) error {
	trainers, err := h.service.ListTrainers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(trainers, toTrainerResponse))
}

// Get godoc
// @Summary   Get a trainer
// @Tags      trainers
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      int  true  "Trainer ID"
// @Success   200  {object}  trainerResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/trainers/{id} [get]
func (h *TrainerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	trainer, err := h.service.GetTrainer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrainerResponse(trainer))
}

// Create godoc
// @Summary   Create a trainer (ADMIN)
// @Tags      trainers
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      trainerRequest  true  "Trainer"
// @Success   201   {object}  trainerResponse
// @Failure   422   {object}  errorResponse
// @Router    /api/trainers [post]
func (h *TrainerHandler) Create(c echo.Context) error {
	var req trainerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	trainer, err := h.service.CreateTrainer(c.Request().Context(), toTrainerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTrainerResponse(trainer))
}

// Update godoc
// @Summary   Replace a trainer (ADMIN)
// @Tags      trainers
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      int             true  "Trainer ID"
// @Param     body  body      trainerRequest  true  "Trainer"
// @Success   200   {object}  trainerResponse
// @Failure   404   {object}  errorResponse
// @Router    /api/trainers/{id} [put]
func (h *TrainerHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req trainerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	trainer, err := h.service.UpdateTrainer(c.Request().Context(), id, toTrainerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrainerResponse(trainer))
}

// Delete godoc
// @Summary      Delete a trainer (ADMIN)
// @Description  Removes the trainer's sessions and their reservations as well.
// @Tags         trainers
// @Security     BearerAuth
// @Param        id  path  int  true  "Trainer ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/trainers/{id} [delete]
func (h *TrainerHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	removed, err := h.service.DeleteTrainer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound(domain.KindTrainer, id)
	}
	return c.NoContent(http.StatusNoContent)
}
