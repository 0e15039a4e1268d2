package handler

import (
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// --- Request → Service input ---

func toUserInput(req userRequest) ports.UserInput {
	return ports.UserInput{Username: req.Username, Password: req.Password, Role: req.Role}
}

func toTrainerInput(req trainerRequest) ports.TrainerInput {
	return ports.TrainerInput{Name: req.Name, Specialization: req.Specialization}
}

func toSessionInput(req sessionRequest) ports.SessionInput {
	return ports.SessionInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TrainerID:   req.TrainerID,
	}
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

func toTrainerResponse(t *domain.Trainer) trainerResponse {
	return trainerResponse{ID: t.ID, Name: t.Name, Specialization: t.Specialization}
}

func toSessionResponse(s *domain.TrainingSession) sessionResponse {
	return sessionResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		StartTime:   s.StartTime.UTC(),
		EndTime:     s.EndTime.UTC(),
		TrainerID:   s.TrainerID,
	}
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		SessionID:       r.SessionID,
		ReservationTime: r.ReservationTime.UTC(),
	}
}

func toReservationResultResponse(res *ports.ReservationResult) reservationResponse {
	out := toReservationResponse(res.Reservation)
	rate := res.Discount.Float()
	out.Discount = &rate
	out.Policy = res.Policy
	return out
}

func toEventResponse(e *domain.ReservationEvent) reservationEventResponse {
	return reservationEventResponse{
		ID:                  e.ID,
		Type:                string(e.Type),
		ReservationID:       e.ReservationID,
		UserID:              e.UserID,
		SessionID:           e.SessionID,
		Role:                string(e.Role),
		Policy:              e.Policy,
		DiscountBasisPoints: e.DiscountBasisPoints,
		OccurredAt:          e.OccurredAt.UTC(),
	}
}

// mapSlice converts a slice of domain records, never returning nil so the
// JSON body is [] rather than null.
func mapSlice[T any, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
