package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/discount"
	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// CreateReservationInput identifies the user and session to link. An
// optional IdempotencyKey makes retries return the first result.
type CreateReservationInput struct {
	UserID         int64
	SessionID      int64
	IdempotencyKey string
}

// ReservationResult is the persisted reservation plus the discount computed
// for it. The discount is informational: no price is stored.
type ReservationResult struct {
	Reservation *domain.Reservation
	Discount    discount.Rate
	Policy      string
	// Role is the reserving user's role; empty on replays.
	Role domain.Role
	// Replayed is true when the IdempotencyKey matched an earlier request.
	Replayed bool
}

// ListReservationsInput filters by user first, then by session.
type ListReservationsInput struct {
	UserID    int64
	SessionID int64
}

type ReservationService interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (*ReservationResult, error)
	ListReservations(ctx context.Context, in ListReservationsInput) ([]*domain.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, id int64) (bool, error)
}
