package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	FindAll(ctx context.Context) ([]*domain.Reservation, error)
	FindByUser(ctx context.Context, userID int64) ([]*domain.Reservation, error)
	FindBySession(ctx context.Context, sessionID int64) ([]*domain.Reservation, error)
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	// Create inserts a single row and sets r.ID. A second reservation for the
	// same user and session fails with domain.ErrReservationExists.
	Create(ctx context.Context, r *domain.Reservation) error
	Delete(ctx context.Context, id int64) (bool, error)
}
