package ports

import (
	"context"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// SessionRepository defines persistence operations for training sessions.
type SessionRepository interface {
	FindAll(ctx context.Context) ([]*domain.TrainingSession, error)
	// FindByStartBetween returns sessions with from <= start_time <= to, ordered by start.
	FindByStartBetween(ctx context.Context, from, to time.Time) ([]*domain.TrainingSession, error)
	FindByID(ctx context.Context, id int64) (*domain.TrainingSession, error)
	Create(ctx context.Context, s *domain.TrainingSession) error
	Update(ctx context.Context, s *domain.TrainingSession) error
	Delete(ctx context.Context, id int64) (bool, error)
}
