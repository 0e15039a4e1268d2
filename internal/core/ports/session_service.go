package ports

import (
	"context"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

type SessionInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	TrainerID   int64
}

// ListSessionsInput filters by start time when both From and To are set.
type ListSessionsInput struct {
	From time.Time
	To   time.Time
}

type SessionService interface {
	ListSessions(ctx context.Context, in ListSessionsInput) ([]*domain.TrainingSession, error)
	GetSession(ctx context.Context, id int64) (*domain.TrainingSession, error)
	CreateSession(ctx context.Context, in SessionInput) (*domain.TrainingSession, error)
	UpdateSession(ctx context.Context, id int64, in SessionInput) (*domain.TrainingSession, error)
	DeleteSession(ctx context.Context, id int64) (bool, error)
}
