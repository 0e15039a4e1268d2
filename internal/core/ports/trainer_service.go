package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

type TrainerInput struct {
	Name           string
	Specialization string
}

type TrainerService interface {
	ListTrainers(ctx context.Context) ([]*domain.Trainer, error)
	GetTrainer(ctx context.Context, id int64) (*domain.Trainer, error)
	CreateTrainer(ctx context.Context, in TrainerInput) (*domain.Trainer, error)
	UpdateTrainer(ctx context.Context, id int64, in TrainerInput) (*domain.Trainer, error)
	DeleteTrainer(ctx context.Context, id int64) (bool, error)
}
