package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// TrainerRepository defines persistence operations for trainers.
// Deleting a trainer also removes its sessions and their reservations.
type TrainerRepository interface {
	FindAll(ctx context.Context) ([]*domain.Trainer, error)
	FindByID(ctx context.Context, id int64) (*domain.Trainer, error)
	Create(ctx context.Context, t *domain.Trainer) error
	Update(ctx context.Context, t *domain.Trainer) error
	Delete(ctx context.Context, id int64) (bool, error)
}
