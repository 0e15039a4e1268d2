package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// UserRepository defines persistence operations for club accounts.
// Lookups that miss return a *domain.NotFoundError.
type UserRepository interface {
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Update replaces every mutable field of the user with the given id.
	Update(ctx context.Context, u *domain.User) error
	// Delete reports whether a row existed and was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
