package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// UserInput carries the mutable fields of a user. Password is plain text and
// is hashed by the service; on update an empty password keeps the old hash.
type UserInput struct {
	Username string
	Password string
	Role     string
}

type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, in UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}
