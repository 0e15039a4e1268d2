package ports

import (
	"context"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// AuthService verifies credentials and issues bearer tokens.
type AuthService interface {
	// Authenticate checks a username and password against the stored hash.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
