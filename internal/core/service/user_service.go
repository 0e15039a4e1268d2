package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

var ErrInvalidUser = errors.New("username, password and role are required")

// UserService manages club accounts. Passwords are stored as bcrypt hashes.
type UserService struct {
	repo   ports.UserRepository
	cost   int
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrInvalidUser
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", string(role)).Msg("user created")
	return user, nil
}

// UpdateUser replaces username and role. An empty password keeps the
// current hash.
func (s *UserService) UpdateUser(ctx context.Context, id int64, in ports.UserInput) (*domain.User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, ErrInvalidUser
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Username = username
	updated.Role = role
	updated.UpdatedAt = time.Now().UTC()
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updated.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err == nil && removed {
		s.logger.Info().Int64("user_id", id).Msg("user deleted")
	}
	return removed, err
}

// EnsureAdmin creates an ADMIN account with the given credentials unless the
// username already exists. Empty credentials are a no-op.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	_, err = s.CreateUser(ctx, ports.UserInput{Username: username, Password: password, Role: string(domain.RoleAdmin)})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}
