package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

var ErrInvalidTrainer = errors.New("trainer name is required")

type TrainerService struct {
	repo   ports.TrainerRepository
	logger zerolog.Logger
}

func NewTrainerService(repo ports.TrainerRepository, logger zerolog.Logger) *TrainerService {
	return &TrainerService{repo: repo, logger: logger}
}

func (s *TrainerService) ListTrainers(ctx context.Context) ([]*domain.Trainer, error) {
	return s.repo.FindAll(ctx)
}

func (s *TrainerService) GetTrainer(ctx context.Context, id int64) (*domain.Trainer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TrainerService) CreateTrainer(ctx context.Context, in ports.TrainerInput) (*domain.Trainer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidTrainer
	}

	now := time.Now().UTC()
	t := &domain.Trainer{
		Name:           name,
		Specialization: strings.TrimSpace(in.Specialization),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("trainer_id", t.ID).Msg("trainer created")
	return t, nil
}

func (s *TrainerService) UpdateTrainer(ctx context.Context, id int64, in ports.TrainerInput) (*domain.Trainer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidTrainer
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = name
	updated.Specialization = strings.TrimSpace(in.Specialization)
	updated.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTrainer removes the trainer together with its sessions and their
// reservations.
func (s *TrainerService) DeleteTrainer(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err == nil && removed {
		s.logger.Info().Int64("trainer_id", id).Msg("trainer deleted with its sessions")
	}
	return removed, err
}
