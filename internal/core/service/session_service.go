package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

var ErrInvalidSession = errors.New("session title and trainer are required")

type SessionService struct {
	repo     ports.SessionRepository
	trainers ports.TrainerRepository
	logger   zerolog.Logger
}

func NewSessionService(repo ports.SessionRepository, trainers ports.TrainerRepository, logger zerolog.Logger) *SessionService {
	return &SessionService{repo: repo, trainers: trainers, logger: logger}
}

// ListSessions returns every session, or only those starting within
// [From, To] when both bounds are set.
func (s *SessionService) ListSessions(ctx context.Context, in ports.ListSessionsInput) ([]*domain.TrainingSession, error) {
	if !in.From.IsZero() && !in.To.IsZero() {
		return s.repo.FindByStartBetween(ctx, in.From.UTC(), in.To.UTC())
	}
	return s.repo.FindAll(ctx)
}

func (s *SessionService) GetSession(ctx context.Context, id int64) (*domain.TrainingSession, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *SessionService) CreateSession(ctx context.Context, in ports.SessionInput) (*domain.TrainingSession, error) {
	session, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("session_id", session.ID).
		Int64("trainer_id", session.TrainerID).
		Time("start_time", session.StartTime).
		Msg("session created")
	return session, nil
}

func (s *SessionService) UpdateSession(ctx context.Context, id int64, in ports.SessionInput) (*domain.TrainingSession, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	session, err := s.build(ctx, in)
	if err != nil {
		return nil, err
	}
	session.ID = id
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, id int64) (bool, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err == nil && removed {
		s.logger.Info().Int64("session_id", id).Msg("session deleted with its reservations")
	}
	return removed, err
}

// build validates the input and checks the owning trainer exists.
func (s *SessionService) build(ctx context.Context, in ports.SessionInput) (*domain.TrainingSession, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.TrainerID <= 0 {
		return nil, ErrInvalidSession
	}

	session := &domain.TrainingSession{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		TrainerID:   in.TrainerID,
	}
	if err := session.ValidateSchedule(); err != nil {
		return nil, err
	}

	if _, err := s.trainers.FindByID(ctx, in.TrainerID); err != nil {
		return nil, err
	}
	return session, nil
}
