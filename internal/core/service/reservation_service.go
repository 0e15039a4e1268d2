package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/core/discount"
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

var ErrIdempotencyKeyReused = errors.New("idempotency key was already used for a different reservation request")

// ReservationService runs the reservation pipeline: resolve the user, resolve
// the session, apply the role's discount policy, stamp server time, insert.
type ReservationService struct {
	users        ports.UserRepository
	sessions     ports.SessionRepository
	reservations ports.ReservationRepository
	policies     *discount.Registry
	events       ports.ReservationEventPublisher
	idempotency  ports.IdempotencyStore
	now          func() time.Time
	logger       zerolog.Logger
}

// ReservationOption customises optional collaborators.
type ReservationOption func(*ReservationService)

// WithEventPublisher sends lifecycle events to p after each create/cancel.
func WithEventPublisher(p ports.ReservationEventPublisher) ReservationOption {
	return func(s *ReservationService) { s.events = p }
}

// WithIdempotencyStore enables Idempotency-Key replays.
func WithIdempotencyStore(store ports.IdempotencyStore) ReservationOption {
	return func(s *ReservationService) { s.idempotency = store }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ReservationOption {
	return func(s *ReservationService) { s.now = now }
}

func NewReservationService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	reservations ports.ReservationRepository,
	policies *discount.Registry,
	logger zerolog.Logger,
	opts ...ReservationOption,
) *ReservationService {
	s := &ReservationService{
		users:        users,
		sessions:     sessions,
		reservations: reservations,
		policies:     policies,
		events:       noopPublisher{},
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReservation links a user to a session. Lookups short-circuit: when
// the user is missing the session is never queried. Store errors are
// returned as-is.
func (s *ReservationService) CreateReservation(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, error) {
	if in.IdempotencyKey != "" && s.idempotency != nil {
		res, ok, err := s.replay(ctx, in)
		if err != nil {
			return nil, err
		}
		if ok {
			return res, nil
		}
	}

	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	policy := s.policies.For(user.Role)
	rate := policy.Rate(session, user)
	if !rate.Valid() {
		s.logger.Warn().Str("policy", policy.Name()).Int64("basis_points", int64(rate)).Msg("policy rate out of range, clamping")
		rate = rate.Clamp()
	}

	reservation := &domain.Reservation{
		UserID:          user.ID,
		SessionID:       session.ID,
		ReservationTime: s.now().UTC(),
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("reservation_id", reservation.ID).
		Int64("user_id", user.ID).
		Int64("session_id", session.ID).
		Str("policy_key", user.Role.PolicyKey()).
		Str("policy", policy.Name()).
		Str("discount", rate.String()).
		Msg("reservation created")

	if in.IdempotencyKey != "" && s.idempotency != nil {
		rec := ports.IdempotentReservation{
			ReservationID:       reservation.ID,
			UserID:              user.ID,
			SessionID:           session.ID,
			DiscountBasisPoints: int64(rate),
			Policy:              policy.Name(),
		}
		if err := s.idempotency.Remember(ctx, in.IdempotencyKey, rec); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.events.Publish(domain.ReservationEvent{
		ID:                  uuid.NewString(),
		Type:                domain.ReservationCreated,
		ReservationID:       reservation.ID,
		UserID:              user.ID,
		SessionID:           session.ID,
		Role:                user.Role,
		Policy:              policy.Name(),
		DiscountBasisPoints: int64(rate),
		OccurredAt:          reservation.ReservationTime,
	})

	return &ports.ReservationResult{
		Reservation: reservation,
		Discount:    rate,
		Policy:      policy.Name(),
		Role:        user.Role,
	}, nil
}

// replay returns the reservation an earlier request with the same key
// produced. A key bound to another user or session is rejected. Store
// failures and cancelled reservations fall through to a fresh create.
func (s *ReservationService) replay(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, bool, error) {
	key := in.IdempotencyKey
	rec, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, processing anyway")
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}
	if rec.UserID != in.UserID || rec.SessionID != in.SessionID {
		s.logger.Warn().
			Str("idempotency_key", key).
			Int64("stored_user_id", rec.UserID).
			Int64("stored_session_id", rec.SessionID).
			Int64("user_id", in.UserID).
			Int64("session_id", in.SessionID).
			Msg("idempotency key reused with a different request")
		return nil, false, ErrIdempotencyKeyReused
	}

	existing, err := s.reservations.FindByID(ctx, rec.ReservationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Int64("reservation_id", rec.ReservationID).Msg("idempotent replay lookup failed")
		}
		return nil, false, nil
	}

	s.logger.Info().Str("idempotency_key", key).Int64("reservation_id", existing.ID).Msg("idempotent replay")
	return &ports.ReservationResult{
		Reservation: existing,
		Discount:    discount.Rate(rec.DiscountBasisPoints),
		Policy:      rec.Policy,
		Replayed:    true,
	}, true, nil
}

func (s *ReservationService) ListReservations(ctx context.Context, in ports.ListReservationsInput) ([]*domain.Reservation, error) {
	switch {
	case in.UserID > 0:
		return s.reservations.FindByUser(ctx, in.UserID)
	case in.SessionID > 0:
		return s.reservations.FindBySession(ctx, in.SessionID)
	default:
		return s.reservations.FindAll(ctx)
	}
}

func (s *ReservationService) GetReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.FindByID(ctx, id)
}

// CancelReservation deletes the reservation and reports whether it existed.
// A missing id returns false without touching the store.
func (s *ReservationService) CancelReservation(ctx context.Context, id int64) (bool, error) {
	existing, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	removed, err := s.reservations.Delete(ctx, id)
	if err != nil || !removed {
		return removed, err
	}

	s.logger.Info().Int64("reservation_id", id).Msg("reservation cancelled")
	s.events.Publish(domain.ReservationEvent{
		ID:            uuid.NewString(),
		Type:          domain.ReservationCancelled,
		ReservationID: existing.ID,
		UserID:        existing.UserID,
		SessionID:     existing.SessionID,
		OccurredAt:    s.now().UTC(),
	})
	return true, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.ReservationEvent) {}
