package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[int64]*domain.User
	nextID    int64
	findCalls int
	findErr   error
	createErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[int64]*domain.User), nextID: 1}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.KindUser, id)
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return domain.ErrUserExists
		}
	}
	u.ID = r.nextID
	r.nextID++
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return domain.NotFound(domain.KindUser, u.ID)
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type stubTrainerRepo struct {
	byID   map[int64]*domain.Trainer
	nextID int64
}

func newStubTrainerRepo(trainers ...*domain.Trainer) *stubTrainerRepo {
	r := &stubTrainerRepo{byID: make(map[int64]*domain.Trainer), nextID: 1}
	for _, t := range trainers {
		clone := *t
		r.byID[t.ID] = &clone
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r
}

func (r *stubTrainerRepo) FindAll(_ context.Context) ([]*domain.Trainer, error) {
	out := make([]*domain.Trainer, 0, len(r.byID))
	for _, t := range r.byID {
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubTrainerRepo) FindByID(_ context.Context, id int64) (*domain.Trainer, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.KindTrainer, id)
	}
	clone := *t
	return &clone, nil
}

func (r *stubTrainerRepo) Create(_ context.Context, t *domain.Trainer) error {
	t.ID = r.nextID
	r.nextID++
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTrainerRepo) Update(_ context.Context, t *domain.Trainer) error {
	if _, ok := r.byID[t.ID]; !ok {
		return domain.NotFound(domain.KindTrainer, t.ID)
	}
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTrainerRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type stubSessionRepo struct {
	byID         map[int64]*domain.TrainingSession
	nextID       int64
	findCalls    int
	betweenCalls int
}

func newStubSessionRepo(sessions ...*domain.TrainingSession) *stubSessionRepo {
	r := &stubSessionRepo{byID: make(map[int64]*domain.TrainingSession), nextID: 1}
	for _, s := range sessions {
		clone := *s
		r.byID[s.ID] = &clone
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

func (r *stubSessionRepo) FindAll(_ context.Context) ([]*domain.TrainingSession, error) {
	out := make([]*domain.TrainingSession, 0, len(r.byID))
	for _, s := range r.byID {
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *stubSessionRepo) FindByStartBetween(ctx context.Context, from, to time.Time) ([]*domain.TrainingSession, error) {
	r.betweenCalls++
	all, _ := r.FindAll(ctx)
	var out []*domain.TrainingSession
	for _, s := range all {
		if !s.StartTime.Before(from) && !s.StartTime.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) FindByID(_ context.Context, id int64) (*domain.TrainingSession, error) {
	r.findCalls++
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.KindSession, id)
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.TrainingSession) error {
	s.ID = r.nextID
	r.nextID++
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubSessionRepo) Update(_ context.Context, s *domain.TrainingSession) error {
	if _, ok := r.byID[s.ID]; !ok {
		return domain.NotFound(domain.KindSession, s.ID)
	}
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubSessionRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type stubReservationRepo struct {
	byID        map[int64]*domain.Reservation
	nextID      int64
	createErr   error
	createCalls int
	deleteCalls int
}

func newStubReservationRepo(reservations ...*domain.Reservation) *stubReservationRepo {
	r := &stubReservationRepo{byID: make(map[int64]*domain.Reservation), nextID: 1}
	for _, res := range reservations {
		clone := *res
		r.byID[res.ID] = &clone
		if res.ID >= r.nextID {
			r.nextID = res.ID + 1
		}
	}
	return r
}

func (r *stubReservationRepo) filter(keep func(*domain.Reservation) bool) []*domain.Reservation {
	out := make([]*domain.Reservation, 0)
	for _, res := range r.byID {
		if keep(res) {
			clone := *res
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubReservationRepo) FindAll(_ context.Context) ([]*domain.Reservation, error) {
	return r.filter(func(*domain.Reservation) bool { return true }), nil
}

func (r *stubReservationRepo) FindByUser(_ context.Context, userID int64) ([]*domain.Reservation, error) {
	return r.filter(func(res *domain.Reservation) bool { return res.UserID == userID }), nil
}

func (r *stubReservationRepo) FindBySession(_ context.Context, sessionID int64) ([]*domain.Reservation, error) {
	return r.filter(func(res *domain.Reservation) bool { return res.SessionID == sessionID }), nil
}

func (r *stubReservationRepo) FindByID(_ context.Context, id int64) (*domain.Reservation, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound(domain.KindReservation, id)
	}
	clone := *res
	return &clone, nil
}

func (r *stubReservationRepo) Create(_ context.Context, res *domain.Reservation) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.UserID == res.UserID && existing.SessionID == res.SessionID {
			return domain.ErrReservationExists
		}
	}
	res.ID = r.nextID
	r.nextID++
	clone := *res
	r.byID[res.ID] = &clone
	return nil
}

func (r *stubReservationRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.deleteCalls++
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type recordingPublisher struct {
	events []domain.ReservationEvent
}

func (p *recordingPublisher) Publish(e domain.ReservationEvent) {
	p.events = append(p.events, e)
}

type stubIdempotencyStore struct {
	records   map[string]ports.IdempotentReservation
	lookupErr error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{records: make(map[string]ports.IdempotentReservation)}
}

func (s *stubIdempotencyStore) Lookup(_ context.Context, key string) (*ports.IdempotentReservation, bool, error) {
	if s.lookupErr != nil {
		return nil, false, s.lookupErr
	}
	rec, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (s *stubIdempotencyStore) Remember(_ context.Context, key string, rec ports.IdempotentReservation) error {
	s.records[key] = rec
	return nil
}
