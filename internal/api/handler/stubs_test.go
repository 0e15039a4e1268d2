package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/klubfitness/fitness-club/internal/api/middleware"
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// ---- request helpers ----

type call struct {
	method string
	path   string
	body   string
	params map[string]string
	header map[string]string
	// caller identity; zero means unauthenticated
	userID int64
	role   domain.Role
}

func do(t *testing.T, h echo.HandlerFunc, cl call) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var body io.Reader
	if cl.body != "" {
		body = strings.NewReader(cl.body)
	}
	req := httptest.NewRequest(cl.method, cl.path, body)
	if cl.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range cl.header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(cl.params) > 0 {
		names := make([]string, 0, len(cl.params))
		values := make([]string, 0, len(cl.params))
		for k, v := range cl.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if cl.userID > 0 {
		c.Set(middleware.ContextUserID, cl.userID)
		c.Set(middleware.ContextRole, string(cl.role))
	}
	return rec, h(c)
}

func wantHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError with %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func idParam(id string) map[string]string { return map[string]string{"id": id} }


// ---- service stubs ----

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	_, u, err := s.loginFn(ctx, username, password)
	return u, err
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubUserService struct {
	users    map[int64]*domain.User
	createFn func(in ports.UserInput) (*domain.User, error)
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserService) GetUser(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.NotFound(domain.KindUser, id)
}

func (s *stubUserService) CreateUser(_ context.Context, in ports.UserInput) (*domain.User, error) {
	return s.createFn(in)
}

func (s *stubUserService) UpdateUser(_ context.Context, id int64, in ports.UserInput) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound(domain.KindUser, id)
	}
	u.Username = in.Username
	return u, nil
}

func (s *stubUserService) DeleteUser(_ context.Context, id int64) (bool, error) {
	_, ok := s.users[id]
	delete(s.users, id)
	return ok, nil
}

type stubTrainerService struct {
	trainers map[int64]*domain.Trainer
	nextID   int64
}

func (s *stubTrainerService) ListTrainers(context.Context) ([]*domain.Trainer, error) {
	out := make([]*domain.Trainer, 0, len(s.trainers))
	for _, t := range s.trainers {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTrainerService) GetTrainer(_ context.Context, id int64) (*domain.Trainer, error) {
	if t, ok := s.trainers[id]; ok {
		return t, nil
	}
	return nil, domain.NotFound(domain.KindTrainer, id)
}

func (s *stubTrainerService) CreateTrainer(_ context.Context, in ports.TrainerInput) (*domain.Trainer, error) {
	s.nextID++
	t := &domain.Trainer{ID: s.nextID, Name: in.Name, Specialization: in.Specialization}
	s.trainers[t.ID] = t
	return t, nil
}

func (s *stubTrainerService) UpdateTrainer(_ context.Context, id int64, in ports.TrainerInput) (*domain.Trainer, error) {
	t, ok := s.trainers[id]
	if !ok {
		return nil, domain.NotFound(domain.KindTrainer, id)
	}
	t.Name, t.Specialization = in.Name, in.Specialization
	return t, nil
}

func (s *stubTrainerService) DeleteTrainer(_ context.Context, id int64) (bool, error) {
	_, ok := s.trainers[id]
	delete(s.trainers, id)
	return ok, nil
}

type stubSessionService struct {
	lastList   ports.ListSessionsInput
	lastCreate ports.SessionInput
	createErr  error
}

func (s *stubSessionService) ListSessions(_ context.Context, in ports.ListSessionsInput) ([]*domain.TrainingSession, error) {
	s.lastList = in
	return nil, nil
}

func (s *stubSessionService) GetSession(_ context.Context, id int64) (*domain.TrainingSession, error) {
	return nil, domain.NotFound(domain.KindSession, id)
}

func (s *stubSessionService) CreateSession(_ context.Context, in ports.SessionInput) (*domain.TrainingSession, error) {
	s.lastCreate = in
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.TrainingSession{ID: 1, Title: in.Title, StartTime: in.StartTime, EndTime: in.EndTime, TrainerID: in.TrainerID}, nil
}

func (s *stubSessionService) UpdateSession(_ context.Context, id int64, _ ports.SessionInput) (*domain.TrainingSession, error) {
	return nil, domain.NotFound(domain.KindSession, id)
}

func (s *stubSessionService) DeleteSession(context.Context, int64) (bool, error) {
	return false, nil
}

type stubReservationService struct {
	createFn   func(in ports.CreateReservationInput) (*ports.ReservationResult, error)
	lastCreate ports.CreateReservationInput
	lastList   ports.ListReservationsInput
	existing   map[int64]*domain.Reservation
}

func (s *stubReservationService) CreateReservation(_ context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, error) {
	s.lastCreate = in
	return s.createFn(in)
}

func (s *stubReservationService) ListReservations(_ context.Context, in ports.ListReservationsInput) ([]*domain.Reservation, error) {
	s.lastList = in
	return nil, nil
}

func (s *stubReservationService) GetReservation(_ context.Context, id int64) (*domain.Reservation, error) {
	if r, ok := s.existing[id]; ok {
		return r, nil
	}
	return nil, domain.NotFound(domain.KindReservation, id)
}

func (s *stubReservationService) CancelReservation(_ context.Context, id int64) (bool, error) {
	_, ok := s.existing[id]
	delete(s.existing, id)
	return ok, nil
}

type stubAuditService struct {
	lastFilter ports.AuditFilter
	events     []*domain.ReservationEvent
}

func (s *stubAuditService) ListEvents(_ context.Context, f ports.AuditFilter) ([]*domain.ReservationEvent, error) {
	s.lastFilter = f
	return s.events, nil
}
