package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/core/discount"
	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type reservationFixture struct {
	users        *stubUserRepo
	sessions     *stubSessionRepo
	reservations *stubReservationRepo
	events       *recordingPublisher
}

func newReservationFixture() *reservationFixture {
	start := time.Date(2026, time.December, 3, 18, 0, 0, 0, time.UTC)
	return &reservationFixture{
		users: newStubUserRepo(
			&domain.User{ID: 1, Username: "member", Role: domain.RoleUser},
			&domain.User{ID: 2, Username: "coach", Role: domain.RoleTrainer},
			&domain.User{ID: 3, Username: "boss", Role: domain.RoleAdmin},
		),
		sessions: newStubSessionRepo(
			&domain.TrainingSession{ID: 10, Title: "Spinning", StartTime: start, EndTime: start.Add(time.Hour), TrainerID: 1},
		),
		reservations: newStubReservationRepo(),
		events:       &recordingPublisher{},
	}
}

func (f *reservationFixture) service(reg *discount.Registry, opts ...ReservationOption) *ReservationService {
	opts = append([]ReservationOption{WithEventPublisher(f.events)}, opts...)
	return NewReservationService(f.users, f.sessions, f.reservations, reg, zerolog.Nop(), opts...)
}

type countingPolicy struct {
	rate  discount.Rate
	calls int
}

func (p *countingPolicy) Name() string { return "fixed" }

func (p *countingPolicy) Rate(*domain.TrainingSession, *domain.User) discount.Rate {
	p.calls++
	return p.rate
}

// ---------------------------------------------------------------------------
// CreateReservation
// ---------------------------------------------------------------------------

func TestReservationService_Create_Success(t *testing.T) {
	f := newReservationFixture()
	svc := f.service(discount.Default())

	before := time.Now().UTC()
	res, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10})
	after := time.Now().UTC()

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	r := res.Reservation
	if r.ID == 0 {
		t.Errorf("expected store-assigned id")
	}
	if r.UserID != 1 || r.SessionID != 10 {
		t.Errorf("unexpected references: user=%d session=%d", r.UserID, r.SessionID)
	}
	if r.ReservationTime.Before(before) || r.ReservationTime.After(after) {
		t.Errorf("reservation time %v not within [%v, %v]", r.ReservationTime, before, after)
	}
	if res.Discount != discount.Zero || res.Policy != string(discount.KindNone) {
		t.Errorf("expected noDiscount fallback, got %s via %s", res.Discount, res.Policy)
	}
	if f.reservations.createCalls != 1 {
		t.Errorf("expected exactly one insert, got %d", f.reservations.createCalls)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != domain.ReservationCreated {
		t.Errorf("expected one created event, got %+v", f.events.events)
	}
}

func TestReservationService_Create_UsesServerClock(t *testing.T) {
	f := newReservationFixture()
	fixed := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	svc := f.service(discount.Default(), WithClock(func() time.Time { return fixed }))

	res, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Reservation.ReservationTime.Equal(fixed) {
		t.Fatalf("expected %v, got %v", fixed, res.Reservation.ReservationTime)
	}
}

func TestReservationService_Create_UserNotFound_SkipsSessionLookup(t *testing.T) {
	f := newReservationFixture()
	svc := f.service(discount.Default())

	_, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 99, SessionID: 10})

	if !domain.IsNotFoundKind(err, domain.KindUser) {
		t.Fatalf("expected user NotFound, got: %v", err)
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 99 {
		t.Fatalf("expected NotFound(user, 99), got: %v", err)
	}
	if f.sessions.findCalls != 0 {
		t.Errorf("session store queried %d times after user miss", f.sessions.findCalls)
	}
	if f.reservations.createCalls != 0 {
		t.Errorf("expected no insert")
	}
}

func TestReservationService_Create_SessionNotFound(t *testing.T) {
	f := newReservationFixture()
	svc := f.service(discount.Default())

	_, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 404})

	if !domain.IsNotFoundKind(err, domain.KindSession) {
		t.Fatalf("expected session NotFound, got: %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	if f.reservations.createCalls != 0 {
		t.Errorf("expected no insert")
	}
	if len(f.events.events) != 0 {
		t.Errorf("expected no events on failure")
	}
}

func TestReservationService_Create_RoleEntryPolicyInvokedOnce(t *testing.T) {
	f := newReservationFixture()
	p := &countingPolicy{rate: 3000}
	reg, err := discount.NewRegistry(discount.NoDiscount{}, map[domain.Role]discount.Policy{domain.RoleUser: p})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	svc := f.service(reg)

	res, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Discount.Float() != 0.30 {
		t.Errorf("expected 0.30, got %v", res.Discount.Float())
	}
	if p.calls != 1 {
		t.Errorf("expected policy invoked once, got %d", p.calls)
	}
}

func TestReservationService_Create_ClampsOutOfRangeRate(t *testing.T) {
	cases := map[discount.Rate]discount.Rate{
		discount.Full + 2000: discount.Full,
		-500:                 discount.Zero,
	}
	for raw, want := range cases {
		f := newReservationFixture()
		reg, err := discount.NewRegistry(discount.NoDiscount{}, map[domain.Role]discount.Policy{domain.RoleUser: &countingPolicy{rate: raw}})
		if err != nil {
			t.Fatalf("registry: %v", err)
		}

		res, err := f.service(reg).CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Discount != want {
			t.Errorf("rate %d: expected %s, got %s", raw, want, res.Discount)
		}
		if got := f.events.events[0].DiscountBasisPoints; got != int64(want) {
			t.Errorf("rate %d: event carries %d", raw, got)
		}
	}
}

func TestReservationService_Create_AdminFallsBackToNoDiscount(t *testing.T) {
	f := newReservationFixture()
	reg, err := discount.NewRegistry(discount.NoDiscount{}, nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	svc := f.service(reg)

	res, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 3, SessionID: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Discount != discount.Zero || res.Policy != string(discount.KindNone) {
		t.Fatalf("expected noDiscount, got %s via %s", res.Discount, res.Policy)
	}
}

func TestReservationService_Create_WiredPolicies(t *testing.T) {
	f := newReservationFixture()
	reg, err := discount.FromConfig(map[string]string{"USER": "seasonal", "TRAINER": "vip"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	svc := f.service(reg)

	// the fixture session starts in December
	member, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10})
	if err != nil {
		t.Fatalf("member: %v", err)
	}
	if member.Discount != 1500 {
		t.Errorf("member: expected 0.15, got %s", member.Discount)
	}

	coach, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 2, SessionID: 10})
	if err != nil {
		t.Fatalf("coach: %v", err)
	}
	if coach.Discount != 2000 {
		t.Errorf("coach: expected 0.20, got %s", coach.Discount)
	}

	if got := f.events.events[1].DiscountBasisPoints; got != 2000 {
		t.Errorf("event discount: expected 2000, got %d", got)
	}
}

func TestReservationService_Create_StoreErrorPropagatesUnchanged(t *testing.T) {
	f := newReservationFixture()
	storeErr := errors.New("connection refused")
	f.reservations.createErr = storeErr
	svc := f.service(discount.Default())

	_, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10})
	if err != storeErr {
		t.Fatalf("expected the store error unchanged, got: %v", err)
	}
	if len(f.events.events) != 0 {
		t.Errorf("expected no events on failure")
	}
}

func TestReservationService_Create_Duplicate(t *testing.T) {
	f := newReservationFixture()
	svc := f.service(discount.Default())
	ctx := context.Background()

	if _, err := svc.CreateReservation(ctx, ports.CreateReservationInput{UserID: 1, SessionID: 10}); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := svc.CreateReservation(ctx, ports.CreateReservationInput{UserID: 1, SessionID: 10})
	if !errors.Is(err, domain.ErrReservationExists) {
		t.Fatalf("expected ErrReservationExists, got %v", err)
	}
}

func TestReservationService_Create_IdempotentReplay(t *testing.T) {
	f := newReservationFixture()
	store := newStubIdempotencyStore()
	reg, _ := discount.FromConfig(map[string]string{"USER": "vip"})
	svc := f.service(reg, WithIdempotencyStore(store))
	ctx := context.Background()
	in := ports.CreateReservationInput{UserID: 1, SessionID: 10, IdempotencyKey: "key-1"}

	first, err := svc.CreateReservation(ctx, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.CreateReservation(ctx, in)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if !second.Replayed {
		t.Errorf("expected replayed result")
	}
	if second.Reservation.ID != first.Reservation.ID {
		t.Errorf("expected same reservation, got %d and %d", first.Reservation.ID, second.Reservation.ID)
	}
	if second.Discount != 1000 {
		t.Errorf("expected replayed discount 0.10, got %s", second.Discount)
	}
	if f.reservations.createCalls != 1 {
		t.Errorf("expected one insert, got %d", f.reservations.createCalls)
	}
}

func TestReservationService_Create_IdempotencyKeyReused(t *testing.T) {
	f := newReservationFixture()
	start := time.Date(2026, time.March, 3, 18, 0, 0, 0, time.UTC)
	f.sessions.byID[11] = &domain.TrainingSession{ID: 11, Title: "Yoga", StartTime: start, EndTime: start.Add(time.Hour), TrainerID: 1}
	store := newStubIdempotencyStore()
	svc := f.service(discount.Default(), WithIdempotencyStore(store))
	ctx := context.Background()

	if _, err := svc.CreateReservation(ctx, ports.CreateReservationInput{UserID: 1, SessionID: 10, IdempotencyKey: "k"}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if rec := store.records["k"]; rec.UserID != 1 || rec.SessionID != 10 {
		t.Fatalf("expected key bound to user 1 session 10, got %+v", rec)
	}

	cases := []ports.CreateReservationInput{
		{UserID: 1, SessionID: 11, IdempotencyKey: "k"},
		{UserID: 2, SessionID: 10, IdempotencyKey: "k"},
	}
	for _, in := range cases {
		res, err := svc.CreateReservation(ctx, in)
		if !errors.Is(err, ErrIdempotencyKeyReused) {
			t.Fatalf("user %d session %d: expected ErrIdempotencyKeyReused, got res=%+v err=%v", in.UserID, in.SessionID, res, err)
		}
	}
	if f.reservations.createCalls != 1 {
		t.Errorf("expected one insert, got %d", f.reservations.createCalls)
	}
	if f.users.findCalls != 1 {
		t.Errorf("rejected requests must not reach the pipeline, got %d user lookups", f.users.findCalls)
	}
}

func TestReservationService_Create_IdempotencyStoreDown(t *testing.T) {
	f := newReservationFixture()
	store := newStubIdempotencyStore()
	store.lookupErr = errors.New("redis down")
	svc := f.service(discount.Default(), WithIdempotencyStore(store))

	res, err := svc.CreateReservation(context.Background(), ports.CreateReservationInput{UserID: 1, SessionID: 10, IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("expected create to proceed, got: %v", err)
	}
	if res.Replayed {
		t.Errorf("expected fresh reservation")
	}
}

// ---------------------------------------------------------------------------
// List / Get / Cancel
// ---------------------------------------------------------------------------

func TestReservationService_List_Filters(t *testing.T) {
	f := newReservationFixture()
	f.reservations = newStubReservationRepo(
		&domain.Reservation{ID: 1, UserID: 1, SessionID: 10},
		&domain.Reservation{ID: 2, UserID: 2, SessionID: 10},
		&domain.Reservation{ID: 3, UserID: 1, SessionID: 11},
	)
	svc := f.service(discount.Default())
	ctx := context.Background()

	all, _ := svc.ListReservations(ctx, ports.ListReservationsInput{})
	byUser, _ := svc.ListReservations(ctx, ports.ListReservationsInput{UserID: 1})
	bySession, _ := svc.ListReservations(ctx, ports.ListReservationsInput{SessionID: 10})
	both, _ := svc.ListReservations(ctx, ports.ListReservationsInput{UserID: 2, SessionID: 11})

	if len(all) != 3 {
		t.Errorf("all: expected 3, got %d", len(all))
	}
	if len(byUser) != 2 {
		t.Errorf("by user: expected 2, got %d", len(byUser))
	}
	if len(bySession) != 2 {
		t.Errorf("by session: expected 2, got %d", len(bySession))
	}
	if len(both) != 1 || both[0].ID != 2 {
		t.Errorf("user filter should win, got %+v", both)
	}
}

func TestReservationService_Cancel_Existing(t *testing.T) {
	f := newReservationFixture()
	f.reservations = newStubReservationRepo(&domain.Reservation{ID: 5, UserID: 1, SessionID: 10})
	svc := f.service(discount.Default())

	removed, err := svc.CancelReservation(context.Background(), 5)
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v, %v", removed, err)
	}
	if _, err := svc.GetReservation(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected reservation gone, got %v", err)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != domain.ReservationCancelled {
		t.Errorf("expected one cancelled event, got %+v", f.events.events)
	}
}

func TestReservationService_Cancel_Missing_NoMutation(t *testing.T) {
	f := newReservationFixture()
	svc := f.service(discount.Default())

	removed, err := svc.CancelReservation(context.Background(), 12345)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed {
		t.Errorf("expected false for missing reservation")
	}
	if f.reservations.deleteCalls != 0 {
		t.Errorf("expected no delete attempted, got %d", f.reservations.deleteCalls)
	}
	if len(f.events.events) != 0 {
		t.Errorf("expected no events")
	}
}
