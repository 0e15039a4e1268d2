package ports

import (
	"context"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// ReservationEventPublisher hands events to the async pipeline. Publish must
// not block the request path.
type ReservationEventPublisher interface {
	Publish(event domain.ReservationEvent)
}

// ReservationEventSink consumes events off the pipeline (audit store, broker).
type ReservationEventSink interface {
	Name() string
	Handle(ctx context.Context, event domain.ReservationEvent) error
}

// IdempotentReservation is what the idempotency store keeps per key. UserID
// and SessionID bind the key to the request that first used it.
type IdempotentReservation struct {
	ReservationID       int64  `json:"reservation_id"`
	UserID              int64  `json:"user_id"`
	SessionID           int64  `json:"session_id"`
	DiscountBasisPoints int64  `json:"discount_basis_points"`
	Policy              string `json:"policy"`
}

// IdempotencyStore remembers which reservation an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (*IdempotentReservation, bool, error)
	Remember(ctx context.Context, key string, rec IdempotentReservation) error
}

// AuditFilter narrows the audit listing. Zero values mean no filter.
type AuditFilter struct {
	ReservationID int64
	UserID        int64
	Since         time.Time
	Limit         int
}

// AuditRepository stores reservation events for later inspection.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.ReservationEvent) error
	List(ctx context.Context, filter AuditFilter) ([]*domain.ReservationEvent, error)
}

type AuditService interface {
	ListEvents(ctx context.Context, filter AuditFilter) ([]*domain.ReservationEvent, error)
}
