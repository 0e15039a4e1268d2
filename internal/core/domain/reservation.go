package domain

import (
	"errors"
	"time"
)

var ErrReservationExists = errors.New("reservation already exists for this user and session")

// Reservation binds one user to one training session. ReservationTime is
// always stamped by the server.
type Reservation struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	SessionID       int64     `json:"session_id"`
	ReservationTime time.Time `json:"reservation_time"`
}

// ReservationEventType names a reservation lifecycle transition.
type ReservationEventType string

const (
	ReservationCreated   ReservationEventType = "reservation.created"
	ReservationCancelled ReservationEventType = "reservation.cancelled"
)

// ReservationEvent is emitted after a reservation is created or cancelled.
// DiscountBasisPoints is the discount computed at creation (0 on cancel).
type ReservationEvent struct {
	ID                  string               `json:"id" bson:"event_id"`
	Type                ReservationEventType `json:"type" bson:"type"`
	ReservationID       int64                `json:"reservation_id" bson:"reservation_id"`
	UserID              int64                `json:"user_id" bson:"user_id"`
	SessionID           int64                `json:"session_id" bson:"session_id"`
	Role                Role                 `json:"role,omitempty" bson:"role,omitempty"`
	Policy              string               `json:"policy,omitempty" bson:"policy,omitempty"`
	DiscountBasisPoints int64                `json:"discount_basis_points" bson:"discount_basis_points"`
	OccurredAt          time.Time            `json:"occurred_at" bson:"occurred_at"`
}
