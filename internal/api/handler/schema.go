package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// --- Users ---

type userRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"omitempty,min=4"`
	Role     string `json:"role"     validate:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// --- Trainers ---

type trainerRequest struct {
	Name           string `json:"name"           validate:"required,max=255"`
	Specialization string `json:"specialization" validate:"max=255"`
}

type trainerResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// --- Training sessions ---

type sessionRequest struct {
	Title       string    `json:"title"       validate:"required,max=255"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"   validate:"required"`
	EndTime     time.Time `json:"endTime"     validate:"required"`
	TrainerID   int64     `json:"trainerId"   validate:"required,gt=0"`
}

type sessionResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	TrainerID   int64     `json:"trainerId"`
}

// --- Reservations ---

type reservationRequest struct {
	UserID    int64 `json:"userId"    validate:"required,gt=0"`
	SessionID int64 `json:"sessionId" validate:"required,gt=0"`
}

type reservationResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	SessionID       int64     `json:"sessionId"`
	ReservationTime time.Time `json:"reservationTime"`
	// Discount is the rate (0..1) computed at creation; informational only.
	Discount *float64 `json:"discount,omitempty"`
	Policy   string   `json:"policy,omitempty"`
}

// --- Audit ---

type reservationEventResponse struct {
	ID                  string    `json:"id"`
	Type                string    `json:"type"`
	ReservationID       int64     `json:"reservationId"`
	UserID              int64     `json:"userId"`
	SessionID           int64     `json:"sessionId"`
	Role                string    `json:"role,omitempty"`
	Policy              string    `json:"policy,omitempty"`
	DiscountBasisPoints int64     `json:"discountBasisPoints"`
	OccurredAt          time.Time `json:"occurredAt"`
}
