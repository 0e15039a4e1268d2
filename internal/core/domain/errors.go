package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// Entity kinds carried by NotFoundError.
const (
	KindUser        = "user"
	KindTrainer     = "trainer"
	KindSession     = "session"
	KindReservation = "reservation"
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

// NotFound builds a *NotFoundError for the given entity kind and id.
func NotFound(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFoundKind reports whether err is a NotFoundError for kind.
func IsNotFoundKind(err error, kind string) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}
