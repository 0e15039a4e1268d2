package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the closed set of club roles. It drives both endpoint
// authorization and discount policy selection.
type Role string

const (
	RoleUser    Role = "USER"
	RoleTrainer Role = "TRAINER"
	RoleAdmin   Role = "ADMIN"
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleUser, RoleTrainer, RoleAdmin}

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ParseRole accepts any casing of a known role name.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// PolicyKey is the legacy string key of the discount policy for this role,
// e.g. USER -> "userDiscount". Used for logs and metric labels.
func (r Role) PolicyKey() string {
	return strings.ToLower(string(r)) + "Discount"
}

// User is a club member or staff account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
