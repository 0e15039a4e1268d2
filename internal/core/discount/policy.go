// Package discount holds the reservation discount policies and the registry
// that maps each role to exactly one of them.
//
// Rates are basis points so every value is an exact decimal fraction:
// 1500 is 0.15 and 10000 is 1.
package discount

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

// Rate is a discount fraction expressed in basis points, in [0, 10000].
type Rate int64

const (
	Zero Rate = 0
	Full Rate = 10000
)

// Float returns the rate as a fraction, e.g. 0.15.
func (r Rate) Float() float64 {
	return float64(r) / float64(Full)
}

// Valid reports whether r lies in [Zero, Full].
func (r Rate) Valid() bool {
	return r >= Zero && r <= Full
}

// Clamp pins r into [Zero, Full].
func (r Rate) Clamp() Rate {
	switch {
	case r < Zero:
		return Zero
	case r > Full:
		return Full
	}
	return r
}

// ParseRate reads a fraction such as "0.05" into basis points. Precision
// beyond four decimals is rounded.
func ParseRate(s string) (Rate, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, fmt.Errorf("%w: invalid rate %q", ErrRegistryMisconfiguration, s)
	}
	r := Rate(math.Round(f * float64(Full)))
	if !r.Valid() {
		return Zero, fmt.Errorf("%w: rate %q is outside [0, 1]", ErrRegistryMisconfiguration, s)
	}
	return r, nil
}

func (r Rate) String() string {
	return fmt.Sprintf("%d.%04d", int64(r)/int64(Full), int64(r)%int64(Full))
}

// Policy computes the discount for a user reserving a session. Implementations
// must be pure: deterministic and free of side effects.
type Policy interface {
	Name() string
	Rate(session *domain.TrainingSession, user *domain.User) Rate
}

// Kind is the closed set of built-in policies.
type Kind string

const (
	KindNone     Kind = "noDiscount"
	KindSeasonal Kind = "seasonalDiscount"
	KindVIP      Kind = "vipDiscount"
	KindFixed    Kind = "fixedDiscount"
)

const (
	seasonalRate   Rate = 1500
	vipStaffRate   Rate = 2000
	vipDefaultRate Rate = 1000
)

// ParseKind accepts either the full policy key ("vipDiscount") or its short
// form ("vip").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "none", "no", string(KindNone):
		return KindNone, nil
	case "seasonal", string(KindSeasonal):
		return KindSeasonal, nil
	case "vip", string(KindVIP):
		return KindVIP, nil
	}
	return "", fmt.Errorf("%w: unknown policy %q", ErrRegistryMisconfiguration, s)
}

// Policy returns the built-in implementation for k.
func (k Kind) Policy() (Policy, error) {
	switch k {
	case KindNone:
		return NoDiscount{}, nil
	case KindSeasonal:
		return SeasonalDiscount{}, nil
	case KindVIP:
		return VIPDiscount{}, nil
	}
	return nil, fmt.Errorf("%w: unknown policy %q", ErrRegistryMisconfiguration, string(k))
}

// NoDiscount always yields zero.
type NoDiscount struct{}

func (NoDiscount) Name() string { return string(KindNone) }

func (NoDiscount) Rate(*domain.TrainingSession, *domain.User) Rate { return Zero }

// SeasonalDiscount yields 15% for sessions starting in December or January.
// The month is read in Location, or UTC when Location is nil.
type SeasonalDiscount struct {
	Location *time.Location
}

func (SeasonalDiscount) Name() string { return string(KindSeasonal) }

func (p SeasonalDiscount) Rate(session *domain.TrainingSession, _ *domain.User) Rate {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	switch session.StartTime.In(loc).Month() {
	case time.December, time.January:
		return seasonalRate
	}
	return Zero
}

// VIPDiscount yields 20% for staff (admins and trainers) and 10% for members.
type VIPDiscount struct{}

func (VIPDiscount) Name() string { return string(KindVIP) }

func (VIPDiscount) Rate(_ *domain.TrainingSession, user *domain.User) Rate {
	switch user.Role {
	case domain.RoleAdmin, domain.RoleTrainer:
		return vipStaffRate
	}
	return vipDefaultRate
}

// Fixed is a constant-rate policy, configured as "fixed=0.05". Value must lie
// in [Zero, Full]; NewRegistry rejects anything else.
type Fixed struct {
	Label string
	Value Rate
}

func (f Fixed) Name() string { return f.Label }

func (f Fixed) Rate(*domain.TrainingSession, *domain.User) Rate { return f.Value }
