package discount

import (
	"errors"
	"testing"
	"time"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

type countingPolicy struct {
	Fixed
	calls int
}

func (c *countingPolicy) Rate(s *domain.TrainingSession, u *domain.User) Rate {
	c.calls++
	return c.Fixed.Rate(s, u)
}

func TestRegistry_ExplicitRoleEntry(t *testing.T) {
	p := &countingPolicy{Fixed: Fixed{Label: "userDiscount", Value: 3000}}
	reg, err := NewRegistry(NoDiscount{}, map[domain.Role]Policy{domain.RoleUser: p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := reg.For(domain.RoleUser).Rate(sessionStarting(time.March), &domain.User{Role: domain.RoleUser})
	if got != 3000 {
		t.Fatalf("expected 0.30, got %s", got)
	}
	if p.calls != 1 {
		t.Fatalf("expected policy invoked once, got %d", p.calls)
	}
}

func TestRegistry_FallsBackWhenRoleMissing(t *testing.T) {
	reg, err := NewRegistry(NoDiscount{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := &domain.User{Role: domain.RoleAdmin}
	p := reg.For(domain.RoleAdmin)
	if p.Name() != string(KindNone) {
		t.Fatalf("expected fallback %s, got %s", KindNone, p.Name())
	}
	if got := p.Rate(sessionStarting(time.December), admin); got != Zero {
		t.Fatalf("expected 0, got %s", got)
	}
}

func TestNewRegistry_MissingFallback(t *testing.T) {
	_, err := NewRegistry(nil, map[domain.Role]Policy{domain.RoleAdmin: VIPDiscount{}})
	if !errors.Is(err, ErrRegistryMisconfiguration) {
		t.Fatalf("expected ErrRegistryMisconfiguration, got %v", err)
	}
}

func TestNewRegistry_RejectsUnknownRoleAndNilPolicy(t *testing.T) {
	_, err := NewRegistry(NoDiscount{}, map[domain.Role]Policy{
		domain.Role("GUEST"): VIPDiscount{},
		domain.RoleTrainer:   nil,
	})
	if !errors.Is(err, ErrRegistryMisconfiguration) {
		t.Fatalf("expected ErrRegistryMisconfiguration, got %v", err)
	}
}

func TestNewRegistry_RejectsOutOfRangeFixed(t *testing.T) {
	_, err := NewRegistry(NoDiscount{}, map[domain.Role]Policy{
		domain.RoleUser:    Fixed{Label: "tooGenerous", Value: Full + 1},
		domain.RoleTrainer: Fixed{Label: "surcharge", Value: -500},
	})
	if !errors.Is(err, ErrRegistryMisconfiguration) {
		t.Fatalf("expected ErrRegistryMisconfiguration, got %v", err)
	}

	if _, err := NewRegistry(NoDiscount{}, map[domain.Role]Policy{domain.RoleAdmin: Fixed{Label: "free", Value: Full}}); err != nil {
		t.Fatalf("a full rate is in range: %v", err)
	}
}

func TestFromConfig_FixedRate(t *testing.T) {
	reg, err := FromConfig(map[string]string{"USER": "fixed=0.05"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := reg.For(domain.RoleUser)
	if p.Name() != string(KindFixed) {
		t.Fatalf("expected %s, got %s", KindFixed, p.Name())
	}
	if got := p.Rate(sessionStarting(time.June), &domain.User{Role: domain.RoleUser}); got != 500 {
		t.Fatalf("expected 0.05, got %s", got)
	}

	_, err = FromConfig(map[string]string{"USER": "fixed=1.5", "ADMIN": "fixed=abc"})
	if !errors.Is(err, ErrRegistryMisconfiguration) {
		t.Fatalf("expected ErrRegistryMisconfiguration, got %v", err)
	}
}

func TestFromConfig_SeasonalLocation(t *testing.T) {
	plusOne := time.FixedZone("UTC+1", 3600)
	reg, err := FromConfig(map[string]string{"USER": "seasonal"}, WithLocation(plusOne))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 23:30 UTC on 30 Nov is 1 Dec at +01:00
	s := &domain.TrainingSession{StartTime: time.Date(2026, time.November, 30, 23, 30, 0, 0, time.UTC)}
	if got := reg.For(domain.RoleUser).Rate(s, &domain.User{Role: domain.RoleUser}); got != 1500 {
		t.Fatalf("expected 0.15, got %s", got)
	}
}

func TestFromConfig_Routes(t *testing.T) {
	reg, err := FromConfig(map[string]string{
		"trainer": "vip",
		"ADMIN":   "vipDiscount",
		"User":    "seasonal",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	routes := reg.Routes()
	want := map[string]string{
		"USER":    string(KindSeasonal),
		"TRAINER": string(KindVIP),
		"ADMIN":   string(KindVIP),
	}
	for role, name := range want {
		if routes[role] != name {
			t.Errorf("role %s: expected %s, got %s", role, name, routes[role])
		}
	}
}

func TestFromConfig_EmptyUsesNoDiscountEverywhere(t *testing.T) {
	reg, err := FromConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for role, name := range reg.Routes() {
		if name != string(KindNone) {
			t.Errorf("role %s: expected %s, got %s", role, KindNone, name)
		}
	}
}

func TestFromConfig_Misconfigured(t *testing.T) {
	_, err := FromConfig(map[string]string{"GUEST": "vip", "USER": "halfPrice"})
	if !errors.Is(err, ErrRegistryMisconfiguration) {
		t.Fatalf("expected ErrRegistryMisconfiguration, got %v", err)
	}
}

func TestDefault_MatchesFallbackOnly(t *testing.T) {
	reg := Default()
	for _, role := range domain.Roles {
		if reg.For(role).Name() != string(KindNone) {
			t.Errorf("role %s: expected %s", role, KindNone)
		}
	}
}
