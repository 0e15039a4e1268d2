package discount

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

var ErrRegistryMisconfiguration = errors.New("discount registry misconfigured")

// Registry maps every role to exactly one policy. It is immutable once built.
type Registry struct {
	byRole   map[domain.Role]Policy
	fallback Policy
}

// NewRegistry validates the table and returns a Registry. Roles missing from
// byRole resolve to fallback. All problems are reported together.
func NewRegistry(fallback Policy, byRole map[domain.Role]Policy) (*Registry, error) {
	var err error
	if fallback == nil {
		err = multierr.Append(err, fmt.Errorf("%w: fallback %s is not registered", ErrRegistryMisconfiguration, KindNone))
	}

	table := make(map[domain.Role]Policy, len(byRole))
	for role, p := range byRole {
		if !role.Valid() {
			err = multierr.Append(err, fmt.Errorf("%w: unknown role %q", ErrRegistryMisconfiguration, string(role)))
			continue
		}
		if p == nil {
			err = multierr.Append(err, fmt.Errorf("%w: nil policy for role %s", ErrRegistryMisconfiguration, role))
			continue
		}
		if f, ok := p.(Fixed); ok && !f.Value.Valid() {
			err = multierr.Append(err, fmt.Errorf("%w: rate %s for role %s is outside [0, 1]", ErrRegistryMisconfiguration, f.Value, role))
			continue
		}
		table[role] = p
	}
	if err != nil {
		return nil, err
	}

	return &Registry{byRole: table, fallback: fallback}, nil
}

// Option tunes the policies FromConfig builds.
type Option func(*options)

type options struct {
	location *time.Location
}

// WithLocation sets the time zone seasonal policies read the start month in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.location = loc }
}

// FromConfig builds a registry from role name -> policy pairs, with
// noDiscount as the fallback. Role names are case-insensitive. A policy is a
// kind ("vip") or a constant rate ("fixed=0.05").
func FromConfig(routes map[string]string, opts ...Option) (*Registry, error) {
	o := options{location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	byRole := make(map[domain.Role]Policy, len(routes))
	var err error

	// sorted so aggregated errors are stable
	keys := make([]string, 0, len(routes))
	for k := range routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		role, rerr := domain.ParseRole(name)
		if rerr != nil {
			err = multierr.Append(err, fmt.Errorf("%w: unknown role %q", ErrRegistryMisconfiguration, name))
			continue
		}
		p, perr := parsePolicy(strings.TrimSpace(routes[name]), o)
		if perr != nil {
			err = multierr.Append(err, perr)
			continue
		}
		byRole[role] = p
	}
	if err != nil {
		return nil, err
	}

	return NewRegistry(NoDiscount{}, byRole)
}

func parsePolicy(spec string, o options) (Policy, error) {
	if value, ok := strings.CutPrefix(spec, "fixed="); ok {
		rate, err := ParseRate(value)
		if err != nil {
			return nil, err
		}
		return Fixed{Label: string(KindFixed), Value: rate}, nil
	}

	kind, err := ParseKind(spec)
	if err != nil {
		return nil, err
	}
	if kind == KindSeasonal {
		return SeasonalDiscount{Location: o.location}, nil
	}
	return kind.Policy()
}

// Default wires every role to noDiscount.
func Default() *Registry {
	return &Registry{byRole: map[domain.Role]Policy{}, fallback: NoDiscount{}}
}

// For returns the policy that applies to role.
func (r *Registry) For(role domain.Role) Policy {
	if p, ok := r.byRole[role]; ok {
		return p
	}
	return r.fallback
}

// Routes describes the effective role -> policy table, for startup logs.
func (r *Registry) Routes() map[string]string {
	out := make(map[string]string, len(domain.Roles))
	for _, role := range domain.Roles {
		out[string(role)] = r.For(role).Name()
	}
	return out
}
