package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/klubfitness/fitness-club/internal/core/ports"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps an Idempotency-Key to the reservation it produced.
// Key format: idem:reservation:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (*ports.IdempotentReservation, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	var rec ports.IdempotentReservation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("idempotency decode: %w", err)
	}
	return &rec, true, nil
}

// Remember stores rec only if the key is still free, so concurrent retries
// keep the first reservation.
func (s *IdempotencyStore) Remember(ctx context.Context, key string, rec ports.IdempotentReservation) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("idempotency encode: %w", err)
	}
	if err := s.client.SetNX(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idem:reservation:" + k
}
