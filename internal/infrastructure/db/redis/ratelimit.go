package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills refill tokens every interval up to capacity and takes
// one token per call. Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
  tokens = capacity
  last = now_ms
end

if interval_ms > 0 and refill > 0 then
  local steps = math.floor(math.max(0, now_ms - last) / interval_ms)
  if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    last = last + steps * interval_ms
  end
end

local allowed = 0
local retry_ms = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.max(0, interval_ms - (now_ms - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, retry_ms}
`)

// RateLimitConfig describes one token bucket per key.
type RateLimitConfig struct {
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	Prefix         string
}

// RateDecision is the outcome of a single Allow call.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter is a distributed token bucket evaluated atomically in Redis.
type RateLimiter struct {
	client *redis.Client
	cfg    RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return &RateLimiter{client: client, cfg: cfg, now: time.Now}
}

// Allow takes a token from the bucket identified by key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	// idle buckets expire once they would be full again
	ttl := int64((time.Duration(l.cfg.Capacity/l.cfg.RefillTokens+1) * l.cfg.RefillInterval) / time.Second)
	if ttl < 1 {
		ttl = 1
	}

	vals, err := tokenBucket.Run(ctx, l.client, []string{l.cfg.Prefix + ":" + key},
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		ttl,
	).Int64Slice()
	if err != nil {
		return RateDecision{}, fmt.Errorf("rate limit: %w", err)
	}
	if len(vals) != 3 {
		return RateDecision{}, fmt.Errorf("rate limit: unexpected script result %v", vals)
	}

	return RateDecision{
		Allowed:    vals[0] == 1,
		Limit:      l.cfg.Capacity,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds for the header.
func (d RateDecision) RetryAfterSeconds() string {
	secs := (d.RetryAfter + time.Second - 1) / time.Second
	return strconv.FormatInt(int64(secs), 10)
}
