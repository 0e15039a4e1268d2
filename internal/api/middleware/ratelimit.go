package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/klubfitness/fitness-club/internal/api/metrics"
	redisstore "github.com/klubfitness/fitness-club/internal/infrastructure/db/redis"
)

// RateLimiter takes one token from the bucket named key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (redisstore.RateDecision, error)
}

// RateLimit applies a token bucket per caller and route. Authenticated
// callers are keyed by user id, anonymous ones by client IP. Limiter
// failures let the request through.
func RateLimit(limiter RateLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	if limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Request().Method + " " + c.Path()
			key := rateKey(c) + ":" + route

			d, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

			if !d.Allowed {
				metrics.RateLimitedTotal.WithLabelValues(route).Inc()
				h.Set(echo.HeaderRetryAfter, d.RetryAfterSeconds())
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

func rateKey(c echo.Context) string {
	if id, ok := c.Get(ContextUserID).(int64); ok && id > 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
