package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const keyPrefix = "ratelimit"

// RateLimitStore is a fixed-window echo RateLimiterStore shared by every
// instance through Redis. When Redis errors, requests are counted by an
// in-process token bucket instead.
type RateLimitStore struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	fallback middleware.RateLimiterStore
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRateLimitStore allows limit requests per window for each identifier.
func NewRateLimitStore(client *redis.Client, limit int, window time.Duration, logger zerolog.Logger) *RateLimitStore {
	return &RateLimitStore{
		client:   client,
		limit:    limit,
		window:   window,
		fallback: NewMemoryRateLimitStore(limit, window),
		logger:   logger,
		now:      time.Now,
	}
}

// NewMemoryRateLimitStore is the single-instance store used without Redis.
func NewMemoryRateLimitStore(limit int, window time.Duration) middleware.RateLimiterStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window * 3,
	})
}

// Allow implements middleware.RateLimiterStore.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	key := s.key(identifier)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limit store unavailable, using in-memory limiter")
		return s.fallback.Allow(identifier)
	}
	return incr.Val() <= int64(s.limit), nil
}

// key buckets identifier into the current window.
func (s *RateLimitStore) key(identifier string) string {
	window := s.now().UnixNano() / int64(s.window)
	return fmt.Sprintf("%s:%s:%d", keyPrefix, identifier, window)
}
