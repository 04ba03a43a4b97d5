package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in a fixed window.
type RateLimiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, count int64, retryAfter time.Duration, err error)
}

// RateLimitService keeps its counters in redis so every instance shares them.
type RateLimitService struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRateLimitService(redis *redis.Client) *RateLimitService {
	return &RateLimitService{
		redis:     redis,
		keyPrefix: "ratelimit:",
	}
}

// CheckLimit increments key and reports whether it is still within limit.
// When over the limit, retryAfter is the remaining window.
func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, time.Duration, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.Expire(ctx, rKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, err
	}

	count := incr.Val()
	if count <= int64(limit) {
		return true, count, 0, nil
	}

	ttl, err := s.redis.TTL(ctx, rKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return false, count, ttl, nil
}
