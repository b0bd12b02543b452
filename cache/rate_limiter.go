package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter
type RateLimiter struct {
	client redis.Cmdable
}

// NewRateLimiter creates a rate limiter on top of a Redis client
func NewRateLimiter(client redis.Cmdable) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow counts a hit for key and reports whether it is within limit for the current window.
// The second return value is the time until the window resets.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf(keyRateLimit, key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	retryAfter, err := r.client.PTTL(ctx, redisKey).Result()
	if err != nil || retryAfter < 0 {
		retryAfter = window
	}

	return count <= int64(limit), retryAfter, nil
}
