package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore keeps cooldown windows as expiring Redis keys
type CooldownStore struct {
	client redis.Cmdable
}

// NewCooldownStore creates a cooldown store on top of a Redis client
func NewCooldownStore(client redis.Cmdable) *CooldownStore {
	return &CooldownStore{client: client}
}

// Remaining returns how long the cooldown for key still runs, or 0 when there is none
func (s *CooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, fmt.Sprintf(keyCooldown, key)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown %s: %w", key, err)
	}
	// -2 means no key, -1 a key without expiry; neither is an active cooldown
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Start begins (or restarts) the cooldown for key
func (s *CooldownStore) Start(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, fmt.Sprintf(keyCooldown, key), time.Now().UTC().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to start cooldown %s: %w", key, err)
	}
	return nil
}
