package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithLabels(map[string]string{"test": "clanwallet-cache"}),
	)
	require.NoError(t, err, "failed to start redis container")

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(connStr)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestCooldownStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	store := NewCooldownStore(setupRedis(t))

	remaining, err := store.Remaining(ctx, "redeem:user-1")
	require.NoError(t, err)
	assert.Zero(t, remaining, "no cooldown before the first start")

	require.NoError(t, store.Start(ctx, "redeem:user-1", 10*time.Minute))

	remaining, err = store.Remaining(ctx, "redeem:user-1")
	require.NoError(t, err)
	assert.Greater(t, remaining, 9*time.Minute)
	assert.LessOrEqual(t, remaining, 10*time.Minute)

	other, err := store.Remaining(ctx, "redeem:user-2")
	require.NoError(t, err)
	assert.Zero(t, other, "cooldowns are per key")

	require.NoError(t, store.Start(ctx, "redeem:user-3", 0))
	none, err := store.Remaining(ctx, "redeem:user-3")
	require.NoError(t, err)
	assert.Zero(t, none, "zero ttl does not start a cooldown")
}

func TestCooldownStore_Expires(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	store := NewCooldownStore(setupRedis(t))

	require.NoError(t, store.Start(ctx, "redeem:user-1", 200*time.Millisecond))

	assert.Eventually(t, func() bool {
		remaining, err := store.Remaining(ctx, "redeem:user-1")
		return err == nil && remaining == 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRateLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	limiter := NewRateLimiter(setupRedis(t))

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "user-1:/transfer-funds", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "hit %d should be allowed", i+1)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "user-1:/transfer-funds", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)

	allowed, _, err = limiter.Allow(ctx, "user-2:/transfer-funds", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per key")
}
