package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	ctx := context.Background()
	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, cont)
	require.NoError(t, err)

	endpoint, err := cont.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedis(t *testing.T) {
	t.Parallel()
	addr := startRedis(t)
	ctx := context.Background()

	t.Run("excludes a second holder", func(t *testing.T) {
		first := NewRedis(RedisConfig{Addr: addr, Key: "test:exclusive", TTL: time.Minute})
		second := NewRedis(RedisConfig{Addr: addr, Key: "test:exclusive", TTL: time.Minute})
		t.Cleanup(func() {
			_ = first.Close()
			_ = second.Close()
		})

		ok, err := first.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = second.TryAcquire(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, second.Release(ctx), ErrNotHeld)
		require.NoError(t, first.Release(ctx))

		ok, err = second.TryAcquire(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, second.Release(ctx))
	})

	t.Run("expired lock cannot be released by its old holder", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		t.Cleanup(func() { _ = rdb.Close() })

		stale := NewRedisWithClient(rdb, "test:expiry", 500*time.Millisecond)
		fresh := NewRedisWithClient(rdb, "test:expiry", time.Minute)

		ok, err := stale.TryAcquire(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		require.Eventually(t, func() bool {
			ok, err := fresh.TryAcquire(ctx)
			return err == nil && ok
		}, 5*time.Second, 100*time.Millisecond)

		assert.ErrorIs(t, stale.Release(ctx), ErrNotHeld)

		value, err := rdb.Get(ctx, "test:expiry").Result()
		require.NoError(t, err)
		assert.NotEmpty(t, value, "fresh holder keeps the key")
		require.NoError(t, fresh.Release(ctx))

		// Close does not close a borrowed client
		require.NoError(t, fresh.Close())
		require.NoError(t, rdb.Ping(ctx).Err())
	})
}
