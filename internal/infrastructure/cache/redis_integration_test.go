//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisStores(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("idempotency store accepts once", func(t *testing.T) {
		store := NewRedisIdempotencyStore(client, "test:webhook:")

		isNew, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "evt-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, isNew)

		require.NoError(t, store.Release(ctx, "evt-1"))
		processed, err := store.IsProcessed(ctx, "evt-1")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("merchant lock is exclusive and token checked", func(t *testing.T) {
		lock := NewRedisMerchantLock(client, zap.NewNop())
		merchantID := uuid.New()

		release, err := lock.Acquire(ctx, merchantID, time.Minute)
		require.NoError(t, err)

		_, err = lock.Acquire(ctx, merchantID, time.Minute)
		assert.ErrorIs(t, err, shared.ErrSyncInProgress)

		require.NoError(t, client.Set(ctx, DefaultLockKeyPrefix+merchantID.String(), "someone-else", time.Minute).Err())
		release()
		held, err := client.Get(ctx, DefaultLockKeyPrefix+merchantID.String()).Result()
		require.NoError(t, err)
		assert.Equal(t, "someone-else", held)
	})
}
