//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCoordination_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client := startRedis(t)
	ctx := context.Background()

	t.Run("idempotency store", func(t *testing.T) {
		store := NewRedisIdempotencyStore(client, "test:idem:")
		key := uuid.NewString() + ":RESTOCKED_BRANCH"

		processed, err := store.IsProcessed(ctx, key)
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.False(t, isNew)

		ttl, err := client.TTL(ctx, "test:idem:"+key).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)
	})

	t.Run("record locker", func(t *testing.T) {
		locker := NewRedisRecordLocker(client, time.Minute, nil)
		id := uuid.New()

		release, ok, err := locker.TryLock(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = locker.TryLock(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, "held lock must not be acquired twice")

		release()

		release2, ok, err := locker.TryLock(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		release2()
	})

	t.Run("expired holder cannot release the new owner", func(t *testing.T) {
		locker := NewRedisRecordLocker(client, 50*time.Millisecond, nil)
		id := uuid.New()

		staleRelease, ok, err := locker.TryLock(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(100 * time.Millisecond)

		_, ok, err = NewRedisRecordLocker(client, time.Minute, nil).TryLock(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)

		staleRelease()

		exists, err := client.Exists(ctx, defaultLockPrefix+id.String()).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})
}
