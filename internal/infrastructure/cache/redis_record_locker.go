package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultLockPrefix = "returns:lock:"

// releaseScript deletes the lock only if this holder still owns it, so an
// expired lock re-acquired by someone else is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRecordLocker serializes record mutations across instances with
// SET NX PX. The TTL bounds how long a crashed holder can block a record.
type RedisRecordLocker struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisRecordLocker creates a locker on a shared client
func NewRedisRecordLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisRecordLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRecordLocker{
		client:    client,
		ttl:       ttl,
		keyPrefix: defaultLockPrefix,
		logger:    logger,
	}
}

// TryLock acquires the lock for id without waiting
func (l *RedisRecordLocker) TryLock(ctx context.Context, id uuid.UUID) (func(), bool, error) {
	key := l.keyPrefix + id.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock for %s: %w", id, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The request context may already be cancelled when release runs.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("failed to release record lock",
				zap.String("return_id", id.String()),
				zap.Error(err),
			)
		}
	}
	return release, true, nil
}

var _ shared.RecordLocker = (*RedisRecordLocker)(nil)
