package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Coordination bundles the stores that keep concurrent Process calls safe:
// a per-record lock and the dispatch idempotency store.
type Coordination struct {
	Locker      shared.RecordLocker
	Idempotency shared.IdempotencyStore
	// Redis is nil when the process-local fallback is in use
	Redis *redis.Client
}

// Close releases the stores and the Redis client
func (c *Coordination) Close() error {
	var err error
	if c.Idempotency != nil {
		err = c.Idempotency.Close()
	}
	if c.Redis != nil {
		if cerr := c.Redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Ping checks the Redis connection; it always succeeds for in-memory coordination
func (c *Coordination) Ping(ctx context.Context) error {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Ping(ctx).Err()
}

// CoordinationFactory creates coordination stores based on configuration
type CoordinationFactory struct {
	redisConfig           config.RedisConfig
	lockTTL               time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CoordinationFactoryOption is a functional option for configuring the factory
type CoordinationFactoryOption func(*CoordinationFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CoordinationFactoryOption {
	return func(f *CoordinationFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to process-local stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) CoordinationFactoryOption {
	return func(f *CoordinationFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCoordinationFactory creates a new factory
func NewCoordinationFactory(cfg config.RedisConfig, lockTTL time.Duration, opts ...CoordinationFactoryOption) *CoordinationFactory {
	f := &CoordinationFactory{
		redisConfig:           cfg,
		lockTTL:               lockTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemory creates process-local coordination.
// WARNING: it does not serialize Process across instances.
func (f *CoordinationFactory) CreateInMemory() *Coordination {
	return &Coordination{
		Locker:      NewInMemoryRecordLocker(),
		Idempotency: NewInMemoryIdempotencyStore(0),
	}
}

// Create returns Redis-backed coordination when Redis is enabled and reachable,
// otherwise falls back to in-memory if allowed.
func (f *CoordinationFactory) Create(ctx context.Context) (*Coordination, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory record locks and idempotency store")
		return f.CreateInMemory(), nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis record locks and idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return &Coordination{
			Locker:      NewRedisRecordLocker(client, f.lockTTL, f.logger),
			Idempotency: NewRedisIdempotencyStore(client, ""),
			Redis:       client,
		}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for coordination but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory coordination. "+
		"Concurrent Process calls are only serialized within this instance.",
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}
