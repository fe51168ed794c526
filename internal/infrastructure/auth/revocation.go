package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList answers whether a token was revoked by the auth service
// before it expired. This service only reads it.
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// IsActorInvalidated reports whether every token the actor obtained at or
	// before issuedAt was invalidated (forced logout)
	IsActorInvalidated(ctx context.Context, actorID string, issuedAt time.Time) (bool, error)
}

// revocationKeyPrefix is shared with the auth service that writes the keys
const revocationKeyPrefix = "token:blacklist:"

// RedisRevocationList reads revocations from the auth service's Redis keys
type RedisRevocationList struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list over an existing client
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client, keyPrefix: revocationKeyPrefix}
}

func (l *RedisRevocationList) jtiKey(jti string) string {
	return l.keyPrefix + "jti:" + jti
}

func (l *RedisRevocationList) userKey(actorID string) string {
	return l.keyPrefix + "user:" + actorID
}

// IsRevoked checks whether the token's JTI is on the list
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := l.client.Exists(ctx, l.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// IsActorInvalidated compares issuedAt with the stored invalidation timestamp
func (l *RedisRevocationList) IsActorInvalidated(ctx context.Context, actorID string, issuedAt time.Time) (bool, error) {
	raw, err := l.client.Get(ctx, l.userKey(actorID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check actor invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return issuedAt.Unix() <= invalidatedAt, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is used in tests and single-node development
type InMemoryRevocationList struct {
	mu          sync.RWMutex
	revoked     map[string]time.Time // jti -> expiry
	invalidated map[string]time.Time // actor -> invalidated at
	now         func() time.Time
}

// NewInMemoryRevocationList creates an empty list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		revoked:     make(map[string]time.Time),
		invalidated: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Revoke adds a JTI until ttl elapses
func (l *InMemoryRevocationList) Revoke(jti string, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.now().Add(ttl)
}

// InvalidateActor rejects the actor's tokens issued at or before at
func (l *InMemoryRevocationList) InvalidateActor(actorID string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidated[actorID] = at
}

func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiry, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if l.now().After(expiry) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}

func (l *InMemoryRevocationList) IsActorInvalidated(_ context.Context, actorID string, issuedAt time.Time) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	at, ok := l.invalidated[actorID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(at), nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
