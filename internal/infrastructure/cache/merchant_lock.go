package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultLockKeyPrefix namespaces sync locks in redis
const DefaultLockKeyPrefix = "menusync:sync-lock:"

// releaseScript deletes the lock only while it still carries the caller's token,
// so a run that outlived its TTL cannot drop a lock taken by the next run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ----------------------------------------------------------------------------
// Redis
// ----------------------------------------------------------------------------

// RedisMerchantLock serializes sync runs per merchant across replicas
type RedisMerchantLock struct {
	client    redis.Cmdable
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisMerchantLock creates a lock on an existing client
func NewRedisMerchantLock(client redis.Cmdable, logger *zap.Logger) *RedisMerchantLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMerchantLock{client: client, keyPrefix: DefaultLockKeyPrefix, logger: logger}
}

// Acquire takes the merchant's lock with SET NX PX.
// It returns shared.ErrSyncInProgress when another owner holds it.
func (l *RedisMerchantLock) Acquire(ctx context.Context, merchantID uuid.UUID, ttl time.Duration) (func(), error) {
	key := l.keyPrefix + merchantID.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lock for merchant %s: %w", merchantID, err)
	}
	if !ok {
		return nil, shared.ErrSyncInProgress
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("failed to release sync lock",
					zap.String("merchant_id", merchantID.String()),
					zap.Error(err))
			}
		})
	}
	return release, nil
}

// ----------------------------------------------------------------------------
// In-memory
// ----------------------------------------------------------------------------

// InMemoryMerchantLock serializes sync runs per merchant inside one process
type InMemoryMerchantLock struct {
	mu    sync.Mutex
	held  map[uuid.UUID]lease
	now   func() time.Time
	count uint64
}

type lease struct {
	token     uint64
	expiresAt time.Time
}

// NewInMemoryMerchantLock creates an empty lock table
func NewInMemoryMerchantLock() *InMemoryMerchantLock {
	return &InMemoryMerchantLock{held: make(map[uuid.UUID]lease), now: time.Now}
}

// Acquire takes the merchant's lock until release is called or ttl elapses
func (l *InMemoryMerchantLock) Acquire(ctx context.Context, merchantID uuid.UUID, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if current, ok := l.held[merchantID]; ok && now.Before(current.expiresAt) {
		return nil, shared.ErrSyncInProgress
	}
	l.count++
	token := l.count
	l.held[merchantID] = lease{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if current, ok := l.held[merchantID]; ok && current.token == token {
				delete(l.held, merchantID)
			}
		})
	}, nil
}

var (
	_ catalog.SyncLock = (*RedisMerchantLock)(nil)
	_ catalog.SyncLock = (*InMemoryMerchantLock)(nil)
)
