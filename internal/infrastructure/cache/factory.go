package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend names accepted by sync.lock_backend and webhook.idempotency_backend
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewRedisClient connects to redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Factory builds the coordination stores selected by configuration.
// The redis client is only required when a redis backend is selected.
type Factory struct {
	client redis.Cmdable
	logger *zap.Logger
}

// NewFactory creates a Factory; client may be nil
func NewFactory(client redis.Cmdable, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{client: client, logger: logger}
}

// NeedsRedis reports whether any configured backend is redis
func NeedsRedis(cfg *config.Config) bool {
	return cfg.Sync.LockBackend == BackendRedis || cfg.Webhook.IdempotencyBackend == BackendRedis
}

// IdempotencyStore returns the store for backend
func (f *Factory) IdempotencyStore(backend string) (shared.IdempotencyStore, error) {
	switch backend {
	case BackendRedis:
		if f.client == nil {
			return nil, fmt.Errorf("idempotency backend %q needs a redis client", backend)
		}
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, DefaultIdempotencyKeyPrefix), nil
	case BackendMemory, "":
		f.logger.Warn("Using in-memory idempotency store; duplicates are only detected within this process")
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", backend)
	}
}

// SyncLock returns the per-merchant sync lock for backend
func (f *Factory) SyncLock(backend string) (catalog.SyncLock, error) {
	switch backend {
	case BackendRedis:
		if f.client == nil {
			return nil, fmt.Errorf("lock backend %q needs a redis client", backend)
		}
		f.logger.Info("Using Redis sync lock")
		return NewRedisMerchantLock(f.client, f.logger), nil
	case BackendMemory, "":
		return NewInMemoryMerchantLock(), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}
