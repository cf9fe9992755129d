// Package lock provides a Redis-backed keyed locker for deployments that run
// several API instances against one database.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"smartshop/internal/core/apperror"
	corelock "smartshop/internal/core/lock"
	"smartshop/pkg/logger"
)

// RedisConfig configures the Redis connection and lock timings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// TTL bounds how long a crashed holder keeps a key locked.
	TTL time.Duration

	// RetryInterval is the pause between attempts while the key is held.
	RetryInterval time.Duration

	// KeyPrefix namespaces lock keys.
	KeyPrefix string
}

// DefaultRedisConfig returns sensible defaults for addr.
func DefaultRedisConfig(addr string) RedisConfig {
	return RedisConfig{
		Addr:          addr,
		TTL:           30 * time.Second,
		RetryInterval: 25 * time.Millisecond,
		KeyPrefix:     "smartshop:lock:",
	}
}

var _ corelock.Locker = (*RedisLocker)(nil)

// RedisLocker implements core/lock.Locker with bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
	cfg    RedisConfig
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker creates a locker on an established client.
func NewRedisLocker(rdb redislock.RedisClient, cfg RedisConfig) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 25 * time.Millisecond
	}
	return &RedisLocker{client: redislock.New(rdb), cfg: cfg}
}

// Lock blocks until key is obtained or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (corelock.Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lk, err := l.client.Obtain(ctx, l.cfg.KeyPrefix+key, l.cfg.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.cfg.RetryInterval),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperror.NewConflict("resource is locked, try again").WithDetail("key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %q: %w", key, err)
	}

	return func() {
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.Warn(ctx, "failed to release redis lock", "key", key, "error", err)
		}
	}, nil
}
