// Package redis provides the cache client, the hourly chart cache and the
// refresh-cycle distributed lock.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/internal/adapters/config"
	"github.com/selivandex/rsi-screener/pkg/logger"
)

// Client bundles the cache connection with a redlock manager over the same
// instance. A single address degrades redlock to a plain expiring lock,
// which is sufficient for skip-if-held refresh semantics.
type Client struct {
	cache       *redis.Client
	lockManager *redlock.RedLock
}

// New connects the cache client and the redlock manager
func New(cfg *config.RedisConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lockManager, err := redlock.NewRedLock(ctx, []string{"tcp://" + cfg.Addr})
	if err != nil {
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}

	cache := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := cache.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis connected",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
	)

	return &Client{cache: cache, lockManager: lockManager}, nil
}

// GetLockManager exposes the redlock manager for lock construction
func (c *Client) GetLockManager() *redlock.RedLock {
	return c.lockManager
}

// Close closes the cache connection
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	logger.Info("closing redis connection")
	if err := c.cache.Close(); err != nil {
		return fmt.Errorf("failed to close redis: %w", err)
	}
	return nil
}

// Health pings with a short deadline, for readiness probes
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.cache.Ping(ctx).Err()
}

// Get reads a cache key
func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	return c.cache.Get(ctx, key)
}

// Set writes a cache key with a TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return c.cache.Set(ctx, key, value, expiration)
}
