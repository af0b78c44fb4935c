package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/pkg/logger"
)

// DistributedLock guards the refresh cycle so only one replica screens the
// watchlist at a time. The TTL bounds how long a crashed holder blocks the
// others.
type DistributedLock struct {
	manager *redlock.RedLock
	key     string
	ttl     time.Duration
	held    bool
}

// NewDistributedLock creates a named lock under the screener key prefix
func NewDistributedLock(manager *redlock.RedLock, name string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		manager: manager,
		key:     "screener:lock:" + name,
		ttl:     ttl,
	}
}

// TryAcquire attempts to take the lock. A lock held elsewhere returns
// (false, nil); the caller skips the cycle rather than erroring.
func (dl *DistributedLock) TryAcquire(ctx context.Context) (bool, error) {
	expiry, err := dl.manager.Lock(ctx, dl.key, dl.ttl)
	if err != nil {
		logger.Debug("lock held by another replica",
			zap.String("key", dl.key),
		)
		return false, nil
	}
	if expiry <= 0 {
		return false, fmt.Errorf("lock acquired with invalid expiry %v", expiry)
	}

	dl.held = true
	logger.Info("refresh lock acquired",
		zap.String("key", dl.key),
		zap.Duration("ttl", dl.ttl),
	)
	return true, nil
}

// Release frees the lock. An unlock failure is logged, not returned: the
// TTL expires the lock regardless.
func (dl *DistributedLock) Release(ctx context.Context) error {
	if !dl.held {
		return nil
	}

	if err := dl.manager.UnLock(ctx, dl.key); err != nil {
		logger.Warn("lock release failed, ttl will expire it",
			zap.String("key", dl.key),
			zap.Error(err),
		)
	} else {
		logger.Info("refresh lock released",
			zap.String("key", dl.key),
		)
	}

	dl.held = false
	return nil
}
