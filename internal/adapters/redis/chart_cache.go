package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// hourlyChartsKey holds the whole hourly batch as one JSON blob; the batch
// is always fetched and consumed as a unit
const hourlyChartsKey = "screener:charts:hourly"

// ChartCache stores the hourly market-chart batch between refresh cycles.
// Hourly history moves slowly relative to the refresh cadence, so serving it
// from cache keeps the per-cycle CoinGecko call count down.
type ChartCache struct {
	client *Client
	ttl    time.Duration
}

// NewChartCache creates a chart cache with the given TTL
func NewChartCache(client *Client, ttl time.Duration) *ChartCache {
	return &ChartCache{client: client, ttl: ttl}
}

// GetHourly returns the cached hourly batch, or ok=false on a miss
func (c *ChartCache) GetHourly(ctx context.Context) (map[string]models.MarketChart, bool) {
	raw, err := c.client.Get(ctx, hourlyChartsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("hourly chart cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var charts map[string]models.MarketChart
	if err := json.Unmarshal(raw, &charts); err != nil {
		logger.Warn("hourly chart cache decode failed", zap.Error(err))
		return nil, false
	}
	return charts, true
}

// SetHourly stores the hourly batch with the cache TTL
func (c *ChartCache) SetHourly(ctx context.Context, charts map[string]models.MarketChart) error {
	raw, err := json.Marshal(charts)
	if err != nil {
		return fmt.Errorf("failed to encode hourly charts: %w", err)
	}

	if err := c.client.Set(ctx, hourlyChartsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store hourly charts: %w", err)
	}
	return nil
}
