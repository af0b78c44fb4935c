package price

import (
	"context"

	"github.com/selivandex/rsi-screener/pkg/models"
)

// Provider fetches market snapshots and historical charts
type Provider interface {
	// GetMarketData returns current market snapshots for the given asset ids
	GetMarketData(ctx context.Context, ids []string) ([]models.MarketData, error)

	// GetMarketCharts returns daily-resolution history per asset id
	GetMarketCharts(ctx context.Context, ids []string, days int) (map[string]models.MarketChart, error)

	// GetHourlyCharts returns hourly-resolution history per asset id
	GetHourlyCharts(ctx context.Context, ids []string, days int) (map[string]models.MarketChart, error)

	// GetName returns provider name
	GetName() string
}
