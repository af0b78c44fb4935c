package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/internal/adapters/config"
	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// marketsPageSize is CoinGecko's maximum per_page for /coins/markets
const marketsPageSize = 250

// CoinGeckoProvider implements Provider using the CoinGecko API
type CoinGeckoProvider struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	concurrency int
}

// NewCoinGeckoProvider creates new CoinGecko provider
func NewCoinGeckoProvider(cfg config.CoinGeckoConfig) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		concurrency: cfg.Concurrency,
	}
}

func (cg *CoinGeckoProvider) GetName() string {
	return "CoinGecko"
}

// marketRow is the wire shape of one /coins/markets entry. Numeric fields
// decode through decimal to avoid float drift at the boundary.
type marketRow struct {
	ID           string           `json:"id"`
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
	MarketCap    *decimal.Decimal `json:"market_cap"`
	TotalVolume  *decimal.Decimal `json:"total_volume"`
}

// GetMarketData returns current market snapshots for the given asset ids
func (cg *CoinGeckoProvider) GetMarketData(ctx context.Context, ids []string) ([]models.MarketData, error) {
	var out []models.MarketData

	for start := 0; start < len(ids); start += marketsPageSize {
		end := start + marketsPageSize
		if end > len(ids) {
			end = len(ids)
		}

		params := url.Values{}
		params.Set("vs_currency", "usd")
		params.Set("ids", strings.Join(ids[start:end], ","))
		params.Set("per_page", fmt.Sprintf("%d", marketsPageSize))

		var rows []marketRow
		if err := cg.get(ctx, "/coins/markets", params, &rows); err != nil {
			return nil, fmt.Errorf("failed to fetch market data: %w", err)
		}

		for _, row := range rows {
			out = append(out, models.MarketData{
				ID:           row.ID,
				Symbol:       row.Symbol,
				Name:         row.Name,
				CurrentPrice: derefDecimal(row.CurrentPrice),
				MarketCap:    derefDecimal(row.MarketCap),
				TotalVolume:  derefDecimal(row.TotalVolume),
			})
		}
	}

	return out, nil
}

// chartResponse is the wire shape of /coins/{id}/market_chart
type chartResponse struct {
	Prices       [][2]decimal.Decimal `json:"prices"`
	TotalVolumes [][2]decimal.Decimal `json:"total_volumes"`
}

// GetMarketCharts returns daily-resolution history for each asset,
// fetched concurrently. Assets whose fetch fails are omitted from the
// result rather than failing the batch.
func (cg *CoinGeckoProvider) GetMarketCharts(ctx context.Context, ids []string, days int) (map[string]models.MarketChart, error) {
	return cg.fetchCharts(ctx, ids, days, "daily")
}

// GetHourlyCharts returns hourly-resolution history for each asset
func (cg *CoinGeckoProvider) GetHourlyCharts(ctx context.Context, ids []string, days int) (map[string]models.MarketChart, error) {
	return cg.fetchCharts(ctx, ids, days, "hourly")
}

func (cg *CoinGeckoProvider) fetchCharts(ctx context.Context, ids []string, days int, interval string) (map[string]models.MarketChart, error) {
	type result struct {
		id    string
		chart models.MarketChart
		err   error
	}

	sem := make(chan struct{}, cg.concurrency)
	results := make(chan result, len(ids))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(assetID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			chart, err := cg.fetchChart(ctx, assetID, days, interval)
			results <- result{id: assetID, chart: chart, err: err}
		}(id)
	}
	wg.Wait()
	close(results)

	charts := make(map[string]models.MarketChart, len(ids))
	for r := range results {
		if r.err != nil {
			logger.Warn("Failed to fetch market chart",
				zap.String("asset", r.id),
				zap.String("interval", interval),
				zap.Error(r.err))
			continue
		}
		charts[r.id] = r.chart
	}

	if len(charts) == 0 && len(ids) > 0 {
		return nil, fmt.Errorf("all %d chart fetches failed", len(ids))
	}
	return charts, nil
}

func (cg *CoinGeckoProvider) fetchChart(ctx context.Context, id string, days int, interval string) (models.MarketChart, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", fmt.Sprintf("%d", days))
	params.Set("interval", interval)

	var resp chartResponse
	endpoint := fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(id))
	if err := cg.get(ctx, endpoint, params, &resp); err != nil {
		return models.MarketChart{}, err
	}

	chart := models.MarketChart{
		Prices:  make([]models.PricePoint, 0, len(resp.Prices)),
		Volumes: make([]models.VolumePoint, 0, len(resp.TotalVolumes)),
	}
	for _, pair := range resp.Prices {
		chart.Prices = append(chart.Prices, models.PricePoint{
			TimestampMS: pair[0].IntPart(),
			Price:       pair[1],
		})
	}
	for _, pair := range resp.TotalVolumes {
		chart.Volumes = append(chart.Volumes, models.VolumePoint{
			TimestampMS: pair[0].IntPart(),
			Volume:      pair[1],
		})
	}
	return chart, nil
}

func (cg *CoinGeckoProvider) get(ctx context.Context, endpoint string, params url.Values, v interface{}) error {
	fullURL := fmt.Sprintf("%s%s?%s", cg.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if cg.apiKey != "" {
		req.Header.Set("x-cg-pro-api-key", cg.apiKey)
	}

	resp, err := cg.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// derefDecimal treats JSON null numeric fields as zero
func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
