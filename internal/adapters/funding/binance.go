// Package funding fetches perpetual funding rates from Binance futures.
// Funding is an optional signal: a failed lookup drops the asset's funding
// confluence factor, never the asset.
package funding

import (
	"context"
	"fmt"
	"strconv"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// BinanceClient wraps the CCXT Binance futures API for funding rate reads
type BinanceClient struct {
	exchange *ccxt.Binance
}

// NewBinanceClient creates a public (unauthenticated) Binance futures client
func NewBinanceClient() (*BinanceClient, error) {
	exchange := ccxt.NewBinance(map[string]interface{}{})
	exchange.SetOption("defaultType", "future")

	if err := exchange.LoadMarkets(); err != nil {
		return nil, fmt.Errorf("failed to load Binance markets: %w", err)
	}

	logger.Info("Binance funding client initialized",
		zap.Int("markets_count", len(exchange.Markets)),
	)

	return &BinanceClient{exchange: exchange}, nil
}

// FetchRate returns the latest funding observation for one uppercase base
// symbol (e.g. "BTC")
func (b *BinanceClient) FetchRate(ctx context.Context, symbol string) (*models.FundingRate, error) {
	exchangeSymbol := symbolToExchange(symbol)

	result, err := b.exchange.PublicGetPremiumIndex(map[string]interface{}{
		"symbol": exchangeSymbol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch premium index for %s: %w", exchangeSymbol, err)
	}

	rate, ok := numericField(result, "lastFundingRate")
	if !ok {
		return nil, fmt.Errorf("funding rate not found in response for %s", exchangeSymbol)
	}
	markPrice, _ := numericField(result, "markPrice")
	nextTime, _ := numericField(result, "nextFundingTime")

	return &models.FundingRate{
		Symbol:          symbol,
		Rate:            decimal.NewFromFloat(rate),
		MarkPrice:       decimal.NewFromFloat(markPrice),
		NextFundingTime: time.UnixMilli(int64(nextTime)),
	}, nil
}

// FetchRates fetches funding for every symbol, keyed by the input symbol.
// Symbols without a perp listing are skipped with a debug log; only a fully
// failed batch is an error.
func (b *BinanceClient) FetchRates(ctx context.Context, symbols []string) (map[string]models.FundingRate, error) {
	rates := make(map[string]models.FundingRate, len(symbols))

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return rates, ctx.Err()
		default:
		}

		rate, err := b.FetchRate(ctx, symbol)
		if err != nil {
			logger.Debug("No funding rate for symbol",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}
		rates[symbol] = *rate
	}

	if len(rates) == 0 && len(symbols) > 0 {
		return nil, fmt.Errorf("no funding rates resolved for %d symbols", len(symbols))
	}
	return rates, nil
}

// symbolToExchange converts an uppercase base symbol to Binance perp format
func symbolToExchange(symbol string) string {
	return models.NormalizeSymbol(symbol) + "USDT"
}

// numericField reads a JSON numeric that Binance may serialize as either a
// string or a number
func numericField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
