package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NewDecimal creates decimal from float64
func NewDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// SignalDirection represents which side of the midpoint a setup trades
type SignalDirection string

const (
	DirectionLong  SignalDirection = "long"
	DirectionShort SignalDirection = "short"
)

// Timeframe identifies one of the six analysis resolutions
type Timeframe string

const (
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe12h Timeframe = "12h"
	Timeframe1d  Timeframe = "1d"
	Timeframe3d  Timeframe = "3d"
	Timeframe1w  Timeframe = "1w"
)

// Timeframes lists all resolutions in ascending width order
var Timeframes = []Timeframe{
	Timeframe1h, Timeframe4h, Timeframe12h,
	Timeframe1d, Timeframe3d, Timeframe1w,
}

// PricePoint is one timestamped close from a market chart
type PricePoint struct {
	TimestampMS int64           `json:"timestamp_ms"`
	Price       decimal.Decimal `json:"price"`
}

// VolumePoint is one timestamped volume observation
type VolumePoint struct {
	TimestampMS int64           `json:"timestamp_ms"`
	Volume      decimal.Decimal `json:"volume"`
}

// Time returns the point's timestamp as time.Time
func (p PricePoint) Time() time.Time {
	return time.UnixMilli(p.TimestampMS)
}

// MarketChart is the historical series bundle for one asset
type MarketChart struct {
	Prices  []PricePoint  `json:"prices"`
	Volumes []VolumePoint `json:"volumes"`
}

// MarketData is the current market snapshot for one asset
type MarketData struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketCap    decimal.Decimal `json:"market_cap"`
	TotalVolume  decimal.Decimal `json:"total_volume"`
}

// FundingRate is a perp funding observation from a derivatives venue
type FundingRate struct {
	Symbol          string          `json:"symbol"`
	Rate            decimal.Decimal `json:"rate"`
	MarkPrice       decimal.Decimal `json:"mark_price"`
	NextFundingTime time.Time       `json:"next_funding_time"`
}

// WatchlistEntry maps an asset id to its ticker symbol
type WatchlistEntry struct {
	ID     string `db:"asset_id" json:"id"`
	Symbol string `db:"symbol" json:"symbol"`
}

// NormalizeSymbol uppercases a ticker for funding lookups
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
