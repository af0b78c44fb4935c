// Package screener runs the full signal pipeline over a watchlist: benchmark
// pre-pass, per-asset indicator assembly, sector aggregation and deterministic
// ranking. All computation is pure and re-derived in full on every refresh.
package screener

import (
	"time"

	"github.com/selivandex/rsi-screener/internal/analysis/indicators"
	"github.com/selivandex/rsi-screener/internal/analysis/relative"
	"github.com/selivandex/rsi-screener/internal/analysis/sectors"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// Input is everything one refresh cycle feeds the engine. All series are
// already resident in memory; the engine itself performs no I/O.
type Input struct {
	// Watchlist orders which assets to process
	Watchlist []string
	// Markets is the current market snapshot per asset id
	Markets map[string]models.MarketData
	// Daily holds ~120d of daily-resolution history per asset id
	Daily map[string]models.MarketChart
	// Hourly holds ~90d of hourly-resolution history per asset id; may be
	// nil when the hourly fetch failed, which only drops the 1h/4h/12h
	// timeframe layer
	Hourly map[string]models.MarketChart
	// Funding maps asset id to its perp funding rate, where available
	Funding map[string]float64
}

// TimeframeSignals is the indicator set computed for one resolution
type TimeframeSignals struct {
	RSI             float64                     `json:"rsi"`
	RSIHistory      []float64                   `json:"rsi_history,omitempty"`
	Divergence      *indicators.Divergence      `json:"divergence,omitempty"`
	OBV             []float64                   `json:"obv,omitempty"`
	OBVAcceleration *indicators.OBVAcceleration `json:"obv_acceleration,omitempty"`
}

// SignalRecord is the full per-asset output of one refresh cycle. Pointer
// fields are nil when the asset lacks the history that detector requires;
// absence is never zero-filled.
type SignalRecord struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	Price        float64 `json:"price"`
	Volume       float64 `json:"volume"`
	MarketCap    float64 `json:"market_cap"`
	VolMcapRatio float64 `json:"vol_mcap_ratio"`

	DailyRSI   float64   `json:"daily_rsi"`
	WeeklyRSI  float64   `json:"weekly_rsi"`
	RSIHistory []float64 `json:"rsi_history"`

	Direction models.SignalDirection `json:"signal_direction"`

	BetaBTC    *relative.BetaAdjusted `json:"beta_btc,omitempty"`
	BetaETH    *relative.BetaAdjusted `json:"beta_eth,omitempty"`
	BetaTotal3 *relative.BetaAdjusted `json:"beta_total3,omitempty"`

	LifecycleOversold   *indicators.Lifecycle         `json:"lifecycle_oversold,omitempty"`
	LifecycleOverbought *indicators.Lifecycle         `json:"lifecycle_overbought,omitempty"`
	Volatility          *indicators.VolatilityRegime  `json:"volatility,omitempty"`
	Acceleration        *indicators.RSIAcceleration   `json:"acceleration,omitempty"`
	PriceAccel          *indicators.PriceAcceleration `json:"price_acceleration,omitempty"`
	ZScore              *indicators.ZScoreInfo        `json:"zscore_info,omitempty"`

	DailyDivergence  *indicators.Divergence `json:"daily_divergence,omitempty"`
	WeeklyDivergence *indicators.Divergence `json:"weekly_divergence,omitempty"`
	DivergenceType   string                 `json:"divergence_type"`
	DivergenceScore  int                    `json:"divergence_score"`

	// PriceChangePct is the move since the active lifecycle's entry close
	PriceChangePct *float64 `json:"price_change_pct,omitempty"`

	Sector     string `json:"sector"`
	SectorRank string `json:"sector_rank,omitempty"`

	FundingRate       *float64                      `json:"funding_rate,omitempty"`
	FundingConfluence *indicators.FundingConfluence `json:"funding_confluence,omitempty"`

	MeanReversion *indicators.MeanReversion     `json:"mean_reversion,omitempty"`
	Persistence   *indicators.SignalPersistence `json:"persistence,omitempty"`

	Opportunity indicators.OpportunityScore `json:"opportunity_score"`

	MultiTimeframe map[models.Timeframe]TimeframeSignals `json:"multi_timeframe,omitempty"`
}

// Snapshot is the ranked result of one refresh cycle
type Snapshot struct {
	RefreshID   string    `json:"refresh_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Records is sorted by final opportunity score descending, asset id
	// ascending on ties
	Records []SignalRecord `json:"records"`

	SectorRSI      map[string]sectors.SectorRSI `json:"sector_rsi"`
	SectorMomentum map[string]sectors.Momentum  `json:"sector_momentum"`

	BTCRegime    *indicators.Regime `json:"btc_regime,omitempty"`
	BTCWeeklyRSI *float64           `json:"btc_weekly_rsi,omitempty"`

	// Failed counts watchlist entries that produced no record
	Failed int `json:"failed"`
}
