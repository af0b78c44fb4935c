package indicators

import (
	"math"

	"github.com/cinar/indicator"
)

// Volatility regimes from the ATR compression ratio
const (
	VolatilityCompressed = "compressed"
	VolatilityNormal     = "normal"
	VolatilityExpanded   = "expanded"
)

// Compression ratio bands
const (
	volatilityCompressedBelow = 0.7
	volatilityExpandedAbove   = 1.3
)

// volatilityHistoryLen is how many trailing ratio points are exposed for
// compression-trend visualisation
const volatilityHistoryLen = 14

// VolatilityRegime describes ATR compression or expansion
type VolatilityRegime struct {
	CurrentATR float64 `json:"current_atr"`
	AvgATR     float64 `json:"avg_atr"`
	Ratio      float64 `json:"ratio"`
	Regime     string  `json:"regime"`
	// History holds the trailing per-position ATR/average ratios
	History []float64 `json:"volatility_history"`
}

// DetectVolatilityRegime classifies volatility from a close-only ATR proxy.
// True range is |close[i]-close[i-1]| since no high/low data is available.
// The current ATR (mean of the last period true ranges, as a percent of the
// latest price) is compared against the mean of per-position ATRs over the
// last 4*period positions, each normalized by the price at its own position.
// Requires 4*period+1 prices; returns nil otherwise.
func DetectVolatilityRegime(prices []float64, period int) *VolatilityRegime {
	minRequired := 4*period + 1
	if period <= 0 || len(prices) < minRequired {
		return nil
	}

	trueRanges := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		trueRanges[i-1] = math.Abs(prices[i] - prices[i-1])
	}

	// Rolling period-mean of true ranges; smaTR[j] covers trueRanges
	// [j-period+1, j] once j >= period-1, which is exactly the ATR ending
	// at price index j+1.
	smaTR := indicator.Sma(period, trueRanges)

	currentATR := normalizedATR(smaTR[len(trueRanges)-1], prices[len(prices)-1])

	lookback := 4 * period
	atrValues := make([]float64, 0, lookback)
	for end := len(trueRanges) - lookback + 1; end <= len(trueRanges); end++ {
		if end < period {
			// Window would reach before the first true range
			continue
		}
		atrValues = append(atrValues, normalizedATR(smaTR[end-1], prices[end]))
	}
	if len(atrValues) == 0 {
		return nil
	}

	var sum float64
	for _, v := range atrValues {
		sum += v
	}
	avgATR := sum / float64(len(atrValues))

	ratio := 1.0
	if avgATR > 0 {
		ratio = currentATR / avgATR
	}

	var regime string
	switch {
	case ratio < volatilityCompressedBelow:
		regime = VolatilityCompressed
	case ratio > volatilityExpandedAbove:
		regime = VolatilityExpanded
	default:
		regime = VolatilityNormal
	}

	tail := atrValues
	if len(tail) > volatilityHistoryLen {
		tail = tail[len(tail)-volatilityHistoryLen:]
	}
	history := make([]float64, len(tail))
	for i, v := range tail {
		if avgATR > 0 {
			history[i] = round4(v / avgATR)
		} else {
			history[i] = 1.0
		}
	}

	return &VolatilityRegime{
		CurrentATR: round4(currentATR),
		AvgATR:     round4(avgATR),
		Ratio:      round4(ratio),
		Regime:     regime,
		History:    history,
	}
}

// normalizedATR expresses an ATR value as a percent of price
func normalizedATR(atr, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return atr / price * 100
}
