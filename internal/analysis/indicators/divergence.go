package indicators

import "fmt"

// Divergence types
const (
	DivergenceBullish = "bullish"
	DivergenceBearish = "bearish"
	DivergenceNone    = "none"
)

// strongDivergenceGap is the RSI spread at the compared extrema that
// upgrades a divergence from strength 1 to strength 2
const strongDivergenceGap = 5.0

// Divergence is a price/RSI divergence on one timeframe
type Divergence struct {
	Type        string `json:"type"`
	Strength    int    `json:"strength"`
	Description string `json:"description"`
}

// Present reports whether a divergence was actually detected
func (d *Divergence) Present() bool {
	return d != nil && d.Type != DivergenceNone
}

// DetectDivergence compares local extrema of price against the co-indexed
// RSI series over the trailing lookback window.
//
// Priority order is part of the contract: the bullish pattern (price lower
// low with RSI higher low) is checked before the bearish pattern (price
// higher high with RSI lower high), so a window qualifying both ways reports
// bullish. Both series must be at least lookback long and equal in length;
// returns nil otherwise. When neither pattern matches the result is
// {none, 0}, not nil.
func DetectDivergence(prices, rsis []float64, lookback int) *Divergence {
	if len(prices) < lookback || len(rsis) < lookback {
		return nil
	}
	if len(prices) != len(rsis) {
		return nil
	}

	window := prices[len(prices)-lookback:]
	rsiWindow := rsis[len(rsis)-lookback:]

	// Bullish: price lower low, RSI higher low
	if lows := localLows(window); len(lows) >= 2 {
		first, last := lows[0], lows[len(lows)-1]
		if last.value < first.value {
			firstRSI := rsiWindow[first.index]
			lastRSI := rsiWindow[last.index]
			if lastRSI > firstRSI {
				gap := lastRSI - firstRSI
				return &Divergence{
					Type:        DivergenceBullish,
					Strength:    strengthFromGap(gap),
					Description: fmt.Sprintf("Bullish divergence: price lower low, RSI higher low (+%.1f)", gap),
				}
			}
		}
	}

	// Bearish: price higher high, RSI lower high
	if highs := localHighs(window); len(highs) >= 2 {
		first, last := highs[0], highs[len(highs)-1]
		if last.value > first.value {
			firstRSI := rsiWindow[first.index]
			lastRSI := rsiWindow[last.index]
			if lastRSI < firstRSI {
				gap := firstRSI - lastRSI
				return &Divergence{
					Type:        DivergenceBearish,
					Strength:    strengthFromGap(gap),
					Description: fmt.Sprintf("Bearish divergence: price higher high, RSI lower high (-%.1f)", gap),
				}
			}
		}
	}

	return &Divergence{
		Type:        DivergenceNone,
		Strength:    0,
		Description: "No divergence detected",
	}
}

func strengthFromGap(gap float64) int {
	if gap >= strongDivergenceGap {
		return 2
	}
	return 1
}

type extremum struct {
	index int
	value float64
}

// localLows finds local minima by 3-point comparison, plus the endpoints
// when they sit below their single neighbor
func localLows(values []float64) []extremum {
	var lows []extremum
	if len(values) >= 2 && values[0] < values[1] {
		lows = append(lows, extremum{0, values[0]})
	}
	for i := 1; i < len(values)-1; i++ {
		if values[i] < values[i-1] && values[i] <= values[i+1] {
			lows = append(lows, extremum{i, values[i]})
		}
	}
	if len(values) >= 2 && values[len(values)-1] < values[len(values)-2] {
		lows = append(lows, extremum{len(values) - 1, values[len(values)-1]})
	}
	return lows
}

// localHighs is the mirror of localLows for maxima
func localHighs(values []float64) []extremum {
	var highs []extremum
	if len(values) >= 2 && values[0] > values[1] {
		highs = append(highs, extremum{0, values[0]})
	}
	for i := 1; i < len(values)-1; i++ {
		if values[i] > values[i-1] && values[i] >= values[i+1] {
			highs = append(highs, extremum{i, values[i]})
		}
	}
	if len(values) >= 2 && values[len(values)-1] > values[len(values)-2] {
		highs = append(highs, extremum{len(values) - 1, values[len(values)-1]})
	}
	return highs
}

// DivergenceScore combines daily and weekly divergence into a confluence
// score: 4 when both timeframes diverge, otherwise the stronger single
// timeframe's strength, 0 when neither diverges.
func DivergenceScore(daily, weekly *Divergence) int {
	dailyHas := daily.Present()
	weeklyHas := weekly.Present()

	if dailyHas && weeklyHas {
		return 4
	}
	if dailyHas {
		return daily.Strength
	}
	if weeklyHas {
		return weekly.Strength
	}
	return 0
}
