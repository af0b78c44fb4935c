// Package rsi implements Wilder's smoothed RSI.
//
// The implementation is deliberately hand-rolled instead of delegating to a
// TA library: the saturation policy (zero average loss yields exactly 100.0,
// at every step of the rolling history) and the history alignment contract
// (len(history) == len(closes) - period) are load-bearing for every
// downstream detector.
package rsi

// DefaultPeriod is the standard RSI lookback
const DefaultPeriod = 14

// Value calculates Wilder's smoothed RSI over the close series, oldest
// first. Returns ok=false when fewer than period+1 closes are available.
// When the smoothed average loss is zero the RSI saturates at exactly 100.0.
func Value(closes []float64, period int) (float64, bool) {
	history := History(closes, period)
	if len(history) == 0 {
		return 0, false
	}
	return history[len(history)-1], true
}

// History calculates the full rolling RSI series, one value per close after
// the warm-up window: len(result) == max(0, len(closes)-period). The same
// smoothing recurrence and saturation policy as Value apply at every step.
func History(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	// Seed averages: simple mean of the first period deltas
	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	history := make([]float64, 0, len(closes)-period)
	history = append(history, fromAverages(avgGain, avgLoss))

	// Wilder smoothing for the remaining deltas
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		history = append(history, fromAverages(avgGain, avgLoss))
	}

	return history
}

func fromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		// No losses in the window: saturate rather than divide by zero
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
