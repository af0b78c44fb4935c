package indicators

import "fmt"

// Sample-size confidence tiers for mean reversion statistics
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// reversionHorizon is how many periods ahead a reversal must occur
const reversionHorizon = 5

// reversionMove is the RSI move toward 50 that counts as a reversal
const reversionMove = 5.0

// MeanReversion is the historical base rate of RSI reverting toward 50 from
// the current value's 5-point bucket
type MeanReversion struct {
	CurrentRSI  float64 `json:"current_rsi"`
	Bucket      string  `json:"bucket"`
	Occurrences int     `json:"occurrences"`
	Reversals   int     `json:"reversals"`
	Probability float64 `json:"probability"`
	Confidence  string  `json:"confidence"`
}

// CalculateMeanReversionProb estimates how often the asset's own RSI, when
// previously in the same 5-point bucket as the current value, moved at least
// 5 points back toward 50 within the next 5 periods. History is bounded to
// the trailing lookback window. Requires at least 30 values; returns nil
// otherwise.
func CalculateMeanReversionProb(rsiHistory []float64, currentRSI float64, lookback int) *MeanReversion {
	if len(rsiHistory) < 30 {
		return nil
	}

	data := rsiHistory
	if len(rsiHistory) >= lookback {
		data = rsiHistory[len(rsiHistory)-lookback:]
	}

	bucketStart := float64(int(currentRSI/5) * 5)
	bucketEnd := bucketStart + 5
	bucket := fmt.Sprintf("%d-%d", int(bucketStart), int(bucketEnd))

	occurrences := 0
	reversals := 0
	for i := 0; i < len(data)-reversionHorizon; i++ {
		rsi := data[i]
		if rsi < bucketStart || rsi >= bucketEnd {
			continue
		}
		occurrences++

		reverted := false
		for _, v := range data[i+1 : i+1+reversionHorizon] {
			if rsi < 50 {
				if v > rsi+reversionMove {
					reverted = true
					break
				}
			} else {
				if v < rsi-reversionMove {
					reverted = true
					break
				}
			}
		}
		if reverted {
			reversals++
		}
	}

	probability := 0.0
	if occurrences > 0 {
		probability = float64(reversals) / float64(occurrences)
	}

	var confidence string
	switch {
	case occurrences >= 10:
		confidence = ConfidenceHigh
	case occurrences >= 5:
		confidence = ConfidenceMedium
	default:
		confidence = ConfidenceLow
	}

	return &MeanReversion{
		CurrentRSI:  currentRSI,
		Bucket:      bucket,
		Occurrences: occurrences,
		Reversals:   reversals,
		Probability: round4(probability),
		Confidence:  confidence,
	}
}
