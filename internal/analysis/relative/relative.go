// Package relative measures an asset's RSI against what its benchmark beta
// predicts, separating idiosyncratic strength from market-wide moves.
package relative

import "math"

// Residual interpretations
const (
	Outperforming    = "outperforming"
	Underperforming  = "underperforming"
	ExpectedBehavior = "expected"
)

// residualBand is the RSI-point deviation from the beta-predicted value
// that counts as out/underperformance
const residualBand = 5.0

// minReturns is the aligned sample size required for a stable beta
const minReturns = 30

// BetaAdjusted is an asset's RSI relative to its beta-predicted value
type BetaAdjusted struct {
	Beta           float64 `json:"beta"`
	ExpectedRSI    float64 `json:"expected_rsi"`
	Residual       float64 `json:"residual"`
	Interpretation string  `json:"interpretation"`
}

// Returns converts a price series to simple period returns. Periods with a
// zero prior price yield a zero return.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// AlignTail trims both slices to their common trailing length
func AlignTail(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

// BetaAdjustedRSI computes the asset's beta to the benchmark from aligned
// return series (population covariance over population variance), predicts
// the RSI a pure-beta asset would show, and reports the residual. Zero
// benchmark variance defaults beta to 1.0. Requires at least 30 aligned
// returns of equal length; returns nil otherwise.
func BetaAdjustedRSI(assetReturns, benchReturns []float64, assetRSI, benchRSI float64) *BetaAdjusted {
	if len(assetReturns) < minReturns || len(benchReturns) < minReturns {
		return nil
	}
	if len(assetReturns) != len(benchReturns) {
		return nil
	}

	n := float64(len(assetReturns))

	var sumAsset, sumBench float64
	for i := range assetReturns {
		sumAsset += assetReturns[i]
		sumBench += benchReturns[i]
	}
	meanAsset := sumAsset / n
	meanBench := sumBench / n

	var covariance, variance float64
	for i := range assetReturns {
		da := assetReturns[i] - meanAsset
		db := benchReturns[i] - meanBench
		covariance += da * db
		variance += db * db
	}
	covariance /= n
	variance /= n

	beta := 1.0
	if variance != 0 {
		beta = covariance / variance
	}

	expectedRSI := 50 + beta*(benchRSI-50)
	residual := assetRSI - expectedRSI

	var interpretation string
	switch {
	case residual > residualBand:
		interpretation = Outperforming
	case residual < -residualBand:
		interpretation = Underperforming
	default:
		interpretation = ExpectedBehavior
	}

	return &BetaAdjusted{
		Beta:           round4(beta),
		ExpectedRSI:    round4(expectedRSI),
		Residual:       round4(residual),
		Interpretation: interpretation,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
