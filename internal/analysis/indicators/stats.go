package indicators

import "math"

// Z-score extremity labels
const (
	ExtremeOversold   = "oversold"
	ExtremeOverbought = "overbought"
	ExtremeNormal     = "normal"
)

// zscoreExtremeSigma is the z-score magnitude that marks a statistical
// extreme
const zscoreExtremeSigma = 2.0

// DefaultZScoreLookback bounds the rolling mean/std window
const DefaultZScoreLookback = 90

// ZScoreInfo is the statistical extremity of the latest value relative to
// its own trailing distribution
type ZScoreInfo struct {
	Current float64 `json:"current"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	ZScore  float64 `json:"zscore"`
	Extreme string  `json:"extreme"`
}

// ZScore computes the population z-score of the latest value over the
// trailing min(lookback, len) window. A zero standard deviation yields a
// z-score of exactly 0 rather than a division by zero. Requires at least 10
// values; returns nil otherwise.
func ZScore(values []float64, lookback int) *ZScoreInfo {
	if len(values) < 10 {
		return nil
	}

	data := values
	if len(values) >= lookback {
		data = values[len(values)-lookback:]
	}
	current := values[len(values)-1]

	var sum float64
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	var variance float64
	for _, v := range data {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(data))
	std := math.Sqrt(variance)

	zscore := 0.0
	if std != 0 {
		zscore = (current - mean) / std
	}

	var extreme string
	switch {
	case zscore < -zscoreExtremeSigma:
		extreme = ExtremeOversold
	case zscore > zscoreExtremeSigma:
		extreme = ExtremeOverbought
	default:
		extreme = ExtremeNormal
	}

	return &ZScoreInfo{
		Current: current,
		Mean:    round4(mean),
		Std:     round4(std),
		ZScore:  round4(zscore),
		Extreme: extreme,
	}
}

// Acceleration interpretations
const (
	AccelerationUp     = "accelerating_up"
	AccelerationDown   = "accelerating_down"
	DecelerationUp     = "decelerating_up"
	DecelerationDown   = "decelerating_down"
	AccelerationStable = "stable"
)

// RSIAcceleration is the second derivative of an RSI series
type RSIAcceleration struct {
	Velocity       float64 `json:"velocity"`
	Acceleration   float64 `json:"acceleration"`
	Interpretation string  `json:"interpretation"`
}

// CalculateRSIAcceleration derives velocity (last change) and acceleration
// (change in velocity) from the trailing three RSI values. Moves with both
// |velocity| and |acceleration| under 1 point are stable. Requires at least
// 3 values; returns nil otherwise.
func CalculateRSIAcceleration(rsiHistory []float64) *RSIAcceleration {
	if len(rsiHistory) < 3 {
		return nil
	}

	n := len(rsiHistory)
	velocity := rsiHistory[n-1] - rsiHistory[n-2]
	prevVelocity := rsiHistory[n-2] - rsiHistory[n-3]
	acceleration := velocity - prevVelocity

	var interpretation string
	switch {
	case math.Abs(velocity) < 1 && math.Abs(acceleration) < 1:
		interpretation = AccelerationStable
	case velocity > 0 && acceleration > 0:
		interpretation = AccelerationUp
	case velocity > 0 && acceleration < 0:
		interpretation = DecelerationUp
	case velocity < 0 && acceleration < 0:
		interpretation = AccelerationDown
	case velocity < 0 && acceleration > 0:
		interpretation = DecelerationDown
	default:
		// Velocity or acceleration exactly zero
		interpretation = AccelerationStable
	}

	return &RSIAcceleration{
		Velocity:       velocity,
		Acceleration:   acceleration,
		Interpretation: interpretation,
	}
}

// PriceAcceleration is the second derivative of a price series, in percent
type PriceAcceleration struct {
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration"`
	PctChange3d  float64 `json:"pct_change_3d"`
}

// CalculatePriceAcceleration derives percent velocity and acceleration from
// the trailing three prices, plus the total percent change across them.
// Requires at least 3 values with nonzero prior prices; returns nil
// otherwise.
func CalculatePriceAcceleration(prices []float64) *PriceAcceleration {
	if len(prices) < 3 {
		return nil
	}

	n := len(prices)
	if prices[n-2] == 0 || prices[n-3] == 0 {
		return nil
	}

	velocity := (prices[n-1] - prices[n-2]) / prices[n-2] * 100
	prevVelocity := (prices[n-2] - prices[n-3]) / prices[n-3] * 100
	acceleration := velocity - prevVelocity
	pctChange3d := (prices[n-1] - prices[n-3]) / prices[n-3] * 100

	return &PriceAcceleration{
		Velocity:     round4(velocity),
		Acceleration: round4(acceleration),
		PctChange3d:  round4(pctChange3d),
	}
}
