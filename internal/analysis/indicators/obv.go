package indicators

import "math"

// Volume flow interpretations from OBV acceleration
const (
	FlowAccumulating = "accumulating"
	FlowDistributing = "distributing"
	FlowStable       = "stable"
)

// obvFlowBand is the normalized acceleration magnitude that separates
// accumulation/distribution from stable flow
const obvFlowBand = 2.0

// obvRangeLookback bounds the trailing OBV range used for normalization
const obvRangeLookback = 10

// OBV builds the cumulative on-balance volume series. The first value is 0;
// each subsequent close strictly above the prior adds that period's volume,
// strictly below subtracts it, equal carries the running total unchanged.
// Both slices must be equal in length and at least 2 long; returns nil
// otherwise.
func OBV(closes, volumes []float64) []float64 {
	if len(closes) != len(volumes) || len(closes) < 2 {
		return nil
	}

	obv := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			obv[i] = obv[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			obv[i] = obv[i-1] - volumes[i]
		default:
			obv[i] = obv[i-1]
		}
	}
	return obv
}

// OBVAcceleration is the second derivative of on-balance volume, scaled to
// the recent OBV range so assets of different sizes compare
type OBVAcceleration struct {
	Velocity       float64 `json:"velocity"`
	Acceleration   float64 `json:"acceleration"`
	Interpretation string  `json:"interpretation"`
}

// CalculateOBVAcceleration derives velocity and acceleration from the
// trailing three OBV values, normalized against the OBV range over the last
// 10 periods and expressed in percent of that range. A flat range yields
// zeros. Requires at least 3 values; returns nil otherwise.
func CalculateOBVAcceleration(obv []float64) *OBVAcceleration {
	if len(obv) < 3 {
		return nil
	}

	n := len(obv)
	velocity := obv[n-1] - obv[n-2]
	prevVelocity := obv[n-2] - obv[n-3]
	acceleration := velocity - prevVelocity

	window := obv
	if len(obv) > obvRangeLookback {
		window = obv[len(obv)-obvRangeLookback:]
	}
	lo, hi := window[0], window[0]
	for _, v := range window {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	obvRange := hi - lo

	normVelocity := 0.0
	normAcceleration := 0.0
	if obvRange > 0 {
		normVelocity = velocity / obvRange * 100
		normAcceleration = acceleration / obvRange * 100
	}

	var interpretation string
	switch {
	case normAcceleration > obvFlowBand:
		interpretation = FlowAccumulating
	case normAcceleration < -obvFlowBand:
		interpretation = FlowDistributing
	default:
		interpretation = FlowStable
	}

	return &OBVAcceleration{
		Velocity:       round4(normVelocity),
		Acceleration:   round4(normAcceleration),
		Interpretation: interpretation,
	}
}
