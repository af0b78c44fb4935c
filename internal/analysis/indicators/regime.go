package indicators

import "fmt"

// Regime states derived from benchmark weekly RSI
const (
	RegimeBull       = "bull"
	RegimeBear       = "bear"
	RegimeTransition = "transition"
)

// Momentum tags within a regime
const (
	MomentumRising  = "rising"
	MomentumFalling = "falling"
	MomentumNeutral = "neutral"
)

// regimeMomentumBand is the weekly RSI move over 3 periods that separates
// rising/falling from neutral
const regimeMomentumBand = 3.0

// Regime describes the market state read from weekly RSI history
type Regime struct {
	State    string `json:"state"`
	Momentum string `json:"momentum"`
	Combined string `json:"combined"`
}

// DetectRegime classifies the market regime from weekly RSI history (oldest
// first, at least 4 values). The state is "transition" when the RSI crossed
// the 50 midpoint anywhere within the last 4 points; otherwise bull/bear by
// the latest value. Momentum compares the latest value against 3 periods
// back. Returns nil with fewer than 4 values.
func DetectRegime(weeklyRSI []float64) *Regime {
	if len(weeklyRSI) < 4 {
		return nil
	}

	current := weeklyRSI[len(weeklyRSI)-1]
	prev3 := weeklyRSI[len(weeklyRSI)-4]

	recent := weeklyRSI[len(weeklyRSI)-4:]
	crossed50 := false
	for i := 1; i < len(recent); i++ {
		up := recent[i-1] <= 50 && recent[i] > 50
		down := recent[i-1] > 50 && recent[i] <= 50
		if up || down {
			crossed50 = true
			break
		}
	}

	var state string
	switch {
	case crossed50:
		state = RegimeTransition
	case current > 50:
		state = RegimeBull
	default:
		state = RegimeBear
	}

	var momentum string
	switch diff := current - prev3; {
	case diff > regimeMomentumBand:
		momentum = MomentumRising
	case diff < -regimeMomentumBand:
		momentum = MomentumFalling
	default:
		momentum = MomentumNeutral
	}

	combined := RegimeTransition
	if state != RegimeTransition {
		combined = fmt.Sprintf("%s_%s", state, momentum)
	}

	return &Regime{
		State:    state,
		Momentum: momentum,
		Combined: combined,
	}
}
