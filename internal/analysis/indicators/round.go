package indicators

import "math"

// round4 rounds to 4 decimal places. Intermediate score fields are rounded
// so that ranking order is stable across runs and platforms.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
