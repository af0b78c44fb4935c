package indicators

// Persistence interpretations, ordered from most to least mature
const (
	PersistenceStrongCoiled = "strong_coiled"
	PersistenceBuilding     = "building"
	PersistenceWeak         = "weak"
	PersistenceNone         = "none"
)

// DefaultPersistenceThreshold is the gap score above which RSI counts as
// leading price for a period
const DefaultPersistenceThreshold = 0.5

// persistenceWindow is how many trailing periods are scored
const persistenceWindow = 5

// SignalPersistence tracks how long RSI acceleration has led price
// acceleration. A persistent positive gap is a coiled spring: momentum
// building before price has moved.
type SignalPersistence struct {
	CurrentGap     float64   `json:"current_gap"`
	Persistence    int       `json:"persistence"`
	AvgGap         float64   `json:"avg_gap"`
	Interpretation string    `json:"interpretation"`
	GapHistory     []float64 `json:"gap_history"`
}

// CalculateSignalPersistence scores the last 5 periods by the gap between
// RSI acceleration and percent price acceleration at each period, counting
// those where the gap exceeds the threshold. The count is total, not
// consecutive, so a temporary dip does not reset it. Requires at least 5
// values in both histories; returns nil otherwise, or when no period could
// be scored.
func CalculateSignalPersistence(rsiHistory, priceHistory []float64, threshold float64) *SignalPersistence {
	if len(rsiHistory) < persistenceWindow || len(priceHistory) < persistenceWindow {
		return nil
	}

	var gapScores []float64
	for offset := -persistenceWindow; offset < 0; offset++ {
		ri := len(rsiHistory) + offset
		pi := len(priceHistory) + offset
		if ri < 2 || pi < 2 {
			continue
		}
		if priceHistory[pi-1] == 0 || priceHistory[pi-2] == 0 {
			continue
		}

		rsiVelocity := rsiHistory[ri] - rsiHistory[ri-1]
		rsiPrevVelocity := rsiHistory[ri-1] - rsiHistory[ri-2]
		rsiAccel := rsiVelocity - rsiPrevVelocity

		priceVelocity := (priceHistory[pi] - priceHistory[pi-1]) / priceHistory[pi-1] * 100
		pricePrevVelocity := (priceHistory[pi-1] - priceHistory[pi-2]) / priceHistory[pi-2] * 100
		priceAccel := priceVelocity - pricePrevVelocity

		gapScores = append(gapScores, round4(rsiAccel-priceAccel))
	}
	if len(gapScores) == 0 {
		return nil
	}

	currentGap := gapScores[len(gapScores)-1]

	persistence := 0
	var persistentSum float64
	for _, gap := range gapScores {
		if gap > threshold {
			persistence++
			persistentSum += gap
		}
	}
	avgGap := 0.0
	if persistence > 0 {
		avgGap = persistentSum / float64(persistence)
	}

	var interpretation string
	switch {
	case persistence >= 4 && currentGap > 2:
		interpretation = PersistenceStrongCoiled
	case persistence >= 3 || currentGap > 2:
		interpretation = PersistenceBuilding
	case persistence >= 2 || currentGap > 0.5:
		interpretation = PersistenceWeak
	default:
		interpretation = PersistenceNone
	}

	return &SignalPersistence{
		CurrentGap:     round4(currentGap),
		Persistence:    persistence,
		AvgGap:         round4(avgGap),
		Interpretation: interpretation,
		GapHistory:     gapScores,
	}
}
