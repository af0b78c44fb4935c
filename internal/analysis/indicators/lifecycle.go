package indicators

// Lifecycle states for an RSI extreme signal
const (
	LifecycleNone      = "none"
	LifecycleFresh     = "fresh"
	LifecycleConfirmed = "confirmed"
	LifecycleExtended  = "extended"
	LifecycleResolving = "resolving"
)

// Extreme zone thresholds
const (
	OversoldThreshold   = 30.0
	OverboughtThreshold = 70.0
)

// Lifecycle tracks how long a signal has lived in its extreme zone
type Lifecycle struct {
	State      string  `json:"state"`
	DaysInZone int     `json:"days_in_zone"`
	EntryRSI   float64 `json:"entry_rsi"`
	CurrentRSI float64 `json:"current_rsi"`
}

// Active reports whether the signal is currently doing anything
func (l *Lifecycle) Active() bool {
	return l != nil && l.State != LifecycleNone
}

// ClassifySignalLifecycle walks the RSI history backward counting consecutive
// periods beyond the extreme threshold (below for oversold, above for
// overbought). A signal that left the zone within the last two periods and is
// now moving back toward 50 classifies as resolving; otherwise the
// consecutive count maps to none (0), fresh (1-2), confirmed (3-5) or
// extended (6+). Requires at least 5 values; returns nil otherwise.
func ClassifySignalLifecycle(rsiHistory []float64, threshold float64, isOversold bool) *Lifecycle {
	if len(rsiHistory) < 5 {
		return nil
	}

	isExtreme := func(v float64) bool {
		if isOversold {
			return v < threshold
		}
		return v > threshold
	}

	currentRSI := rsiHistory[len(rsiHistory)-1]
	daysInZone := 0
	entryRSI := currentRSI

	for i := len(rsiHistory) - 1; i >= 0; i-- {
		if !isExtreme(rsiHistory[i]) {
			break
		}
		daysInZone++
		entryRSI = rsiHistory[i]
	}

	// Resolving: exited the zone within the last 2 periods and now moving
	// back toward 50 (up for a former oversold, down for a former
	// overbought)
	isResolving := false
	if daysInZone == 0 {
		prev := rsiHistory[len(rsiHistory)-2]
		wasExtreme := isExtreme(prev) ||
			(len(rsiHistory) >= 3 && isExtreme(rsiHistory[len(rsiHistory)-3]))
		if wasExtreme {
			if isOversold {
				isResolving = currentRSI > prev
			} else {
				isResolving = currentRSI < prev
			}
		}
	}

	var state string
	switch {
	case isResolving:
		state = LifecycleResolving
		// Entry is the most recent extreme before the exit
		for i := len(rsiHistory) - 2; i >= 0; i-- {
			if isExtreme(rsiHistory[i]) {
				entryRSI = rsiHistory[i]
				break
			}
		}
	case daysInZone == 0:
		state = LifecycleNone
	case daysInZone <= 2:
		state = LifecycleFresh
	case daysInZone <= 5:
		state = LifecycleConfirmed
	default:
		state = LifecycleExtended
	}

	return &Lifecycle{
		State:      state,
		DaysInZone: daysInZone,
		EntryRSI:   round2(entryRSI),
		CurrentRSI: round2(currentRSI),
	}
}
