// Package sectors aggregates per-asset RSI into sector-level readings. The
// sector classification is injected, never a package-level table, so tests
// and deployments can carry their own mappings.
package sectors

import "math"

// DefaultSector is assigned to assets missing from the map
const DefaultSector = "Other"

// rotationOversoldBelow is the sector RSI ceiling for a rotation signal
const rotationOversoldBelow = 35.0

// momentumLookback is how many periods back the momentum comparison reaches
const momentumLookback = 7

// bottomLookback bounds the weighted-RSI reconstruction used for the
// days-since-bottom scan
const bottomLookback = 30

// Map classifies asset ids into sector names
type Map map[string]string

// Sector returns the sector for an asset id, or DefaultSector when unmapped
func (m Map) Sector(assetID string) string {
	if sector, ok := m[assetID]; ok {
		return sector
	}
	return DefaultSector
}

// Asset is the slice of a signal record the sector aggregator needs
type Asset struct {
	ID         string
	DailyRSI   float64
	MarketCap  float64
	RSIHistory []float64
}

// SectorRSI is the aggregated current reading for one sector
type SectorRSI struct {
	RSI    float64  `json:"rsi"`
	Assets []string `json:"assets"`
	Count  int      `json:"count"`
}

// Momentum is the 7-period trajectory of one sector's weighted RSI
type Momentum struct {
	CurrentRSI       float64 `json:"current_rsi"`
	RSI7dAgo         float64 `json:"rsi_7d_ago"`
	Change7d         float64 `json:"change_7d"`
	MomentumArrow    string  `json:"momentum_arrow"`
	IsRotationSignal bool    `json:"is_rotation_signal"`
	DaysSinceBottom  int     `json:"days_since_bottom"`
	Count            int     `json:"count"`
}

// CalculateSectorRSI groups assets by sector and computes the market-cap
// weighted mean RSI per sector. When any asset in a sector lacks a market
// cap, or the total cap is zero, the sector falls back to a simple average.
func CalculateSectorRSI(m Map, assets []Asset) map[string]SectorRSI {
	grouped := groupBySector(m, assets)

	result := make(map[string]SectorRSI, len(grouped))
	for sector, members := range grouped {
		ids := make([]string, len(members))
		for i, a := range members {
			ids[i] = a.ID
		}
		result[sector] = SectorRSI{
			RSI:    round2(weightedRSI(members, 0)),
			Assets: ids,
			Count:  len(members),
		}
	}
	return result
}

// CalculateSectorMomentum compares each sector's weighted RSI now against
// 7 periods back. Assets without 7 trailing history values are excluded from
// the historical leg but still weight the current one. The rotation signal
// fires for a sector still oversold (weighted RSI under 35) yet already
// moving up. Days since bottom scans a 30-period weighted reconstruction
// for its minimum.
func CalculateSectorMomentum(m Map, assets []Asset) map[string]Momentum {
	grouped := groupBySector(m, assets)

	result := make(map[string]Momentum, len(grouped))
	for sector, members := range grouped {
		current := weightedRSI(members, 0)

		var past []Asset
		for _, a := range members {
			if len(a.RSIHistory) > momentumLookback {
				past = append(past, a)
			}
		}
		prev := current
		if len(past) > 0 {
			prev = weightedRSI(past, momentumLookback+1)
		}
		change := current - prev

		arrow := "→"
		switch {
		case change > 1:
			arrow = "↑"
		case change < -1:
			arrow = "↓"
		}

		result[sector] = Momentum{
			CurrentRSI:       round2(current),
			RSI7dAgo:         round2(prev),
			Change7d:         round2(change),
			MomentumArrow:    arrow,
			IsRotationSignal: current < rotationOversoldBelow && change > 0,
			DaysSinceBottom:  daysSinceBottom(members),
			Count:            len(members),
		}
	}
	return result
}

func groupBySector(m Map, assets []Asset) map[string][]Asset {
	grouped := make(map[string][]Asset)
	for _, a := range assets {
		sector := m.Sector(a.ID)
		grouped[sector] = append(grouped[sector], a)
	}
	return grouped
}

// weightedRSI computes the cap-weighted mean RSI at the given lookback from
// the end of each asset's history (0 means the current DailyRSI). Falls back
// to a simple average when weighting is impossible.
func weightedRSI(members []Asset, back int) float64 {
	if len(members) == 0 {
		return 0
	}

	value := func(a Asset) (float64, bool) {
		if back == 0 {
			return a.DailyRSI, true
		}
		if len(a.RSIHistory) < back {
			return 0, false
		}
		return a.RSIHistory[len(a.RSIHistory)-back], true
	}

	weightable := true
	var totalCap float64
	for _, a := range members {
		if a.MarketCap <= 0 {
			weightable = false
			break
		}
		totalCap += a.MarketCap
	}

	if weightable && totalCap > 0 {
		var weighted, usedCap float64
		for _, a := range members {
			v, ok := value(a)
			if !ok {
				continue
			}
			weighted += v * a.MarketCap
			usedCap += a.MarketCap
		}
		if usedCap > 0 {
			return weighted / usedCap
		}
	}

	var sum float64
	count := 0
	for _, a := range members {
		v, ok := value(a)
		if !ok {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// daysSinceBottom reconstructs the sector's weighted RSI over the trailing
// 30 periods and reports how many periods ago the minimum occurred
func daysSinceBottom(members []Asset) int {
	depth := 0
	for _, a := range members {
		if len(a.RSIHistory) > depth {
			depth = len(a.RSIHistory)
		}
	}
	if depth > bottomLookback {
		depth = bottomLookback
	}
	if depth == 0 {
		return 0
	}

	bottomBack := 1
	bottomValue := math.MaxFloat64
	for back := 1; back <= depth; back++ {
		v := weightedRSI(members, back)
		if v > 0 && v < bottomValue {
			bottomValue = v
			bottomBack = back
		}
	}
	return bottomBack - 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
