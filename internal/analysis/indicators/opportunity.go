package indicators

import "math"

// Confluence bonuses added on top of the 1.0 base multiplier
const (
	bonusWeeklyExtreme    = 0.2
	bonusDivergenceSingle = 0.3
	bonusDivergenceMulti  = 0.5
	bonusVolCompressed    = 0.2
	bonusSectorTurning    = 0.1
	bonusFundingAligned   = 0.2
	bonusDecorrelation    = 0.2
)

// OpportunityInputs are the per-asset signals the composite score is built
// from. Zero values are neutral: a zero z-score falls back to a base of 1.0
// and absent confirmations simply add no bonus.
type OpportunityInputs struct {
	ZScore                float64
	DaysInZone            int
	WeeklyExtreme         bool
	DivergenceScore       int
	VolatilityCompressed  bool
	SectorTurning         bool
	FundingAligned        bool
	DecorrelationPositive bool
}

// OpportunityScore is the composite score with its decomposition
type OpportunityScore struct {
	BaseScore            float64            `json:"base_score"`
	FreshnessMultiplier  float64            `json:"freshness_multiplier"`
	ConfluenceMultiplier float64            `json:"confluence_multiplier"`
	FinalScore           float64            `json:"final_score"`
	Factors              map[string]float64 `json:"factors"`
}

// CalculateOpportunityScore combines statistical extremity, signal age and
// confirmation count into one comparable number:
//
//	final = base * freshness * confluence
//
// Base is |zscore|, or 1.0 when no z-score is available. Freshness decays in
// steps from 1.0 (2 days or fresher) down to 0.3 (past 13 days). Each
// confirmed factor adds its bonus to the confluence multiplier; the Factors
// map records every contribution for explainability.
func CalculateOpportunityScore(in OpportunityInputs) OpportunityScore {
	base := 1.0
	if in.ZScore != 0 {
		base = math.Abs(in.ZScore)
	}

	var freshness float64
	switch days := in.DaysInZone; {
	case days <= 2:
		freshness = 1.0
	case days <= 6:
		freshness = 0.8
	case days <= 10:
		freshness = 0.6
	case days <= 13:
		freshness = 0.4
	default:
		freshness = 0.3
	}

	contributions := make(map[string]float64)
	confluence := 1.0

	if in.WeeklyExtreme {
		confluence += bonusWeeklyExtreme
		contributions["weekly_extreme"] = bonusWeeklyExtreme
	}
	switch {
	case in.DivergenceScore >= 4:
		confluence += bonusDivergenceMulti
		contributions["divergence"] = bonusDivergenceMulti
	case in.DivergenceScore >= 1:
		confluence += bonusDivergenceSingle
		contributions["divergence"] = bonusDivergenceSingle
	}
	if in.VolatilityCompressed {
		confluence += bonusVolCompressed
		contributions["volatility_compressed"] = bonusVolCompressed
	}
	if in.SectorTurning {
		confluence += bonusSectorTurning
		contributions["sector_turning"] = bonusSectorTurning
	}
	if in.FundingAligned {
		confluence += bonusFundingAligned
		contributions["funding_aligned"] = bonusFundingAligned
	}
	if in.DecorrelationPositive {
		confluence += bonusDecorrelation
		contributions["decorrelation_positive"] = bonusDecorrelation
	}

	return OpportunityScore{
		BaseScore:            round4(base),
		FreshnessMultiplier:  freshness,
		ConfluenceMultiplier: round2(confluence),
		FinalScore:           round4(base * freshness * confluence),
		Factors:              contributions,
	}
}
