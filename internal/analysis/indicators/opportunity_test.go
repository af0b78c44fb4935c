package indicators

import "testing"

func TestCalculateOpportunityScore(t *testing.T) {
	t.Run("zero zscore falls back to base 1", func(t *testing.T) {
		score := CalculateOpportunityScore(OpportunityInputs{})
		if score.BaseScore != 1.0 {
			t.Errorf("expected base 1.0, got %.4f", score.BaseScore)
		}
		if score.ConfluenceMultiplier != 1.0 {
			t.Errorf("expected bare confluence 1.0, got %.2f", score.ConfluenceMultiplier)
		}
	})

	t.Run("base is zscore magnitude", func(t *testing.T) {
		score := CalculateOpportunityScore(OpportunityInputs{ZScore: -2.5})
		if score.BaseScore != 2.5 {
			t.Errorf("expected base |z| = 2.5, got %.4f", score.BaseScore)
		}
	})

	t.Run("freshness decays in steps", func(t *testing.T) {
		boundaries := []struct {
			days int
			want float64
		}{
			{0, 1.0}, {2, 1.0}, {3, 0.8}, {6, 0.8}, {7, 0.6}, {10, 0.6}, {11, 0.4}, {13, 0.4}, {14, 0.3},
		}
		prev := 1.1
		for _, b := range boundaries {
			score := CalculateOpportunityScore(OpportunityInputs{DaysInZone: b.days})
			if score.FreshnessMultiplier != b.want {
				t.Errorf("days %d: expected freshness %.1f, got %.1f", b.days, b.want, score.FreshnessMultiplier)
			}
			if score.FreshnessMultiplier > prev {
				t.Errorf("freshness must never increase with age: days %d", b.days)
			}
			prev = score.FreshnessMultiplier
		}
	})

	t.Run("divergence tiers", func(t *testing.T) {
		single := CalculateOpportunityScore(OpportunityInputs{DivergenceScore: 1})
		if single.Factors["divergence"] != 0.3 {
			t.Errorf("expected single-timeframe bonus 0.3, got %.2f", single.Factors["divergence"])
		}

		multi := CalculateOpportunityScore(OpportunityInputs{DivergenceScore: 4})
		if multi.Factors["divergence"] != 0.5 {
			t.Errorf("expected dual-timeframe bonus 0.5, got %.2f", multi.Factors["divergence"])
		}
	})

	t.Run("every factor contributes", func(t *testing.T) {
		score := CalculateOpportunityScore(OpportunityInputs{
			ZScore:                -2.5,
			DaysInZone:            1,
			WeeklyExtreme:         true,
			DivergenceScore:       4,
			VolatilityCompressed:  true,
			SectorTurning:         true,
			FundingAligned:        true,
			DecorrelationPositive: true,
		})

		// 1.0 + 0.2 + 0.5 + 0.2 + 0.1 + 0.2 + 0.2
		if score.ConfluenceMultiplier != 2.4 {
			t.Errorf("expected confluence 2.4, got %.2f", score.ConfluenceMultiplier)
		}
		if len(score.Factors) != 6 {
			t.Errorf("expected 6 recorded factors, got %d", len(score.Factors))
		}
		if score.FinalScore != 6.0 {
			t.Errorf("expected final 2.5*1.0*2.4 = 6.0, got %.4f", score.FinalScore)
		}
	})

	t.Run("each confirmation raises the final score", func(t *testing.T) {
		base := OpportunityInputs{ZScore: 2.0, DaysInZone: 1}
		baseline := CalculateOpportunityScore(base).FinalScore

		variants := []OpportunityInputs{
			{ZScore: 2.0, DaysInZone: 1, WeeklyExtreme: true},
			{ZScore: 2.0, DaysInZone: 1, DivergenceScore: 1},
			{ZScore: 2.0, DaysInZone: 1, VolatilityCompressed: true},
			{ZScore: 2.0, DaysInZone: 1, SectorTurning: true},
			{ZScore: 2.0, DaysInZone: 1, FundingAligned: true},
			{ZScore: 2.0, DaysInZone: 1, DecorrelationPositive: true},
		}
		for i, v := range variants {
			if got := CalculateOpportunityScore(v).FinalScore; got <= baseline {
				t.Errorf("variant %d: confirmation should raise the score (%.4f <= %.4f)", i, got, baseline)
			}
		}
	})
}
