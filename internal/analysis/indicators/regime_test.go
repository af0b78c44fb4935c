package indicators

import "testing"

func TestDetectRegime(t *testing.T) {
	t.Run("bull rising", func(t *testing.T) {
		regime := DetectRegime([]float64{55, 58, 60, 62})
		if regime == nil {
			t.Fatal("expected regime")
		}
		if regime.State != RegimeBull || regime.Momentum != MomentumRising {
			t.Errorf("expected bull/rising, got %s/%s", regime.State, regime.Momentum)
		}
		if regime.Combined != "bull_rising" {
			t.Errorf("expected bull_rising, got %s", regime.Combined)
		}
	})

	t.Run("bear falling", func(t *testing.T) {
		regime := DetectRegime([]float64{45, 42, 40, 38})
		if regime.State != RegimeBear || regime.Momentum != MomentumFalling {
			t.Errorf("expected bear/falling, got %s/%s", regime.State, regime.Momentum)
		}
	})

	t.Run("midpoint cross is transition", func(t *testing.T) {
		regime := DetectRegime([]float64{48, 52, 55, 56})
		if regime.State != RegimeTransition {
			t.Errorf("expected transition on a 50 cross, got %s", regime.State)
		}
		if regime.Combined != RegimeTransition {
			t.Errorf("transition has no momentum suffix, got %s", regime.Combined)
		}
	})

	t.Run("neutral momentum", func(t *testing.T) {
		regime := DetectRegime([]float64{55, 56, 55, 56})
		if regime.Combined != "bull_neutral" {
			t.Errorf("expected bull_neutral, got %s", regime.Combined)
		}
	})

	t.Run("uses only trailing window", func(t *testing.T) {
		// The 50 cross sits outside the last 4 values
		regime := DetectRegime([]float64{45, 52, 55, 58, 60, 62})
		if regime.State != RegimeBull {
			t.Errorf("old cross must not trigger transition, got %s", regime.State)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		if regime := DetectRegime([]float64{55, 56, 57}); regime != nil {
			t.Errorf("expected nil under 4 values, got %+v", regime)
		}
	})
}
