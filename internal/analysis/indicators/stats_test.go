package indicators

import "testing"

func TestZScore(t *testing.T) {
	t.Run("constant series", func(t *testing.T) {
		values := make([]float64, 30)
		for i := range values {
			values[i] = 50
		}

		info := ZScore(values, DefaultZScoreLookback)
		if info == nil {
			t.Fatal("expected z-score info")
		}
		if info.ZScore != 0 {
			t.Errorf("zero std should yield z-score 0, got %.4f", info.ZScore)
		}
		if info.Extreme != ExtremeNormal {
			t.Errorf("expected normal, got %s", info.Extreme)
		}
	})

	t.Run("overbought extreme", func(t *testing.T) {
		values := make([]float64, 30)
		for i := range values {
			values[i] = 50
		}
		values[len(values)-1] = 90

		info := ZScore(values, DefaultZScoreLookback)
		if info.ZScore <= zscoreExtremeSigma {
			t.Errorf("expected z-score above %.1f, got %.4f", zscoreExtremeSigma, info.ZScore)
		}
		if info.Extreme != ExtremeOverbought {
			t.Errorf("expected overbought, got %s", info.Extreme)
		}
	})

	t.Run("oversold extreme", func(t *testing.T) {
		values := make([]float64, 30)
		for i := range values {
			values[i] = 50
		}
		values[len(values)-1] = 10

		info := ZScore(values, DefaultZScoreLookback)
		if info.Extreme != ExtremeOversold {
			t.Errorf("expected oversold, got %s", info.Extreme)
		}
	})

	t.Run("lookback bounds the window", func(t *testing.T) {
		// Values outside the lookback window must not shift the mean
		values := make([]float64, 100)
		for i := 0; i < 10; i++ {
			values[i] = 1000
		}
		for i := 10; i < 100; i++ {
			values[i] = 50
		}

		info := ZScore(values, 90)
		if info.Mean != 50 {
			t.Errorf("expected window mean 50, got %.4f", info.Mean)
		}
		if info.ZScore != 0 {
			t.Errorf("expected z-score 0 inside a flat window, got %.4f", info.ZScore)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		if info := ZScore([]float64{50, 50, 50}, DefaultZScoreLookback); info != nil {
			t.Errorf("expected nil under 10 values, got %+v", info)
		}
	})
}

func TestCalculateRSIAcceleration(t *testing.T) {
	cases := []struct {
		name    string
		history []float64
		want    string
	}{
		{"accelerating up", []float64{50, 52, 56}, AccelerationUp},
		{"decelerating up", []float64{50, 56, 58}, DecelerationUp},
		{"accelerating down", []float64{56, 52, 46}, AccelerationDown},
		{"decelerating down", []float64{58, 52, 50}, DecelerationDown},
		{"stable", []float64{50, 50.5, 50.8}, AccelerationStable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accel := CalculateRSIAcceleration(tc.history)
			if accel == nil {
				t.Fatal("expected acceleration")
			}
			if accel.Interpretation != tc.want {
				t.Errorf("expected %s, got %s (v=%.2f a=%.2f)", tc.want, accel.Interpretation, accel.Velocity, accel.Acceleration)
			}
		})
	}

	t.Run("insufficient data", func(t *testing.T) {
		if accel := CalculateRSIAcceleration([]float64{50, 52}); accel != nil {
			t.Errorf("expected nil under 3 values, got %+v", accel)
		}
	})
}

func TestCalculatePriceAcceleration(t *testing.T) {
	t.Run("percent derivatives", func(t *testing.T) {
		accel := CalculatePriceAcceleration([]float64{100, 110, 115.5})
		if accel == nil {
			t.Fatal("expected acceleration")
		}
		if accel.Velocity != 5 {
			t.Errorf("expected velocity 5%%, got %.4f", accel.Velocity)
		}
		if accel.Acceleration != -5 {
			t.Errorf("expected acceleration -5, got %.4f", accel.Acceleration)
		}
		if accel.PctChange3d != 15.5 {
			t.Errorf("expected 3-period change 15.5%%, got %.4f", accel.PctChange3d)
		}
	})

	t.Run("zero prior price", func(t *testing.T) {
		if accel := CalculatePriceAcceleration([]float64{0, 110, 115}); accel != nil {
			t.Errorf("expected nil with a zero prior price, got %+v", accel)
		}
	})
}
