package indicators

import "testing"

func TestDetectDivergence(t *testing.T) {
	lookback := 14

	t.Run("bullish takes priority", func(t *testing.T) {
		// Price makes a lower low at the window end while the co-indexed
		// RSI makes a higher low
		prices := []float64{100, 105, 104, 106, 107, 106, 108, 107, 109, 108, 107, 105, 100, 95}
		rsis := []float64{30, 50, 45, 52, 55, 50, 56, 52, 58, 55, 52, 48, 44, 40}

		div := DetectDivergence(prices, rsis, lookback)
		if !div.Present() {
			t.Fatal("expected a divergence")
		}
		if div.Type != DivergenceBullish {
			t.Errorf("expected bullish, got %s", div.Type)
		}
		if div.Strength != 2 {
			t.Errorf("RSI gap of 10 should give strength 2, got %d", div.Strength)
		}
	})

	t.Run("bearish", func(t *testing.T) {
		prices := []float64{110, 105, 106, 104, 103, 104, 102, 103, 101, 102, 104, 108, 112, 115}
		rsis := []float64{75, 60, 62, 58, 56, 58, 54, 56, 52, 54, 58, 64, 68, 71}

		div := DetectDivergence(prices, rsis, lookback)
		if div.Type != DivergenceBearish {
			t.Errorf("expected bearish, got %s", div.Type)
		}
	})

	t.Run("monotonic series has no divergence", func(t *testing.T) {
		prices := make([]float64, lookback)
		rsis := make([]float64, lookback)
		for i := range prices {
			prices[i] = 100 + float64(i)
			rsis[i] = 50 + float64(i)
		}

		div := DetectDivergence(prices, rsis, lookback)
		if div == nil {
			t.Fatal("expected a none result, not nil")
		}
		if div.Type != DivergenceNone || div.Strength != 0 {
			t.Errorf("expected {none, 0}, got {%s, %d}", div.Type, div.Strength)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		short := []float64{100, 101, 102}
		if div := DetectDivergence(short, short, lookback); div != nil {
			t.Errorf("expected nil for short series, got %+v", div)
		}
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		prices := make([]float64, lookback)
		rsis := make([]float64, lookback+1)
		if div := DetectDivergence(prices, rsis, lookback); div != nil {
			t.Errorf("expected nil for mismatched series, got %+v", div)
		}
	})
}

func TestDivergenceScore(t *testing.T) {
	bullish := &Divergence{Type: DivergenceBullish, Strength: 1}
	strong := &Divergence{Type: DivergenceBearish, Strength: 2}
	none := &Divergence{Type: DivergenceNone, Strength: 0}

	t.Run("both timeframes", func(t *testing.T) {
		if score := DivergenceScore(bullish, strong); score != 4 {
			t.Errorf("expected 4 for dual-timeframe divergence, got %d", score)
		}
	})

	t.Run("daily only", func(t *testing.T) {
		if score := DivergenceScore(strong, none); score != 2 {
			t.Errorf("expected daily strength 2, got %d", score)
		}
	})

	t.Run("weekly only", func(t *testing.T) {
		if score := DivergenceScore(none, bullish); score != 1 {
			t.Errorf("expected weekly strength 1, got %d", score)
		}
	})

	t.Run("neither", func(t *testing.T) {
		if score := DivergenceScore(none, nil); score != 0 {
			t.Errorf("expected 0, got %d", score)
		}
	})
}
