package indicators

import "testing"

func TestCalculateSignalPersistence(t *testing.T) {
	t.Run("strong coiled", func(t *testing.T) {
		// RSI accelerating quadratically while price stays flat: every
		// period scores a gap of 3
		rsi := []float64{0, 1.5, 6, 13.5, 24, 37.5, 54, 73.5}
		price := []float64{100, 100, 100, 100, 100, 100, 100, 100}

		sp := CalculateSignalPersistence(rsi, price, DefaultPersistenceThreshold)
		if sp == nil {
			t.Fatal("expected persistence")
		}
		if sp.Persistence != 5 {
			t.Errorf("expected all 5 periods persistent, got %d", sp.Persistence)
		}
		if sp.CurrentGap != 3 {
			t.Errorf("expected current gap 3, got %.4f", sp.CurrentGap)
		}
		if sp.Interpretation != PersistenceStrongCoiled {
			t.Errorf("expected strong_coiled, got %s", sp.Interpretation)
		}
		if len(sp.GapHistory) != 5 {
			t.Errorf("expected 5 gap scores, got %d", len(sp.GapHistory))
		}
	})

	t.Run("none when flat", func(t *testing.T) {
		flat := []float64{50, 50, 50, 50, 50, 50}
		price := []float64{100, 100, 100, 100, 100, 100}

		sp := CalculateSignalPersistence(flat, price, DefaultPersistenceThreshold)
		if sp.Persistence != 0 {
			t.Errorf("expected 0 persistent periods, got %d", sp.Persistence)
		}
		if sp.Interpretation != PersistenceNone {
			t.Errorf("expected none, got %s", sp.Interpretation)
		}
	})

	t.Run("zero prices are skipped", func(t *testing.T) {
		rsi := []float64{50, 51, 52, 53, 54, 55}
		price := []float64{0, 0, 0, 0, 0, 0}

		if sp := CalculateSignalPersistence(rsi, price, DefaultPersistenceThreshold); sp != nil {
			t.Errorf("expected nil when no period is scorable, got %+v", sp)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		short := []float64{50, 51, 52, 53}
		if sp := CalculateSignalPersistence(short, short, DefaultPersistenceThreshold); sp != nil {
			t.Errorf("expected nil under 5 values, got %+v", sp)
		}
	})
}
