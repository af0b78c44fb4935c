package indicators

import "testing"

func TestClassifySignalLifecycle(t *testing.T) {
	t.Run("confirmed oversold", func(t *testing.T) {
		history := []float64{35, 32, 28, 25, 22}

		lc := ClassifySignalLifecycle(history, OversoldThreshold, true)
		if lc == nil {
			t.Fatal("expected lifecycle")
		}
		if lc.State != LifecycleConfirmed {
			t.Errorf("expected confirmed, got %s", lc.State)
		}
		if lc.DaysInZone != 3 {
			t.Errorf("expected 3 days in zone, got %d", lc.DaysInZone)
		}
		if lc.EntryRSI != 28 {
			t.Errorf("expected entry at the first extreme value 28, got %.2f", lc.EntryRSI)
		}
	})

	t.Run("fresh", func(t *testing.T) {
		history := []float64{45, 40, 35, 32, 28}

		lc := ClassifySignalLifecycle(history, OversoldThreshold, true)
		if lc.State != LifecycleFresh || lc.DaysInZone != 1 {
			t.Errorf("expected fresh/1, got %s/%d", lc.State, lc.DaysInZone)
		}
	})

	t.Run("extended", func(t *testing.T) {
		history := []float64{28, 27, 26, 25, 24, 23, 22}

		lc := ClassifySignalLifecycle(history, OversoldThreshold, true)
		if lc.State != LifecycleExtended || lc.DaysInZone != 7 {
			t.Errorf("expected extended/7, got %s/%d", lc.State, lc.DaysInZone)
		}
	})

	t.Run("resolving after exit", func(t *testing.T) {
		// Exited the oversold zone last period and moving back toward 50
		history := []float64{25, 24, 26, 28, 33}

		lc := ClassifySignalLifecycle(history, OversoldThreshold, true)
		if lc.State != LifecycleResolving {
			t.Errorf("expected resolving, got %s", lc.State)
		}
		if lc.EntryRSI != 28 {
			t.Errorf("expected entry at last extreme 28, got %.2f", lc.EntryRSI)
		}
	})

	t.Run("none", func(t *testing.T) {
		history := []float64{55, 52, 50, 48, 51}

		lc := ClassifySignalLifecycle(history, OversoldThreshold, true)
		if lc.State != LifecycleNone || lc.DaysInZone != 0 {
			t.Errorf("expected none/0, got %s/%d", lc.State, lc.DaysInZone)
		}
	})

	t.Run("overbought side", func(t *testing.T) {
		history := []float64{65, 72, 75, 78, 80}

		lc := ClassifySignalLifecycle(history, OverboughtThreshold, false)
		if lc.State != LifecycleConfirmed || lc.DaysInZone != 4 {
			t.Errorf("expected confirmed/4, got %s/%d", lc.State, lc.DaysInZone)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		if lc := ClassifySignalLifecycle([]float64{25, 24, 23}, OversoldThreshold, true); lc != nil {
			t.Errorf("expected nil with fewer than 5 values, got %+v", lc)
		}
	})
}
