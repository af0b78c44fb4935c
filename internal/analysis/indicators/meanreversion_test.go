package indicators

import "testing"

func TestCalculateMeanReversionProb(t *testing.T) {
	t.Run("counts bucket occurrences and reversals", func(t *testing.T) {
		history := make([]float64, 35)
		for i := range history {
			history[i] = 50
		}
		// Occurrence that reverts: 22 followed by a move above 27
		history[5] = 22
		history[6] = 30
		// Occurrence that stalls: 21 never followed by a value above 26
		history[15] = 21
		for i := 16; i <= 20; i++ {
			history[i] = 26
		}

		mr := CalculateMeanReversionProb(history, 22, 90)
		if mr == nil {
			t.Fatal("expected mean reversion stats")
		}
		if mr.Bucket != "20-25" {
			t.Errorf("expected bucket 20-25, got %s", mr.Bucket)
		}
		if mr.Occurrences != 2 {
			t.Errorf("expected 2 occurrences, got %d", mr.Occurrences)
		}
		if mr.Reversals != 1 {
			t.Errorf("expected 1 reversal, got %d", mr.Reversals)
		}
		if mr.Probability != 0.5 {
			t.Errorf("expected probability 0.5, got %.4f", mr.Probability)
		}
		if mr.Confidence != ConfidenceLow {
			t.Errorf("2 occurrences should be low confidence, got %s", mr.Confidence)
		}
	})

	t.Run("overbought buckets revert downward", func(t *testing.T) {
		history := make([]float64, 35)
		for i := range history {
			history[i] = 50
		}
		// 78 followed by a drop below 73 counts as reversion toward 50
		history[10] = 78
		history[12] = 70

		mr := CalculateMeanReversionProb(history, 77, 90)
		if mr.Bucket != "75-80" {
			t.Errorf("expected bucket 75-80, got %s", mr.Bucket)
		}
		if mr.Occurrences != 1 || mr.Reversals != 1 {
			t.Errorf("expected 1/1, got %d/%d", mr.Occurrences, mr.Reversals)
		}
	})

	t.Run("confidence scales with sample size", func(t *testing.T) {
		history := make([]float64, 60)
		for i := range history {
			if i%2 == 0 {
				history[i] = 22
			} else {
				history[i] = 40
			}
		}

		mr := CalculateMeanReversionProb(history, 23, 90)
		if mr.Confidence != ConfidenceHigh {
			t.Errorf("expected high confidence with many occurrences, got %s (n=%d)", mr.Confidence, mr.Occurrences)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		history := make([]float64, 29)
		if mr := CalculateMeanReversionProb(history, 50, 90); mr != nil {
			t.Errorf("expected nil under 30 values, got %+v", mr)
		}
	})

	t.Run("lookback bounds the sample", func(t *testing.T) {
		history := make([]float64, 120)
		for i := range history {
			history[i] = 50
		}
		// Occurrence outside the trailing 90 window must not count
		history[10] = 22

		mr := CalculateMeanReversionProb(history, 22, 90)
		if mr.Occurrences != 0 {
			t.Errorf("expected 0 occurrences inside the window, got %d", mr.Occurrences)
		}
	})
}
