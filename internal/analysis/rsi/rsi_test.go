package rsi

import (
	"testing"
)

func TestValue(t *testing.T) {
	t.Run("known series", func(t *testing.T) {
		closes := []float64{10, 10.5, 10.2, 10.8, 11, 10.9, 11.2, 11.5, 11.3, 11.8, 12, 11.9, 12.2, 12.5, 12.3}

		value, ok := Value(closes, DefaultPeriod)
		if !ok {
			t.Fatal("expected RSI for 15 closes with period 14")
		}

		// Mostly up moves, so RSI lands in the upper half but below saturation
		if value <= 50 || value >= 100 {
			t.Errorf("expected RSI in (50, 100), got %.4f", value)
		}
	})

	t.Run("insufficient data", func(t *testing.T) {
		closes := generateCloses(14, 100, 0.01)

		if _, ok := Value(closes, DefaultPeriod); ok {
			t.Error("expected no RSI with only period closes")
		}
	})

	t.Run("monotonic gains saturate", func(t *testing.T) {
		closes := generateCloses(30, 100, 0.02)

		value, ok := Value(closes, DefaultPeriod)
		if !ok {
			t.Fatal("expected RSI")
		}
		if value != 100.0 {
			t.Errorf("expected RSI exactly 100.0 with zero losses, got %.4f", value)
		}
	})

	t.Run("monotonic losses approach zero", func(t *testing.T) {
		closes := generateCloses(30, 100, -0.02)

		value, ok := Value(closes, DefaultPeriod)
		if !ok {
			t.Fatal("expected RSI")
		}
		if value != 0.0 {
			t.Errorf("expected RSI 0 with zero gains, got %.4f", value)
		}
	})

	t.Run("scale invariance", func(t *testing.T) {
		base := []float64{10, 10.5, 10.2, 10.8, 11, 10.9, 11.2, 11.5, 11.3, 11.8, 12, 11.9, 12.2, 12.5, 12.3, 12.8, 13}
		scaled := make([]float64, len(base))
		for i, c := range base {
			scaled[i] = c * 1000
		}

		a, _ := Value(base, DefaultPeriod)
		b, _ := Value(scaled, DefaultPeriod)

		if diff := a - b; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("RSI should be scale invariant: %.6f vs %.6f", a, b)
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("length contract", func(t *testing.T) {
		closes := generateCloses(50, 100, 0.005)

		history := History(closes, DefaultPeriod)
		if len(history) != len(closes)-DefaultPeriod {
			t.Errorf("expected %d history values, got %d", len(closes)-DefaultPeriod, len(history))
		}
	})

	t.Run("too short", func(t *testing.T) {
		closes := generateCloses(10, 100, 0.005)

		if history := History(closes, DefaultPeriod); history != nil {
			t.Errorf("expected nil history, got %d values", len(history))
		}
	})

	t.Run("last value matches Value", func(t *testing.T) {
		closes := []float64{10, 10.5, 10.2, 10.8, 11, 10.9, 11.2, 11.5, 11.3, 11.8, 12, 11.9, 12.2, 12.5, 12.3, 12.1, 12.6}

		history := History(closes, DefaultPeriod)
		value, _ := Value(closes, DefaultPeriod)

		if history[len(history)-1] != value {
			t.Errorf("history tail %.4f != value %.4f", history[len(history)-1], value)
		}
	})

	t.Run("all values in range", func(t *testing.T) {
		closes := generateOscillating(60, 100, 5)

		for i, v := range History(closes, DefaultPeriod) {
			if v < 0 || v > 100 {
				t.Errorf("history[%d] = %.4f out of [0, 100]", i, v)
			}
		}
	})
}

// generateCloses builds a geometric close series with a fixed per-step drift
func generateCloses(n int, start, drift float64) []float64 {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		price *= 1 + drift
	}
	return closes
}

// generateOscillating builds a series that alternates around a base price
func generateOscillating(n int, base, amplitude float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		offset := amplitude
		if i%2 == 0 {
			offset = -amplitude
		}
		closes[i] = base + offset + float64(i%5)
	}
	return closes
}
