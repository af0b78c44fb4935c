package models

import "github.com/shopspring/decimal"

// ToFloat64 safely converts decimal to float64
func ToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// ClosesFromPoints extracts the float64 close series from price points.
// This is the single conversion point between adapter decimals and the
// math core, which operates on plain ordered float64 slices.
func ClosesFromPoints(points []PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = ToFloat64(p.Price)
	}
	return closes
}

// VolumesFromPoints extracts the float64 volume series from volume points
func VolumesFromPoints(points []VolumePoint) []float64 {
	volumes := make([]float64, len(points))
	for i, p := range points {
		volumes[i] = ToFloat64(p.Volume)
	}
	return volumes
}
