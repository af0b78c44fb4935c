// Package series resamples timestamped market-chart points into coarser
// fixed-width buckets. Price buckets keep the chronologically-last point as
// the bucket close; volume buckets sum every point. Buckets with no points
// simply do not appear in the output, so downstream length thresholds must be
// re-checked after aggregation.
//
// Weekly aggregation is the one calendar-aware rule in the system: weeks are
// grouped by ISO calendar week (year, week number), not by rolling 7x24h
// buckets, so weekly closes land on ISO week boundaries.
package series

import (
	"sort"
	"time"

	"github.com/selivandex/rsi-screener/pkg/models"
)

// Bucket widths used by the multi-timeframe layer
const (
	Bucket4h  = 4 * time.Hour
	Bucket12h = 12 * time.Hour
	Bucket3d  = 72 * time.Hour
)

// Closes resamples price points into fixed-width buckets and returns the
// close of each bucket, oldest first. The close is the last point seen for
// the bucket key floor(timestamp_ms / bucket_ms).
func Closes(points []models.PricePoint, bucket time.Duration) []float64 {
	if len(points) == 0 {
		return nil
	}

	bucketMS := bucket.Milliseconds()
	buckets := make(map[int64]float64, len(points))
	for _, p := range points {
		key := p.TimestampMS / bucketMS
		// Last write wins: input is ordered ascending, so the final
		// point per bucket is the close.
		buckets[key] = models.ToFloat64(p.Price)
	}

	return sortedValues(buckets)
}

// Volumes resamples volume points into fixed-width buckets and returns the
// total volume of each bucket, oldest first.
func Volumes(points []models.VolumePoint, bucket time.Duration) []float64 {
	if len(points) == 0 {
		return nil
	}

	bucketMS := bucket.Milliseconds()
	buckets := make(map[int64]float64, len(points))
	for _, p := range points {
		key := p.TimestampMS / bucketMS
		buckets[key] += models.ToFloat64(p.Volume)
	}

	return sortedValues(buckets)
}

// isoWeekKey orders (ISO year, ISO week) pairs as a single comparable value
func isoWeekKey(ts int64) int {
	year, week := time.UnixMilli(ts).ISOWeek()
	return year*100 + week
}

// WeeklyCloses groups price points by ISO calendar week and returns the most
// recent price of each week, oldest week first.
func WeeklyCloses(points []models.PricePoint) []float64 {
	if len(points) == 0 {
		return nil
	}

	weeks := make(map[int]float64, len(points))
	for _, p := range points {
		weeks[isoWeekKey(p.TimestampMS)] = models.ToFloat64(p.Price)
	}

	return sortedWeekValues(weeks)
}

// WeeklyVolumes groups volume points by ISO calendar week and returns the
// total volume of each week, oldest week first.
func WeeklyVolumes(points []models.VolumePoint) []float64 {
	if len(points) == 0 {
		return nil
	}

	weeks := make(map[int]float64, len(points))
	for _, p := range points {
		weeks[isoWeekKey(p.TimestampMS)] += models.ToFloat64(p.Volume)
	}

	return sortedWeekValues(weeks)
}

// WeeklyVolumesAligned returns weekly volume totals aligned 1:1 with the
// weeks present in the price points. Weeks that have prices but no volume
// observations contribute zero, keeping closes and volumes co-indexed for
// OBV on the weekly timeframe.
func WeeklyVolumesAligned(prices []models.PricePoint, volumes []models.VolumePoint) []float64 {
	if len(prices) == 0 {
		return nil
	}

	priceWeeks := make(map[int]struct{}, len(prices))
	for _, p := range prices {
		priceWeeks[isoWeekKey(p.TimestampMS)] = struct{}{}
	}

	volumeWeeks := make(map[int]float64, len(volumes))
	for _, v := range volumes {
		volumeWeeks[isoWeekKey(v.TimestampMS)] += models.ToFloat64(v.Volume)
	}

	keys := make([]int, 0, len(priceWeeks))
	for k := range priceWeeks {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = volumeWeeks[k]
	}
	return out
}

func sortedValues(buckets map[int64]float64) []float64 {
	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = buckets[k]
	}
	return out
}

func sortedWeekValues(weeks map[int]float64) []float64 {
	keys := make([]int, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = weeks[k]
	}
	return out
}
