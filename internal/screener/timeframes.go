package screener

import (
	"github.com/selivandex/rsi-screener/internal/analysis/indicators"
	"github.com/selivandex/rsi-screener/internal/analysis/rsi"
	"github.com/selivandex/rsi-screener/internal/analysis/series"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// divergenceLookback is the trailing window the divergence detector scans
const divergenceLookback = 14

// trailingHistory bounds the RSI/OBV history carried in output records
const trailingHistory = 30

// timeframeSeries is one resolution's co-indexed close and volume series
type timeframeSeries struct {
	closes  []float64
	volumes []float64
}

// buildTimeframeSeries resamples the hourly and daily charts into all six
// resolutions. Timeframes whose source chart is missing simply do not appear.
func buildTimeframeSeries(hourly, daily *models.MarketChart) map[models.Timeframe]timeframeSeries {
	out := make(map[models.Timeframe]timeframeSeries, len(models.Timeframes))

	if hourly != nil && len(hourly.Prices) > 0 {
		out[models.Timeframe1h] = timeframeSeries{
			closes:  models.ClosesFromPoints(hourly.Prices),
			volumes: models.VolumesFromPoints(hourly.Volumes),
		}
		out[models.Timeframe4h] = timeframeSeries{
			closes:  series.Closes(hourly.Prices, series.Bucket4h),
			volumes: series.Volumes(hourly.Volumes, series.Bucket4h),
		}
		out[models.Timeframe12h] = timeframeSeries{
			closes:  series.Closes(hourly.Prices, series.Bucket12h),
			volumes: series.Volumes(hourly.Volumes, series.Bucket12h),
		}
	}

	if daily != nil && len(daily.Prices) > 0 {
		out[models.Timeframe1d] = timeframeSeries{
			closes:  models.ClosesFromPoints(daily.Prices),
			volumes: models.VolumesFromPoints(daily.Volumes),
		}
		out[models.Timeframe3d] = timeframeSeries{
			closes:  series.Closes(daily.Prices, series.Bucket3d),
			volumes: series.Volumes(daily.Volumes, series.Bucket3d),
		}
		out[models.Timeframe1w] = timeframeSeries{
			closes:  series.WeeklyCloses(daily.Prices),
			volumes: series.WeeklyVolumesAligned(daily.Prices, daily.Volumes),
		}
	}

	return out
}

// multiTimeframeSignals computes RSI, divergence and OBV for every
// resolution that has enough history. A timeframe below the RSI warm-up
// window is omitted entirely; divergence and OBV degrade independently
// within a timeframe that has RSI.
func multiTimeframeSignals(hourly, daily *models.MarketChart) map[models.Timeframe]TimeframeSignals {
	resampled := buildTimeframeSeries(hourly, daily)
	if len(resampled) == 0 {
		return nil
	}

	out := make(map[models.Timeframe]TimeframeSignals, len(resampled))
	for _, tf := range models.Timeframes {
		ts, ok := resampled[tf]
		if !ok {
			continue
		}

		history := rsi.History(ts.closes, rsi.DefaultPeriod)
		if len(history) == 0 {
			continue
		}

		signals := TimeframeSignals{
			RSI:        history[len(history)-1],
			RSIHistory: tail(history, trailingHistory),
		}

		if len(ts.closes) >= divergenceLookback && len(history) >= divergenceLookback {
			signals.Divergence = indicators.DetectDivergence(
				tail(ts.closes, divergenceLookback),
				tail(history, divergenceLookback),
				divergenceLookback,
			)
		}

		if len(ts.closes) == len(ts.volumes) && len(ts.closes) >= 3 {
			if obv := indicators.OBV(ts.closes, ts.volumes); len(obv) >= 3 {
				signals.OBV = tail(obv, trailingHistory)
				signals.OBVAcceleration = indicators.CalculateOBVAcceleration(obv)
			}
		}

		out[tf] = signals
	}

	return out
}

// tail returns the trailing n elements, or the slice itself when shorter
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
