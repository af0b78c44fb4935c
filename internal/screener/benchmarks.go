package screener

import (
	"github.com/selivandex/rsi-screener/internal/analysis/indicators"
	"github.com/selivandex/rsi-screener/internal/analysis/relative"
	"github.com/selivandex/rsi-screener/internal/analysis/rsi"
	"github.com/selivandex/rsi-screener/internal/analysis/series"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// Benchmark asset ids
const (
	assetBTC = "bitcoin"
	assetETH = "ethereum"
)

// total3Seed is the starting price of the synthetic altcoin index
const total3Seed = 100.0

// minBetaReturns is the aligned sample-size floor shared with the beta
// calculation
const minBetaReturns = 30

// stablecoinIDs are excluded from the Total3 index alongside BTC and ETH
var stablecoinIDs = map[string]struct{}{
	"tether":         {},
	"usd-coin":       {},
	"dai":            {},
	"binance-usd":    {},
	"true-usd":       {},
	"frax":           {},
	"paxos-standard": {},
}

// Benchmarks holds the reference series every per-asset beta computation
// aligns against. Nil RSI pointers mean that benchmark is unavailable this
// cycle and the corresponding beta is simply omitted.
type Benchmarks struct {
	BTCRegime    *indicators.Regime
	BTCWeeklyRSI *float64

	BTCReturns  []float64
	BTCDailyRSI *float64

	ETHReturns  []float64
	ETHDailyRSI *float64

	Total3Returns  []float64
	Total3DailyRSI *float64
}

// ComputeBenchmarks runs the pre-pass that must finish before any per-asset
// beta: BTC regime from weekly RSI, BTC/ETH daily returns and RSI, and the
// synthetic Total3 altcoin index.
func ComputeBenchmarks(in Input) Benchmarks {
	var b Benchmarks

	if btc, ok := in.Daily[assetBTC]; ok {
		weeklyCloses := series.WeeklyCloses(btc.Prices)
		if weeklyHistory := rsi.History(weeklyCloses, rsi.DefaultPeriod); len(weeklyHistory) > 0 {
			weekly := weeklyHistory[len(weeklyHistory)-1]
			b.BTCWeeklyRSI = &weekly
			b.BTCRegime = indicators.DetectRegime(weeklyHistory)
		}

		b.BTCReturns = relative.Returns(models.ClosesFromPoints(btc.Prices))
		if daily, ok := rsi.Value(models.ClosesFromPoints(btc.Prices), rsi.DefaultPeriod); ok {
			b.BTCDailyRSI = &daily
		}
	}

	if eth, ok := in.Daily[assetETH]; ok {
		b.ETHReturns = relative.Returns(models.ClosesFromPoints(eth.Prices))
		if daily, ok := rsi.Value(models.ClosesFromPoints(eth.Prices), rsi.DefaultPeriod); ok {
			b.ETHDailyRSI = &daily
		}
	}

	b.Total3Returns, b.Total3DailyRSI = computeTotal3(in)

	return b
}

// computeTotal3 builds a market-cap weighted return series over every
// watchlist altcoin (BTC, ETH and stablecoins excluded), then reconstructs a
// synthetic price series seeded at 100 to derive the index RSI. Requires at
// least 30 aligned return points; otherwise the index is absent this cycle.
func computeTotal3(in Input) ([]float64, *float64) {
	type constituent struct {
		returns   []float64
		marketCap float64
	}

	var members []constituent
	for _, id := range in.Watchlist {
		if id == assetBTC || id == assetETH {
			continue
		}
		if _, stable := stablecoinIDs[id]; stable {
			continue
		}

		chart, ok := in.Daily[id]
		if !ok {
			continue
		}
		market, ok := in.Markets[id]
		if !ok {
			continue
		}
		mcap := models.ToFloat64(market.MarketCap)
		if mcap <= 0 {
			continue
		}

		returns := relative.Returns(models.ClosesFromPoints(chart.Prices))
		if len(returns) == 0 {
			continue
		}
		members = append(members, constituent{returns: returns, marketCap: mcap})
	}
	if len(members) == 0 {
		return nil, nil
	}

	minLen := len(members[0].returns)
	for _, m := range members[1:] {
		if len(m.returns) < minLen {
			minLen = len(m.returns)
		}
	}
	if minLen < minBetaReturns {
		return nil, nil
	}

	var totalCap float64
	for _, m := range members {
		totalCap += m.marketCap
	}

	indexReturns := make([]float64, minLen)
	for day := 0; day < minLen; day++ {
		var weighted float64
		for _, m := range members {
			idx := len(m.returns) - minLen + day
			weighted += m.returns[idx] * m.marketCap / totalCap
		}
		indexReturns[day] = weighted
	}

	prices := make([]float64, 0, minLen+1)
	prices = append(prices, total3Seed)
	for _, r := range indexReturns {
		prices = append(prices, prices[len(prices)-1]*(1+r))
	}

	var dailyRSI *float64
	if history := rsi.History(prices, rsi.DefaultPeriod); len(history) > 0 {
		v := history[len(history)-1]
		dailyRSI = &v
	}

	return indexReturns, dailyRSI
}
