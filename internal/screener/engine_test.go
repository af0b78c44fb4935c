package screener

import (
	"reflect"
	"testing"
	"time"

	"github.com/selivandex/rsi-screener/internal/analysis/sectors"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// chartStart anchors every synthetic chart so runs are reproducible
var chartStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// syntheticDailyChart builds a daily chart with a drift plus an alternating
// wobble so RSI never saturates
func syntheticDailyChart(days int, start, drift float64) models.MarketChart {
	chart := models.MarketChart{
		Prices:  make([]models.PricePoint, days),
		Volumes: make([]models.VolumePoint, days),
	}

	price := start
	for i := 0; i < days; i++ {
		wobble := 0.01
		if i%2 == 0 {
			wobble = -0.01
		}
		price *= 1 + drift + wobble

		ts := chartStart.Add(time.Duration(i) * 24 * time.Hour).UnixMilli()
		chart.Prices[i] = models.PricePoint{TimestampMS: ts, Price: models.NewDecimal(price)}
		chart.Volumes[i] = models.VolumePoint{TimestampMS: ts, Volume: models.NewDecimal(1000 + float64(i))}
	}
	return chart
}

func marketData(id, symbol string, price, mcap float64) models.MarketData {
	return models.MarketData{
		ID:           id,
		Symbol:       symbol,
		Name:         symbol,
		CurrentPrice: models.NewDecimal(price),
		MarketCap:    models.NewDecimal(mcap),
		TotalVolume:  models.NewDecimal(mcap / 20),
	}
}

// testInput builds a watchlist of benchmarks plus two altcoins with opposite
// trends, deep enough for both daily and weekly RSI
func testInput() Input {
	const days = 180

	return Input{
		Watchlist: []string{"bitcoin", "ethereum", "chainlink", "uniswap"},
		Markets: map[string]models.MarketData{
			"bitcoin":   marketData("bitcoin", "btc", 50000, 1e12),
			"ethereum":  marketData("ethereum", "eth", 3000, 4e11),
			"chainlink": marketData("chainlink", "link", 15, 1e10),
			"uniswap":   marketData("uniswap", "uni", 8, 5e9),
		},
		Daily: map[string]models.MarketChart{
			"bitcoin":   syntheticDailyChart(days, 40000, 0.002),
			"ethereum":  syntheticDailyChart(days, 2500, 0.002),
			"chainlink": syntheticDailyChart(days, 20, -0.004),
			"uniswap":   syntheticDailyChart(days, 6, 0.004),
		},
	}
}

func TestEngineRun(t *testing.T) {
	engine := NewEngine(sectors.Map{"chainlink": "DeFi", "uniswap": "DeFi"})

	t.Run("produces a record per chartable asset", func(t *testing.T) {
		snapshot := engine.Run(testInput())

		if len(snapshot.Records) != 4 {
			t.Fatalf("expected 4 records, got %d", len(snapshot.Records))
		}
		if snapshot.Failed != 0 {
			t.Errorf("expected no failures, got %d", snapshot.Failed)
		}
		if snapshot.BTCRegime == nil || snapshot.BTCWeeklyRSI == nil {
			t.Error("expected BTC benchmark fields")
		}
	})

	t.Run("counts chartless assets as failed", func(t *testing.T) {
		in := testInput()
		in.Watchlist = append(in.Watchlist, "ghost-asset")
		in.Markets["ghost-asset"] = marketData("ghost-asset", "ghost", 1, 1e8)

		snapshot := engine.Run(in)
		if snapshot.Failed != 1 {
			t.Errorf("expected 1 failed asset, got %d", snapshot.Failed)
		}
		for _, r := range snapshot.Records {
			if r.ID == "ghost-asset" {
				t.Error("failed asset must not appear in records")
			}
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		first := engine.Run(testInput())
		second := engine.Run(testInput())

		if !reflect.DeepEqual(first.Records, second.Records) {
			t.Error("identical inputs must produce identical records")
		}
		if !reflect.DeepEqual(first.SectorMomentum, second.SectorMomentum) {
			t.Error("sector momentum must be deterministic")
		}
	})

	t.Run("records sorted by final score with id tiebreak", func(t *testing.T) {
		snapshot := engine.Run(testInput())

		for i := 1; i < len(snapshot.Records); i++ {
			prev, cur := snapshot.Records[i-1], snapshot.Records[i]
			if cur.Opportunity.FinalScore > prev.Opportunity.FinalScore {
				t.Errorf("records out of order at %d: %.4f before %.4f", i, prev.Opportunity.FinalScore, cur.Opportunity.FinalScore)
			}
			if cur.Opportunity.FinalScore == prev.Opportunity.FinalScore && cur.ID < prev.ID {
				t.Errorf("tie at %d must break by ascending id", i)
			}
		}
	})

	t.Run("direction follows daily RSI midpoint", func(t *testing.T) {
		snapshot := engine.Run(testInput())

		for _, r := range snapshot.Records {
			want := models.DirectionShort
			if r.DailyRSI < 50 {
				want = models.DirectionLong
			}
			if r.Direction != want {
				t.Errorf("%s: RSI %.2f should map to %s, got %s", r.ID, r.DailyRSI, want, r.Direction)
			}
		}
	})

	t.Run("sector ranks mark extremes", func(t *testing.T) {
		snapshot := engine.Run(testInput())

		ranks := make(map[string]string)
		for _, r := range snapshot.Records {
			if r.Sector == "DeFi" {
				ranks[r.ID] = r.SectorRank
			}
		}
		if len(ranks) != 2 {
			t.Fatalf("expected 2 DeFi records, got %d", len(ranks))
		}
		// chainlink trends down (lower RSI), uniswap up
		if ranks["chainlink"] != SectorRankBest {
			t.Errorf("expected chainlink best, got %q", ranks["chainlink"])
		}
		if ranks["uniswap"] != SectorRankWorst {
			t.Errorf("expected uniswap worst, got %q", ranks["uniswap"])
		}
	})

	t.Run("daily timeframes present without hourly data", func(t *testing.T) {
		snapshot := engine.Run(testInput())

		record := snapshot.Records[0]
		for _, tf := range []models.Timeframe{models.Timeframe1d, models.Timeframe3d, models.Timeframe1w} {
			if _, ok := record.MultiTimeframe[tf]; !ok {
				t.Errorf("expected timeframe %s from daily chart", tf)
			}
		}
		for _, tf := range []models.Timeframe{models.Timeframe1h, models.Timeframe4h, models.Timeframe12h} {
			if _, ok := record.MultiTimeframe[tf]; ok {
				t.Errorf("timeframe %s must be absent without an hourly chart", tf)
			}
		}
	})

	t.Run("benchmarks carry betas", func(t *testing.T) {
		snapshot := engine.Run(testInput())

		for _, r := range snapshot.Records {
			if r.BetaBTC == nil {
				t.Errorf("%s: expected BTC beta with 180d of history", r.ID)
			}
		}
	})
}

func TestComputeTotal3(t *testing.T) {
	t.Run("excludes benchmarks and stablecoins", func(t *testing.T) {
		in := testInput()
		withStable := testInput()
		withStable.Watchlist = append(withStable.Watchlist, "tether")
		withStable.Markets["tether"] = marketData("tether", "usdt", 1, 1e11)
		withStable.Daily["tether"] = syntheticDailyChart(180, 1, 0)

		base := ComputeBenchmarks(in)
		stable := ComputeBenchmarks(withStable)

		if !reflect.DeepEqual(base.Total3Returns, stable.Total3Returns) {
			t.Error("a stablecoin must not move the Total3 index")
		}
		if base.Total3DailyRSI == nil {
			t.Error("expected Total3 RSI with two constituents")
		}
	})

	t.Run("absent without constituents", func(t *testing.T) {
		in := Input{
			Watchlist: []string{"bitcoin", "ethereum", "tether"},
			Markets: map[string]models.MarketData{
				"bitcoin":  marketData("bitcoin", "btc", 50000, 1e12),
				"ethereum": marketData("ethereum", "eth", 3000, 4e11),
				"tether":   marketData("tether", "usdt", 1, 1e11),
			},
			Daily: map[string]models.MarketChart{
				"bitcoin":  syntheticDailyChart(180, 40000, 0.002),
				"ethereum": syntheticDailyChart(180, 2500, 0.002),
				"tether":   syntheticDailyChart(180, 1, 0),
			},
		}

		bench := ComputeBenchmarks(in)
		if bench.Total3Returns != nil || bench.Total3DailyRSI != nil {
			t.Error("Total3 must be absent when only benchmarks and stablecoins are listed")
		}
	})
}
