package screener

import (
	"sort"

	"github.com/selivandex/rsi-screener/internal/analysis/indicators"
	"github.com/selivandex/rsi-screener/internal/analysis/relative"
	"github.com/selivandex/rsi-screener/internal/analysis/rsi"
	"github.com/selivandex/rsi-screener/internal/analysis/sectors"
	"github.com/selivandex/rsi-screener/internal/analysis/series"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// Sector rank labels
const (
	SectorRankBest  = "best"
	SectorRankWorst = "worst"
)

// volatilityPeriod is the ATR period for the volatility detector
const volatilityPeriod = 14

// Engine assembles per-asset signal records from pre-fetched series. It holds
// no mutable state between runs: identical inputs produce identical outputs.
type Engine struct {
	sectorMap sectors.Map
}

// NewEngine creates an engine with an injected sector classification
func NewEngine(sectorMap sectors.Map) *Engine {
	return &Engine{sectorMap: sectorMap}
}

// Run executes the full pipeline: benchmark pre-pass, sector momentum
// pre-pass, per-asset record assembly, sector aggregation and ranking.
// Assets that cannot produce both a daily and a weekly RSI are excluded and
// counted in Failed; they never appear zero-filled in averages or rankings.
// The caller stamps RefreshID and GeneratedAt on the returned snapshot.
func (e *Engine) Run(in Input) *Snapshot {
	bench := ComputeBenchmarks(in)

	sectorAssets := e.collectSectorAssets(in)
	momentum := sectors.CalculateSectorMomentum(e.sectorMap, sectorAssets)

	snapshot := &Snapshot{
		SectorMomentum: momentum,
		BTCRegime:      bench.BTCRegime,
		BTCWeeklyRSI:   bench.BTCWeeklyRSI,
	}

	for _, id := range in.Watchlist {
		record, ok := e.buildRecord(in, bench, momentum, id)
		if !ok {
			snapshot.Failed++
			continue
		}
		snapshot.Records = append(snapshot.Records, record)
	}

	snapshot.SectorRSI = sectors.CalculateSectorRSI(e.sectorMap, sectorAssets)
	e.assignSectorRanks(snapshot.Records, sectorAssets)

	sort.SliceStable(snapshot.Records, func(i, j int) bool {
		a, b := snapshot.Records[i], snapshot.Records[j]
		if a.Opportunity.FinalScore != b.Opportunity.FinalScore {
			return a.Opportunity.FinalScore > b.Opportunity.FinalScore
		}
		return a.ID < b.ID
	})

	return snapshot
}

// collectSectorAssets gathers every watchlist asset with a computable daily
// RSI for the sector pre-pass. This set is wider than the final record set:
// an asset may join sector aggregates yet still fail the weekly requirement.
func (e *Engine) collectSectorAssets(in Input) []sectors.Asset {
	var assets []sectors.Asset
	for _, id := range in.Watchlist {
		market, hasMarket := in.Markets[id]
		chart, hasChart := in.Daily[id]
		if !hasMarket || !hasChart {
			continue
		}

		history := rsi.History(models.ClosesFromPoints(chart.Prices), rsi.DefaultPeriod)
		if len(history) == 0 {
			continue
		}

		assets = append(assets, sectors.Asset{
			ID:         id,
			DailyRSI:   history[len(history)-1],
			MarketCap:  models.ToFloat64(market.MarketCap),
			RSIHistory: tail(history, trailingHistory),
		})
	}
	return assets
}

func (e *Engine) buildRecord(in Input, bench Benchmarks, momentum map[string]sectors.Momentum, id string) (SignalRecord, bool) {
	market, hasMarket := in.Markets[id]
	chart, hasChart := in.Daily[id]
	if !hasMarket || !hasChart {
		return SignalRecord{}, false
	}

	dailyCloses := models.ClosesFromPoints(chart.Prices)
	dailyRSIHistory := rsi.History(dailyCloses, rsi.DefaultPeriod)

	weeklyCloses := series.WeeklyCloses(chart.Prices)
	weeklyRSIHistory := rsi.History(weeklyCloses, rsi.DefaultPeriod)

	if len(dailyRSIHistory) == 0 || len(weeklyRSIHistory) == 0 {
		return SignalRecord{}, false
	}
	dailyRSI := dailyRSIHistory[len(dailyRSIHistory)-1]
	weeklyRSI := weeklyRSIHistory[len(weeklyRSIHistory)-1]

	volume := models.ToFloat64(market.TotalVolume)
	mcap := models.ToFloat64(market.MarketCap)
	volMcapRatio := 0.0
	if mcap > 0 {
		volMcapRatio = volume / mcap
	}

	record := SignalRecord{
		ID:           id,
		Symbol:       models.NormalizeSymbol(market.Symbol),
		Name:         market.Name,
		Price:        models.ToFloat64(market.CurrentPrice),
		Volume:       volume,
		MarketCap:    mcap,
		VolMcapRatio: volMcapRatio,
		DailyRSI:     dailyRSI,
		WeeklyRSI:    weeklyRSI,
		RSIHistory:   tail(dailyRSIHistory, trailingHistory),
		Sector:       e.sectorMap.Sector(id),
	}

	record.Direction = models.DirectionShort
	if dailyRSI < 50 {
		record.Direction = models.DirectionLong
	}

	assetReturns := relative.Returns(dailyCloses)
	record.BetaBTC = betaAgainst(assetReturns, bench.BTCReturns, dailyRSI, bench.BTCDailyRSI)
	record.BetaETH = betaAgainst(assetReturns, bench.ETHReturns, dailyRSI, bench.ETHDailyRSI)
	record.BetaTotal3 = betaAgainst(assetReturns, bench.Total3Returns, dailyRSI, bench.Total3DailyRSI)

	record.LifecycleOversold = indicators.ClassifySignalLifecycle(dailyRSIHistory, indicators.OversoldThreshold, true)
	record.LifecycleOverbought = indicators.ClassifySignalLifecycle(dailyRSIHistory, indicators.OverboughtThreshold, false)
	record.Volatility = indicators.DetectVolatilityRegime(dailyCloses, volatilityPeriod)
	record.Acceleration = indicators.CalculateRSIAcceleration(dailyRSIHistory)
	record.PriceAccel = indicators.CalculatePriceAcceleration(dailyCloses)
	record.ZScore = indicators.ZScore(dailyRSIHistory, indicators.DefaultZScoreLookback)
	record.PriceChangePct = priceChangeSinceEntry(record, dailyCloses)

	if len(dailyCloses) >= divergenceLookback && len(dailyRSIHistory) >= divergenceLookback {
		record.DailyDivergence = indicators.DetectDivergence(
			tail(dailyCloses, divergenceLookback),
			tail(dailyRSIHistory, divergenceLookback),
			divergenceLookback,
		)
	}
	if len(weeklyCloses) >= divergenceLookback && len(weeklyRSIHistory) >= divergenceLookback {
		record.WeeklyDivergence = indicators.DetectDivergence(
			tail(weeklyCloses, divergenceLookback),
			tail(weeklyRSIHistory, divergenceLookback),
			divergenceLookback,
		)
	}
	record.DivergenceScore = indicators.DivergenceScore(record.DailyDivergence, record.WeeklyDivergence)
	record.DivergenceType = dominantDivergenceType(record.DailyDivergence, record.WeeklyDivergence)

	if rate, ok := in.Funding[id]; ok {
		r := rate
		record.FundingRate = &r
		record.FundingConfluence = indicators.DetectFundingConfluence(dailyRSI, &r)
	}

	record.MeanReversion = indicators.CalculateMeanReversionProb(dailyRSIHistory, dailyRSI, indicators.DefaultZScoreLookback)
	record.Persistence = indicators.CalculateSignalPersistence(dailyRSIHistory, dailyCloses, indicators.DefaultPersistenceThreshold)

	record.Opportunity = indicators.CalculateOpportunityScore(e.opportunityInputs(record, momentum))

	var hourly *models.MarketChart
	if h, ok := in.Hourly[id]; ok {
		hourly = &h
	}
	record.MultiTimeframe = multiTimeframeSignals(hourly, &chart)

	return record, true
}

// opportunityInputs assembles the scoring factors from an otherwise complete
// record. Missing detectors contribute their neutral value.
func (e *Engine) opportunityInputs(record SignalRecord, momentum map[string]sectors.Momentum) indicators.OpportunityInputs {
	in := indicators.OpportunityInputs{
		DivergenceScore: record.DivergenceScore,
		WeeklyExtreme:   record.WeeklyRSI < indicators.OversoldThreshold || record.WeeklyRSI > indicators.OverboughtThreshold,
	}

	if record.ZScore != nil {
		in.ZScore = record.ZScore.ZScore
	}

	if record.Direction == models.DirectionLong {
		if record.LifecycleOversold != nil {
			in.DaysInZone = record.LifecycleOversold.DaysInZone
		}
	} else if record.LifecycleOverbought != nil {
		in.DaysInZone = record.LifecycleOverbought.DaysInZone
	}

	in.VolatilityCompressed = record.Volatility != nil && record.Volatility.Regime == indicators.VolatilityCompressed

	if m, ok := momentum[record.Sector]; ok {
		in.SectorTurning = m.IsRotationSignal
	}

	in.FundingAligned = record.FundingConfluence != nil && record.FundingConfluence.Aligned

	// Holding up better than expected on a long setup, or falling faster
	// than expected on a short one, both count as favorable decorrelation
	if record.BetaBTC != nil {
		switch record.Direction {
		case models.DirectionLong:
			in.DecorrelationPositive = record.BetaBTC.Interpretation == relative.Outperforming
		case models.DirectionShort:
			in.DecorrelationPositive = record.BetaBTC.Interpretation == relative.Underperforming
		}
	}

	return in
}

// betaAgainst aligns both return series to their common trailing window and
// computes the beta-adjusted RSI. Nil when the benchmark is absent or either
// side lacks 30 aligned points.
func betaAgainst(assetReturns, benchReturns []float64, assetRSI float64, benchRSI *float64) *relative.BetaAdjusted {
	if benchRSI == nil || len(assetReturns) == 0 || len(benchReturns) == 0 {
		return nil
	}
	aligned, alignedBench := relative.AlignTail(assetReturns, benchReturns)
	return relative.BetaAdjustedRSI(aligned, alignedBench, assetRSI, *benchRSI)
}

// priceChangeSinceEntry reports the percent move since the close before the
// active lifecycle zone was entered. The oversold lifecycle takes precedence
// when both are somehow active. Nil when no signal is active or the entry
// close is unavailable.
func priceChangeSinceEntry(record SignalRecord, dailyCloses []float64) *float64 {
	lifecycle := record.LifecycleOversold
	if !lifecycle.Active() {
		lifecycle = record.LifecycleOverbought
	}
	if !lifecycle.Active() || record.Price <= 0 {
		return nil
	}

	days := lifecycle.DaysInZone
	if days <= 0 || days > len(dailyCloses) {
		return nil
	}

	entry := dailyCloses[0]
	if days+1 <= len(dailyCloses) {
		entry = dailyCloses[len(dailyCloses)-(days+1)]
	}
	if entry <= 0 {
		return nil
	}

	change := (record.Price - entry) / entry * 100
	return &change
}

// dominantDivergenceType prefers the daily signal over the weekly one
func dominantDivergenceType(daily, weekly *indicators.Divergence) string {
	if daily.Present() {
		return daily.Type
	}
	if weekly.Present() {
		return weekly.Type
	}
	return indicators.DivergenceNone
}

// assignSectorRanks marks the most oversold asset in each sector as best and
// the most overbought as worst, for sectors with at least two ranked assets
func (e *Engine) assignSectorRanks(records []SignalRecord, assets []sectors.Asset) {
	type entry struct {
		id  string
		rsi float64
	}

	bySector := make(map[string][]entry)
	for _, a := range assets {
		sector := e.sectorMap.Sector(a.ID)
		bySector[sector] = append(bySector[sector], entry{id: a.ID, rsi: a.DailyRSI})
	}

	for i := range records {
		members := bySector[records[i].Sector]
		if len(members) < 2 {
			continue
		}

		sort.Slice(members, func(a, b int) bool {
			if members[a].rsi != members[b].rsi {
				return members[a].rsi < members[b].rsi
			}
			return members[a].id < members[b].id
		})

		switch records[i].ID {
		case members[0].id:
			records[i].SectorRank = SectorRankBest
		case members[len(members)-1].id:
			records[i].SectorRank = SectorRankWorst
		}
	}
}
