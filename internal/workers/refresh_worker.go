package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/internal/adapters/clickhouse"
	"github.com/selivandex/rsi-screener/internal/adapters/config"
	"github.com/selivandex/rsi-screener/internal/adapters/database"
	"github.com/selivandex/rsi-screener/internal/adapters/funding"
	"github.com/selivandex/rsi-screener/internal/adapters/price"
	"github.com/selivandex/rsi-screener/internal/adapters/redis"
	"github.com/selivandex/rsi-screener/internal/adapters/telegram"
	"github.com/selivandex/rsi-screener/internal/analysis/sectors"
	"github.com/selivandex/rsi-screener/internal/screener"
	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// RefreshWorker runs the full screening cycle: fetch market data, run the
// engine, persist snapshots and send alerts. A distributed lock ensures only
// one replica refreshes at a time.
type RefreshWorker struct {
	repo          *database.Repository
	provider      price.Provider
	fundingClient *funding.BinanceClient
	chartCache    *redis.ChartCache
	lock          *redis.DistributedLock
	clickhouse    *clickhouse.Repository
	notifier      *telegram.Notifier
	cfg           *config.Config
}

// NewRefreshWorker creates new refresh worker. fundingClient, clickhouse and
// notifier may be nil; their steps are skipped.
func NewRefreshWorker(
	repo *database.Repository,
	provider price.Provider,
	fundingClient *funding.BinanceClient,
	chartCache *redis.ChartCache,
	lock *redis.DistributedLock,
	clickhouseRepo *clickhouse.Repository,
	notifier *telegram.Notifier,
	cfg *config.Config,
) *RefreshWorker {
	return &RefreshWorker{
		repo:          repo,
		provider:      provider,
		fundingClient: fundingClient,
		chartCache:    chartCache,
		lock:          lock,
		clickhouse:    clickhouseRepo,
		notifier:      notifier,
		cfg:           cfg,
	}
}

// Name returns worker name
func (w *RefreshWorker) Name() string {
	return "screener_refresh"
}

// Run executes one refresh cycle
// Called periodically by pkg/worker.PeriodicWorker
func (w *RefreshWorker) Run(ctx context.Context) error {
	acquired, err := w.lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		logger.Info("refresh skipped, another replica holds the lock")
		return nil
	}
	defer w.lock.Release(ctx)

	startTime := time.Now()

	entries, err := w.repo.GetWatchlist(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logger.Warn("watchlist is empty, nothing to screen")
		return nil
	}

	sectorMap, err := w.repo.GetSectorMap(ctx)
	if err != nil {
		// Unmapped assets classify as "Other", so screening proceeds
		logger.Warn("failed to load sector mappings, all assets fall back to Other",
			zap.Error(err),
		)
		sectorMap = make(sectors.Map)
	}

	input, err := w.gatherInput(ctx, entries)
	if err != nil {
		return err
	}

	snapshot := screener.NewEngine(sectorMap).Run(*input)
	snapshot.RefreshID = uuid.NewString()
	snapshot.GeneratedAt = time.Now().UTC()

	w.persistSnapshot(ctx, snapshot)

	if err := w.repo.RecordRefresh(ctx, snapshot.RefreshID, snapshot.GeneratedAt, len(snapshot.Records), snapshot.Failed); err != nil {
		logger.Warn("failed to record refresh bookkeeping",
			zap.String("refresh_id", snapshot.RefreshID),
			zap.Error(err),
		)
	}

	if w.notifier != nil {
		if err := w.notifier.SendOpportunityAlert(snapshot, w.cfg.Screener.AlertTopN, w.cfg.Screener.AlertScoreFloor); err != nil {
			logger.Warn("failed to send opportunity alert",
				zap.String("refresh_id", snapshot.RefreshID),
				zap.Error(err),
			)
		}
	}

	logger.Info("refresh cycle completed",
		zap.String("refresh_id", snapshot.RefreshID),
		zap.Int("processed", len(snapshot.Records)),
		zap.Int("failed", snapshot.Failed),
		zap.Duration("duration", time.Since(startTime)),
	)

	return nil
}

// gatherInput fetches everything the engine needs for one cycle. Market data
// and daily history are required; hourly history and funding are optional and
// degrade to a narrower feature set when unavailable.
func (w *RefreshWorker) gatherInput(ctx context.Context, entries []models.WatchlistEntry) (*screener.Input, error) {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}

	marketList, err := w.provider.GetMarketData(ctx, ids)
	if err != nil {
		return nil, err
	}
	markets := make(map[string]models.MarketData, len(marketList))
	for _, market := range marketList {
		markets[market.ID] = market
	}

	daily, err := w.provider.GetMarketCharts(ctx, ids, w.cfg.CoinGecko.DailyDays)
	if err != nil {
		return nil, err
	}

	return &screener.Input{
		Watchlist: ids,
		Markets:   markets,
		Daily:     daily,
		Hourly:    w.fetchHourly(ctx, ids),
		Funding:   w.fetchFunding(ctx, entries),
	}, nil
}

// fetchHourly serves the hourly batch from cache when fresh, fetching and
// re-caching on a miss. Returns nil on failure, which drops the intraday
// timeframes for this cycle only.
func (w *RefreshWorker) fetchHourly(ctx context.Context, ids []string) map[string]models.MarketChart {
	if charts, ok := w.chartCache.GetHourly(ctx); ok {
		logger.Debug("hourly charts served from cache",
			zap.Int("count", len(charts)),
		)
		return charts
	}

	charts, err := w.provider.GetHourlyCharts(ctx, ids, w.cfg.CoinGecko.HourlyDays)
	if err != nil {
		logger.Warn("failed to fetch hourly charts, intraday timeframes dropped this cycle",
			zap.Error(err),
		)
		return nil
	}

	if err := w.chartCache.SetHourly(ctx, charts); err != nil {
		logger.Warn("failed to cache hourly charts", zap.Error(err))
	}

	return charts
}

// fetchFunding resolves perp funding per asset id. Funding is an optional
// confluence factor; any failure returns an empty map.
func (w *RefreshWorker) fetchFunding(ctx context.Context, entries []models.WatchlistEntry) map[string]float64 {
	if w.fundingClient == nil {
		return nil
	}

	symbols := make([]string, len(entries))
	symbolToID := make(map[string]string, len(entries))
	for i, entry := range entries {
		symbol := models.NormalizeSymbol(entry.Symbol)
		symbols[i] = symbol
		symbolToID[symbol] = entry.ID
	}

	rates, err := w.fundingClient.FetchRates(ctx, symbols)
	if err != nil {
		logger.Warn("failed to fetch funding rates, confluence factor dropped this cycle",
			zap.Error(err),
		)
		return nil
	}

	byAsset := make(map[string]float64, len(rates))
	for symbol, rate := range rates {
		if id, ok := symbolToID[symbol]; ok {
			byAsset[id] = models.ToFloat64(rate.Rate)
		}
	}

	logger.Debug("funding rates resolved",
		zap.Int("count", len(byAsset)),
	)

	return byAsset
}

// persistSnapshot writes the cycle's history rows to ClickHouse. Snapshot
// persistence is best-effort and never fails the cycle.
func (w *RefreshWorker) persistSnapshot(ctx context.Context, snapshot *screener.Snapshot) {
	if w.clickhouse == nil {
		return
	}

	if err := w.clickhouse.SaveSignalSnapshots(ctx, snapshot); err != nil {
		logger.Warn("failed to save signal snapshots",
			zap.String("refresh_id", snapshot.RefreshID),
			zap.Error(err),
		)
	}

	if err := w.clickhouse.SaveSectorSnapshots(ctx, snapshot); err != nil {
		logger.Warn("failed to save sector snapshots",
			zap.String("refresh_id", snapshot.RefreshID),
			zap.Error(err),
		)
	}
}
