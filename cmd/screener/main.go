package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/lib/pq"
	"github.com/selivandex/rsi-screener/internal/adapters/clickhouse"
	"github.com/selivandex/rsi-screener/internal/adapters/config"
	"github.com/selivandex/rsi-screener/internal/adapters/database"
	"github.com/selivandex/rsi-screener/internal/adapters/funding"
	"github.com/selivandex/rsi-screener/internal/adapters/price"
	redisAdapter "github.com/selivandex/rsi-screener/internal/adapters/redis"
	"github.com/selivandex/rsi-screener/internal/adapters/telegram"
	"github.com/selivandex/rsi-screener/internal/health"
	"github.com/selivandex/rsi-screener/internal/workers"
	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/worker"
)

const migrationsPath = "./migrations"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nreceived interrupt, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("rsi screener starting",
		zap.Duration("refresh_interval", cfg.Screener.RefreshInterval),
	)

	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := initRedis(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Snapshot history is optional; the screener keeps running without it
	clickhouseRepo := initClickHouse(cfg)

	repo := database.NewRepository(db.DB())
	provider := price.NewCoinGeckoProvider(cfg.CoinGecko)
	fundingClient := initFundingClient(cfg)
	notifier := initTelegramNotifier(cfg)

	chartCache := redisAdapter.NewChartCache(redisClient, cfg.Screener.HourlyCacheTTL)
	refreshLock := redisAdapter.NewDistributedLock(redisClient.GetLockManager(), "refresh", cfg.Screener.LockTTL)

	refreshWorker := workers.NewRefreshWorker(
		repo,
		provider,
		fundingClient,
		chartCache,
		refreshLock,
		clickhouseRepo,
		notifier,
		cfg,
	)

	workerGroup := worker.NewWorkerGroup(ctx)
	workerGroup.Add(refreshWorker, cfg.Screener.RefreshInterval)
	workerGroup.Start()

	healthServer := startHealthServer(cfg, db, redisClient, repo)

	<-ctx.Done()

	return shutdown(healthServer, workerGroup, db, redisClient)
}

func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), migrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func initRedis(cfg *config.Config) (*redisAdapter.Client, error) {
	redisClient, err := redisAdapter.New(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if err := redisClient.Health(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("redis health check failed: %w", err)
	}

	return redisClient, nil
}

// initClickHouse returns nil when ClickHouse is disabled or unreachable;
// snapshot persistence is skipped either way
func initClickHouse(cfg *config.Config) *clickhouse.Repository {
	if !cfg.ClickHouse.Enabled {
		logger.Info("clickhouse disabled, snapshot history off")
		return nil
	}

	ch, err := database.NewClickHouse(cfg.ClickHouse.GetDSN())
	if err != nil {
		logger.Warn("clickhouse unavailable, snapshot history off", zap.Error(err))
		return nil
	}

	if err := ch.DB().Ping(); err != nil {
		ch.Close()
		logger.Warn("clickhouse ping failed, snapshot history off", zap.Error(err))
		return nil
	}

	logger.Info("clickhouse connected",
		zap.String("host", cfg.ClickHouse.Host),
		zap.String("database", cfg.ClickHouse.Database),
	)

	return clickhouse.NewRepository(ch.DB())
}

func initFundingClient(cfg *config.Config) *funding.BinanceClient {
	if !cfg.Funding.Enabled {
		logger.Info("funding rate source disabled")
		return nil
	}

	fundingClient, err := funding.NewBinanceClient()
	if err != nil {
		logger.Warn("funding client init failed, confluence factor off", zap.Error(err))
		return nil
	}

	return fundingClient
}

func initTelegramNotifier(cfg *config.Config) *telegram.Notifier {
	if !cfg.Telegram.Enabled {
		logger.Info("telegram alerts disabled")
		return nil
	}

	notifier, err := telegram.NewNotifier(&cfg.Telegram)
	if err != nil {
		logger.Warn("telegram notifier init failed, alerts off", zap.Error(err))
		return nil
	}

	return notifier
}

func startHealthServer(cfg *config.Config, db *database.DB, redisClient *redisAdapter.Client, repo *database.Repository) *health.Server {
	healthServer := health.NewServer(cfg.Health.Addr, db, redisClient, repo)

	go func() {
		if err := healthServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	healthServer.SetReady(true)

	logger.Info("rsi screener ready",
		zap.String("health_addr", cfg.Health.Addr),
	)

	return healthServer
}

func shutdown(healthServer *health.Server, workerGroup *worker.WorkerGroup, db *database.DB, redisClient *redisAdapter.Client) error {
	logger.Info("starting graceful shutdown")

	healthServer.SetReady(false)

	// Kubernetes allows 30s by default; leave headroom for the in-flight
	// refresh to release its lock
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	workerGroup.Stop(20 * time.Second)

	if err := db.Close(); err != nil {
		logger.Error("database close error", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		logger.Error("redis close error", zap.Error(err))
	}
	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.Error("health server stop error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	logger.Sync()
	return nil
}
