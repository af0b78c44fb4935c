// Package clickhouse persists refresh snapshots to insert-only history
// tables for offline analysis. Snapshot writes are best-effort: a failed
// insert is logged by the caller, never fails the refresh cycle.
package clickhouse

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/rsi-screener/internal/screener"
	"github.com/selivandex/rsi-screener/pkg/logger"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// Repository handles ClickHouse data operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new ClickHouse repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveSignalSnapshots writes one row per ranked record for the refresh
func (r *Repository) SaveSignalSnapshots(ctx context.Context, snapshot *screener.Snapshot) error {
	if len(snapshot.Records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.Preparex(`
		INSERT INTO signal_snapshots
		(refresh_id, generated_at, asset_id, symbol, sector, sector_rank,
		 signal_direction, price, market_cap, vol_mcap_ratio,
		 daily_rsi, weekly_rsi, zscore, divergence_type, divergence_score,
		 volatility_regime, lifecycle_state, days_in_zone,
		 base_score, freshness_multiplier, confluence_multiplier, final_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range snapshot.Records {
		zscore := 0.0
		if record.ZScore != nil {
			zscore = record.ZScore.ZScore
		}

		volRegime := ""
		if record.Volatility != nil {
			volRegime = record.Volatility.Regime
		}

		lifecycleState, daysInZone := activeLifecycle(record)

		_, err = stmt.ExecContext(ctx,
			snapshot.RefreshID,
			snapshot.GeneratedAt,
			record.ID,
			record.Symbol,
			record.Sector,
			record.SectorRank,
			string(record.Direction),
			record.Price,
			record.MarketCap,
			record.VolMcapRatio,
			record.DailyRSI,
			record.WeeklyRSI,
			zscore,
			record.DivergenceType,
			record.DivergenceScore,
			volRegime,
			lifecycleState,
			daysInZone,
			record.Opportunity.BaseScore,
			record.Opportunity.FreshnessMultiplier,
			record.Opportunity.ConfluenceMultiplier,
			record.Opportunity.FinalScore,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert signal snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("saved signal snapshots to ClickHouse",
		zap.String("refresh_id", snapshot.RefreshID),
		zap.Int("count", len(snapshot.Records)),
	)

	return nil
}

// SaveSectorSnapshots writes one row per sector aggregate for the refresh
func (r *Repository) SaveSectorSnapshots(ctx context.Context, snapshot *screener.Snapshot) error {
	if len(snapshot.SectorMomentum) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.Preparex(`
		INSERT INTO sector_snapshots
		(refresh_id, generated_at, sector, weighted_rsi, rsi_7d_ago,
		 change_7d, is_rotation_signal, days_since_bottom, asset_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for sector, momentum := range snapshot.SectorMomentum {
		_, err = stmt.ExecContext(ctx,
			snapshot.RefreshID,
			snapshot.GeneratedAt,
			sector,
			momentum.CurrentRSI,
			momentum.RSI7dAgo,
			momentum.Change7d,
			momentum.IsRotationSignal,
			momentum.DaysSinceBottom,
			momentum.Count,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert sector snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("saved sector snapshots to ClickHouse",
		zap.String("refresh_id", snapshot.RefreshID),
		zap.Int("count", len(snapshot.SectorMomentum)),
	)

	return nil
}

// activeLifecycle picks the lifecycle matching the record's direction
func activeLifecycle(record screener.SignalRecord) (string, int) {
	lifecycle := record.LifecycleOversold
	if record.Direction == models.DirectionShort {
		lifecycle = record.LifecycleOverbought
	}
	if lifecycle == nil {
		return "", 0
	}
	return lifecycle.State, lifecycle.DaysInZone
}
