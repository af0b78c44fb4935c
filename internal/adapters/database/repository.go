package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/rsi-screener/internal/analysis/sectors"
	"github.com/selivandex/rsi-screener/pkg/models"
)

// Repository handles watchlist and sector mapping storage
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new screener repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetWatchlist returns enabled watchlist entries ordered by asset id
func (r *Repository) GetWatchlist(ctx context.Context) ([]models.WatchlistEntry, error) {
	query := `
		SELECT asset_id, symbol
		FROM watchlist
		WHERE enabled = TRUE
		ORDER BY asset_id
	`

	var entries []models.WatchlistEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return entries, nil
}

// AddWatchlistEntry inserts or re-enables a watchlist entry
func (r *Repository) AddWatchlistEntry(ctx context.Context, entry models.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (asset_id, symbol, enabled, added_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (asset_id)
		DO UPDATE SET
			symbol = EXCLUDED.symbol,
			enabled = TRUE
	`

	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.Symbol); err != nil {
		return fmt.Errorf("failed to add watchlist entry: %w", err)
	}
	return nil
}

// DisableWatchlistEntry soft-removes an asset from screening
func (r *Repository) DisableWatchlistEntry(ctx context.Context, assetID string) error {
	query := `UPDATE watchlist SET enabled = FALSE WHERE asset_id = $1`

	if _, err := r.db.ExecContext(ctx, query, assetID); err != nil {
		return fmt.Errorf("failed to disable watchlist entry: %w", err)
	}
	return nil
}

// GetSectorMap loads the asset-to-sector classification used by the engine.
// Assets missing from the map classify as "Other" downstream.
func (r *Repository) GetSectorMap(ctx context.Context) (sectors.Map, error) {
	query := `SELECT asset_id, sector FROM sector_mappings`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load sector mappings: %w", err)
	}
	defer rows.Close()

	sectorMap := make(sectors.Map)
	for rows.Next() {
		var assetID, sector string
		if err := rows.Scan(&assetID, &sector); err != nil {
			return nil, fmt.Errorf("failed to scan sector mapping: %w", err)
		}
		sectorMap[assetID] = sector
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sector mappings: %w", err)
	}

	return sectorMap, nil
}

// RecordRefresh stores cycle bookkeeping for the health endpoint and audits
func (r *Repository) RecordRefresh(ctx context.Context, refreshID string, generatedAt time.Time, processed, failed int) error {
	query := `
		INSERT INTO refresh_log (refresh_id, generated_at, processed, failed)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, refreshID, generatedAt, processed, failed); err != nil {
		return fmt.Errorf("failed to record refresh: %w", err)
	}
	return nil
}

// LastRefreshAt returns when the most recent refresh completed
func (r *Repository) LastRefreshAt(ctx context.Context) (time.Time, error) {
	query := `SELECT COALESCE(MAX(generated_at), 'epoch'::timestamptz) FROM refresh_log`

	var ts time.Time
	if err := r.db.GetContext(ctx, &ts, query); err != nil {
		return time.Time{}, fmt.Errorf("failed to read last refresh: %w", err)
	}
	return ts, nil
}
