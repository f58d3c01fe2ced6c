package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SchemaVersion is stamped into the configs table after a migration run
const SchemaVersion = "1"

// Schema statements, applied in order. Primary keys are opaque text
// identifiers; array columns hold exchange/timeframe lists; foreign keys
// cascade delete category -> asset -> {candle, current_candle}.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		key TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		icon TEXT NOT NULL,
		exchanges TEXT[] NOT NULL,
		timeframes TEXT[] NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS categories_key_idx ON categories(key)`,

	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		symbol TEXT UNIQUE NOT NULL,
		exchange TEXT NOT NULL,
		ticker TEXT NOT NULL,
		description TEXT NOT NULL,
		type TEXT NOT NULL,
		category_key TEXT NOT NULL,
		search_query TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_update TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (category_key) REFERENCES categories(key) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS assets_symbol_idx ON assets(symbol)`,
	`CREATE INDEX IF NOT EXISTS assets_exchange_idx ON assets(exchange)`,
	`CREATE INDEX IF NOT EXISTS assets_category_key_idx ON assets(category_key)`,
	`CREATE INDEX IF NOT EXISTS assets_is_active_idx ON assets(is_active)`,

	`CREATE TABLE IF NOT EXISTS candles (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
		datetime TIMESTAMP NOT NULL,
		open DOUBLE PRECISION NOT NULL,
		high DOUBLE PRECISION NOT NULL,
		low DOUBLE PRECISION NOT NULL,
		close DOUBLE PRECISION NOT NULL,
		volume DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (asset_id) REFERENCES assets(id) ON DELETE CASCADE,
		UNIQUE (asset_id, timeframe, timestamp)
	)`,
	`CREATE INDEX IF NOT EXISTS candles_symbol_timeframe_timestamp_idx ON candles(symbol, timeframe, timestamp)`,
	`CREATE INDEX IF NOT EXISTS candles_asset_id_timeframe_idx ON candles(asset_id, timeframe)`,
	`CREATE INDEX IF NOT EXISTS candles_timestamp_idx ON candles(timestamp)`,

	`CREATE TABLE IF NOT EXISTS current_candles (
		id TEXT PRIMARY KEY,
		asset_id TEXT UNIQUE NOT NULL,
		symbol TEXT UNIQUE NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
		datetime TIMESTAMP NOT NULL,
		open DOUBLE PRECISION NOT NULL,
		high DOUBLE PRECISION NOT NULL,
		low DOUBLE PRECISION NOT NULL,
		close DOUBLE PRECISION NOT NULL,
		volume DOUBLE PRECISION NOT NULL,
		price_change DOUBLE PRECISION NOT NULL,
		price_change_percent DOUBLE PRECISION NOT NULL,
		is_positive BOOLEAN NOT NULL,
		last_update TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (asset_id) REFERENCES assets(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS current_candles_symbol_idx ON current_candles(symbol)`,
	`CREATE INDEX IF NOT EXISTS current_candles_last_update_idx ON current_candles(last_update)`,

	`CREATE TABLE IF NOT EXISTS sync_logs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		items_count INTEGER NOT NULL DEFAULT 0,
		error_msg TEXT,
		duration DOUBLE PRECISION,
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS sync_logs_type_status_idx ON sync_logs(type, status)`,
	`CREATE INDEX IF NOT EXISTS sync_logs_started_at_idx ON sync_logs(started_at)`,

	`CREATE TABLE IF NOT EXISTS configs (
		id TEXT PRIMARY KEY,
		key TEXT UNIQUE NOT NULL,
		value TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates all tables and indexes, idempotently
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Error("Failed to apply schema statement", zap.Error(err))
			return err
		}
	}

	logger.Info("Schema migration applied", zap.Int("statements", len(schemaStatements)))
	return nil
}
