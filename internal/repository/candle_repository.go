package repository

import (
	"context"
	"database/sql"

	"github.com/yourorg/marketdata-sync/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CandleRepository handles database operations for historical candles
type CandleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCandleRepository creates a new candle repository
func NewCandleRepository(db *sqlx.DB, logger *zap.Logger) *CandleRepository {
	return &CandleRepository{
		db:     db,
		logger: logger,
	}
}

// GetCandles retrieves historical candles for a symbol and timeframe,
// most recent first, bounded by limit
func (r *CandleRepository) GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error) {
	query := `
		SELECT id, asset_id, symbol, timeframe, timestamp, datetime,
		       open, high, low, close, volume, created_at
		FROM candles
		WHERE symbol = $1 AND timeframe = $2
		ORDER BY timestamp DESC
		LIMIT $3
	`

	var candles []model.Candle
	err := r.db.SelectContext(ctx, &candles, query, symbol, timeframe, limit)
	if err != nil {
		r.logger.Error("Failed to get candles",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe))
		return nil, err
	}

	return candles, nil
}

// HasCandle checks for an existing bar by its natural unique key
func (r *CandleRepository) HasCandle(ctx context.Context, assetID, timeframe string, timestamp int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM candles
			WHERE asset_id = $1 AND timeframe = $2 AND timestamp = $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, assetID, timeframe, timestamp)
	if err != nil {
		r.logger.Error("Failed to check candle existence",
			zap.Error(err),
			zap.String("assetID", assetID),
			zap.String("timeframe", timeframe),
			zap.Int64("timestamp", timestamp))
		return false, err
	}

	return exists, nil
}

// InsertCandles inserts a batch of bars for one asset and timeframe in a
// single transaction. Bars already present under the natural unique key
// are skipped, not errors. Returns the number of rows written.
func (r *CandleRepository) InsertCandles(ctx context.Context, assetID, symbol, timeframe string, bars []model.OHLCV) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO candles (id, asset_id, symbol, timeframe, timestamp, datetime, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, to_timestamp($5), $6, $7, $8, $9, $10)
		ON CONFLICT (asset_id, timeframe, timestamp) DO NOTHING
	`)
	if err != nil {
		r.logger.Error("Failed to prepare candle insert", zap.Error(err))
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, bar := range bars {
		res, err := stmt.ExecContext(
			ctx,
			uuid.NewString(),
			assetID,
			symbol,
			timeframe,
			bar.Timestamp,
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		)
		if err != nil {
			r.logger.Error("Failed to insert candle",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.Int64("timestamp", bar.Timestamp))
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit candle batch", zap.Error(err))
		return 0, err
	}

	return inserted, nil
}

// GetCandleByKey retrieves one bar by its natural unique key
func (r *CandleRepository) GetCandleByKey(ctx context.Context, assetID, timeframe string, timestamp int64) (*model.Candle, error) {
	query := `
		SELECT id, asset_id, symbol, timeframe, timestamp, datetime,
		       open, high, low, close, volume, created_at
		FROM candles
		WHERE asset_id = $1 AND timeframe = $2 AND timestamp = $3
	`

	var candle model.Candle
	err := r.db.GetContext(ctx, &candle, query, assetID, timeframe, timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get candle by key", zap.Error(err), zap.String("assetID", assetID))
		return nil, err
	}

	return &candle, nil
}
