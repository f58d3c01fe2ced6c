package repository

import (
	"context"
	"database/sql"

	"github.com/yourorg/marketdata-sync/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CurrentCandleRepository handles database operations for the per-asset
// most-recent bar snapshots
type CurrentCandleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCurrentCandleRepository creates a new current candle repository
func NewCurrentCandleRepository(db *sqlx.DB, logger *zap.Logger) *CurrentCandleRepository {
	return &CurrentCandleRepository{
		db:     db,
		logger: logger,
	}
}

const currentCandleColumns = `
	id, asset_id, symbol, timeframe, timestamp, datetime, open, high, low, close,
	volume, price_change, price_change_percent, is_positive, last_update,
	created_at, updated_at
`

// GetAllCurrentCandles retrieves every snapshot, most recently updated first
func (r *CurrentCandleRepository) GetAllCurrentCandles(ctx context.Context) ([]model.CurrentCandle, error) {
	query := `SELECT ` + currentCandleColumns + ` FROM current_candles ORDER BY last_update DESC`

	var candles []model.CurrentCandle
	err := r.db.SelectContext(ctx, &candles, query)
	if err != nil {
		r.logger.Error("Failed to get current candles", zap.Error(err))
		return nil, err
	}

	return candles, nil
}

// GetCurrentCandleBySymbol retrieves the snapshot for one symbol
func (r *CurrentCandleRepository) GetCurrentCandleBySymbol(ctx context.Context, symbol string) (*model.CurrentCandle, error) {
	query := `SELECT ` + currentCandleColumns + ` FROM current_candles WHERE symbol = $1`

	var candle model.CurrentCandle
	err := r.db.GetContext(ctx, &candle, query, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get current candle by symbol",
			zap.Error(err),
			zap.String("symbol", symbol))
		return nil, err
	}

	return &candle, nil
}

// GetCurrentCandleByAssetID retrieves the snapshot for one asset
func (r *CurrentCandleRepository) GetCurrentCandleByAssetID(ctx context.Context, assetID string) (*model.CurrentCandle, error) {
	query := `SELECT ` + currentCandleColumns + ` FROM current_candles WHERE asset_id = $1`

	var candle model.CurrentCandle
	err := r.db.GetContext(ctx, &candle, query, assetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get current candle by asset",
			zap.Error(err),
			zap.String("assetID", assetID))
		return nil, err
	}

	return &candle, nil
}

// UpsertCurrentCandle overwrites the snapshot in place, keyed by asset id,
// refreshing last_update and updated_at on conflict
func (r *CurrentCandleRepository) UpsertCurrentCandle(ctx context.Context, input *model.CurrentCandleInput) error {
	query := `
		INSERT INTO current_candles (
			id, asset_id, symbol, timeframe, timestamp, datetime, open, high, low,
			close, volume, price_change, price_change_percent, is_positive
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (asset_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			timeframe = EXCLUDED.timeframe,
			timestamp = EXCLUDED.timestamp,
			datetime = EXCLUDED.datetime,
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			price_change = EXCLUDED.price_change,
			price_change_percent = EXCLUDED.price_change_percent,
			is_positive = EXCLUDED.is_positive,
			last_update = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		uuid.NewString(),
		input.AssetID,
		input.Symbol,
		input.Timeframe,
		input.Timestamp,
		input.Datetime,
		input.Open,
		input.High,
		input.Low,
		input.Close,
		input.Volume,
		input.PriceChange,
		input.PriceChangePercent,
		input.IsPositive,
	)
	if err != nil {
		r.logger.Error("Failed to upsert current candle",
			zap.Error(err),
			zap.String("symbol", input.Symbol))
		return err
	}

	return nil
}

// CountCurrentCandles returns the number of snapshot rows
func (r *CurrentCandleRepository) CountCurrentCandles(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM current_candles`)
	if err != nil {
		r.logger.Error("Failed to count current candles", zap.Error(err))
		return 0, err
	}

	return count, nil
}
