package repository

import (
	"context"
	"database/sql"

	"github.com/yourorg/marketdata-sync/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AssetRepository handles database operations for assets
type AssetRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sqlx.DB, logger *zap.Logger) *AssetRepository {
	return &AssetRepository{
		db:     db,
		logger: logger,
	}
}

const assetColumns = `
	id, symbol, exchange, ticker, description, type, category_key,
	search_query, is_active, last_update, created_at, updated_at
`

// GetAllAssets retrieves assets ordered by symbol, bounded by limit
func (r *AssetRepository) GetAllAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY symbol LIMIT $1`

	var assets []model.Asset
	err := r.db.SelectContext(ctx, &assets, query, limit)
	if err != nil {
		r.logger.Error("Failed to get all assets", zap.Error(err))
		return nil, err
	}

	return assets, nil
}

// GetActiveAssets retrieves only assets with is_active = true
func (r *AssetRepository) GetActiveAssets(ctx context.Context, limit int) ([]model.Asset, error) {
	// NULLIF turns a non-positive limit into LIMIT NULL, i.e. no limit
	query := `SELECT ` + assetColumns + ` FROM assets WHERE is_active = TRUE ORDER BY symbol LIMIT NULLIF($1, 0)`

	if limit < 0 {
		limit = 0
	}

	var assets []model.Asset
	err := r.db.SelectContext(ctx, &assets, query, limit)
	if err != nil {
		r.logger.Error("Failed to get active assets", zap.Error(err))
		return nil, err
	}

	return assets, nil
}

// GetAssetsByCategory retrieves all assets belonging to a category
func (r *AssetRepository) GetAssetsByCategory(ctx context.Context, categoryKey string) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE category_key = $1 ORDER BY symbol`

	var assets []model.Asset
	err := r.db.SelectContext(ctx, &assets, query, categoryKey)
	if err != nil {
		r.logger.Error("Failed to get assets by category",
			zap.Error(err),
			zap.String("categoryKey", categoryKey))
		return nil, err
	}

	return assets, nil
}

// GetAssetBySymbol retrieves an asset by its EXCHANGE:TICKER symbol
func (r *AssetRepository) GetAssetBySymbol(ctx context.Context, symbol string) (*model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE symbol = $1`

	var asset model.Asset
	err := r.db.GetContext(ctx, &asset, query, symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get asset by symbol", zap.Error(err), zap.String("symbol", symbol))
		return nil, err
	}

	return &asset, nil
}

// UpsertAsset inserts or updates an asset keyed by symbol, refreshing
// last_update and updated_at on conflict
func (r *AssetRepository) UpsertAsset(ctx context.Context, input *model.AssetInput) error {
	query := `
		INSERT INTO assets (id, symbol, exchange, ticker, description, type, category_key, search_query)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE SET
			exchange = EXCLUDED.exchange,
			ticker = EXCLUDED.ticker,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			category_key = EXCLUDED.category_key,
			search_query = EXCLUDED.search_query,
			last_update = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		uuid.NewString(),
		input.Symbol,
		input.Exchange,
		input.Ticker,
		input.Description,
		input.Type,
		input.CategoryKey,
		input.SearchQuery,
	)
	if err != nil {
		r.logger.Error("Failed to upsert asset", zap.Error(err), zap.String("symbol", input.Symbol))
		return err
	}

	return nil
}

// SetAssetActive flips the soft active flag on an asset
func (r *AssetRepository) SetAssetActive(ctx context.Context, symbol string, active bool) error {
	query := `
		UPDATE assets
		SET is_active = $2, updated_at = CURRENT_TIMESTAMP
		WHERE symbol = $1
	`

	_, err := r.db.ExecContext(ctx, query, symbol, active)
	if err != nil {
		r.logger.Error("Failed to update asset active flag",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.Bool("active", active))
		return err
	}

	return nil
}

// CountAssets returns the number of asset rows
func (r *AssetRepository) CountAssets(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM assets`)
	if err != nil {
		r.logger.Error("Failed to count assets", zap.Error(err))
		return 0, err
	}

	return count, nil
}
