package repository

import (
	"context"
	"database/sql"

	"github.com/yourorg/marketdata-sync/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

// GetAllCategories retrieves all categories ordered by name
func (r *CategoryRepository) GetAllCategories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT id, key, name, description, icon, exchanges, timeframes, created_at, updated_at
		FROM categories
		ORDER BY name
	`

	var categories []model.Category
	err := r.db.SelectContext(ctx, &categories, query)
	if err != nil {
		r.logger.Error("Failed to get all categories", zap.Error(err))
		return nil, err
	}

	return categories, nil
}

// GetCategoryByKey retrieves a category by its natural key
func (r *CategoryRepository) GetCategoryByKey(ctx context.Context, key string) (*model.Category, error) {
	query := `
		SELECT id, key, name, description, icon, exchanges, timeframes, created_at, updated_at
		FROM categories
		WHERE key = $1
	`

	var category model.Category
	err := r.db.GetContext(ctx, &category, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get category by key", zap.Error(err), zap.String("key", key))
		return nil, err
	}

	return &category, nil
}

// UpsertCategory inserts or updates a category keyed by its natural key,
// refreshing updated_at on conflict
func (r *CategoryRepository) UpsertCategory(ctx context.Context, input *model.CategoryInput) error {
	query := `
		INSERT INTO categories (id, key, name, description, icon, exchanges, timeframes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			exchanges = EXCLUDED.exchanges,
			timeframes = EXCLUDED.timeframes,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		uuid.NewString(),
		input.Key,
		input.Name,
		input.Description,
		input.Icon,
		pq.Array(input.Exchanges),
		pq.Array(input.Timeframes),
	)
	if err != nil {
		r.logger.Error("Failed to upsert category", zap.Error(err), zap.String("key", input.Key))
		return err
	}

	return nil
}

// CountCategories returns the number of category rows
func (r *CategoryRepository) CountCategories(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories`)
	if err != nil {
		r.logger.Error("Failed to count categories", zap.Error(err))
		return 0, err
	}

	return count, nil
}
