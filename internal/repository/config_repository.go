package repository

import (
	"context"
	"database/sql"

	"github.com/yourorg/marketdata-sync/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ConfigRepository handles database operations for runtime settings
type ConfigRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db *sqlx.DB, logger *zap.Logger) *ConfigRepository {
	return &ConfigRepository{
		db:     db,
		logger: logger,
	}
}

// GetConfig retrieves the value for a key, or nil when absent
func (r *ConfigRepository) GetConfig(ctx context.Context, key string) (*model.ConfigEntry, error) {
	query := `
		SELECT id, key, value, description, created_at, updated_at
		FROM configs
		WHERE key = $1
	`

	var entry model.ConfigEntry
	err := r.db.GetContext(ctx, &entry, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get config", zap.Error(err), zap.String("key", key))
		return nil, err
	}

	return &entry, nil
}

// SetConfig upserts a key-value setting, refreshing updated_at on conflict
func (r *ConfigRepository) SetConfig(ctx context.Context, key, value string, description *string) error {
	query := `
		INSERT INTO configs (id, key, value, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = EXCLUDED.description,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), key, value, description)
	if err != nil {
		r.logger.Error("Failed to set config", zap.Error(err), zap.String("key", key))
		return err
	}

	return nil
}
