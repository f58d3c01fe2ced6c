package repository

import (
	"context"
	"time"

	"github.com/yourorg/marketdata-sync/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SyncLogRepository handles database operations for sync audit logs
type SyncLogRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *sqlx.DB, logger *zap.Logger) *SyncLogRepository {
	return &SyncLogRepository{
		db:     db,
		logger: logger,
	}
}

// StartSyncLog creates the run's log row in running state and returns its id
func (r *SyncLogRepository) StartSyncLog(ctx context.Context, syncType string) (string, error) {
	query := `
		INSERT INTO sync_logs (id, type, status, started_at)
		VALUES ($1, $2, $3, $4)
	`

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query, id, syncType, model.SyncStatusRunning, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to create sync log", zap.Error(err), zap.String("type", syncType))
		return "", err
	}

	return id, nil
}

// FinishSyncLog finalizes the run's log row exactly once. Rows are never
// mutated again after finished_at is set.
func (r *SyncLogRepository) FinishSyncLog(ctx context.Context, id string, result model.SyncResult) error {
	query := `
		UPDATE sync_logs
		SET status = $2,
		    items_count = $3,
		    error_msg = $4,
		    finished_at = $5,
		    duration = EXTRACT(EPOCH FROM ($5 - started_at))
		WHERE id = $1 AND finished_at IS NULL
	`

	var errMsg *string
	if result.ErrorMsg != "" {
		errMsg = &result.ErrorMsg
	}

	_, err := r.db.ExecContext(ctx, query, id, result.Status, result.ItemsCount, errMsg, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to finish sync log", zap.Error(err), zap.String("id", id))
		return err
	}

	return nil
}

// GetRecentSyncLogs retrieves the most recent log rows
func (r *SyncLogRepository) GetRecentSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	query := `
		SELECT id, type, status, items_count, error_msg, duration, started_at, finished_at
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var logs []model.SyncLog
	err := r.db.SelectContext(ctx, &logs, query, limit)
	if err != nil {
		r.logger.Error("Failed to get recent sync logs", zap.Error(err))
		return nil, err
	}

	return logs, nil
}
