package worker

import (
	"context"
	"fmt"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"go.uber.org/zap"
)

// CategoriesWorker upserts the fixed category catalog. Idempotent: the
// run succeeds iff every catalog row is written without error.
type CategoriesWorker struct {
	categories categoryStore
	logs       syncLogStore
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewCategoriesWorker creates a new categories sync worker
func NewCategoriesWorker(categories categoryStore, logs syncLogStore, metrics *observability.Metrics, logger *zap.Logger) *CategoriesWorker {
	return &CategoriesWorker{
		categories: categories,
		logs:       logs,
		metrics:    metrics,
		logger:     logger,
	}
}

func (w *CategoriesWorker) Name() string {
	return model.SyncTypeCategories
}

// Run upserts each catalog entry in one pass
func (w *CategoriesWorker) Run(ctx context.Context) error {
	return runSynced(ctx, w.logs, w.metrics, w.logger, w.Name(), func(ctx context.Context) (int, []string, error) {
		synced := 0
		for i := range categoryCatalog {
			input := categoryCatalog[i]
			if err := w.categories.UpsertCategory(ctx, &input); err != nil {
				return synced, nil, fmt.Errorf("failed to upsert category %s: %w", input.Key, err)
			}
			synced++
		}
		return synced, nil, nil
	})
}
