package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"go.uber.org/zap"
)

// maxReportedItemErrors bounds the error text stored on a partial run
const maxReportedItemErrors = 5

// runSynced wraps one worker pass with the sync log lifecycle: the log
// row is created before the body runs and finalized exactly once after.
// The body returns the item count, the per-item errors it absorbed, and
// a fatal error when the run as a whole failed. Only a fatal error is
// propagated to the orchestrator for retry.
func runSynced(
	ctx context.Context,
	logs syncLogStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
	syncType string,
	body func(ctx context.Context) (int, []string, error),
) error {
	start := time.Now()

	logID, err := logs.StartSyncLog(ctx, syncType)
	if err != nil {
		// Cannot even record the run: treat as a fatal connectivity failure
		logger.Error("Failed to start sync log", zap.Error(err), zap.String("type", syncType))
		return fmt.Errorf("failed to start sync log: %w", err)
	}

	items, itemErrors, fatal := body(ctx)

	result := model.SyncResult{ItemsCount: items}
	switch {
	case fatal != nil:
		result.Status = model.SyncStatusError
		result.ErrorMsg = fatal.Error()
	case len(itemErrors) > 0:
		result.Status = model.SyncStatusPartial
		result.ErrorMsg = summarizeItemErrors(itemErrors)
	default:
		result.Status = model.SyncStatusSuccess
	}

	if err := logs.FinishSyncLog(ctx, logID, result); err != nil {
		logger.Error("Failed to finalize sync log", zap.Error(err), zap.String("type", syncType))
	}

	duration := time.Since(start)
	metrics.SyncRuns.WithLabelValues(syncType, result.Status).Inc()
	metrics.SyncDuration.WithLabelValues(syncType).Observe(duration.Seconds())
	metrics.SyncItems.WithLabelValues(syncType).Add(float64(items))

	logger.Info("Sync run finished",
		zap.String("type", syncType),
		zap.String("status", result.Status),
		zap.Int("items", items),
		zap.Int("item_errors", len(itemErrors)),
		zap.Duration("duration", duration))

	return fatal
}

func summarizeItemErrors(itemErrors []string) string {
	reported := itemErrors
	suffix := ""
	if len(itemErrors) > maxReportedItemErrors {
		reported = itemErrors[:maxReportedItemErrors]
		suffix = fmt.Sprintf(" (and %d more)", len(itemErrors)-maxReportedItemErrors)
	}
	return strings.Join(reported, "; ") + suffix
}
