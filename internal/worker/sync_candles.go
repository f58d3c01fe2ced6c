package worker

import (
	"context"
	"fmt"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"go.uber.org/zap"
)

// CandlesWorker backfills historical candles for every active asset
// across the sync timeframes. Inserts are idempotent, so re-fetching a
// window that is already stored only appends the genuinely new bars.
type CandlesWorker struct {
	assets              assetStore
	candles             candleStore
	logs                syncLogStore
	feed                feedHistorical
	candlesPerTimeframe int
	metrics             *observability.Metrics
	logger              *zap.Logger
}

// NewCandlesWorker creates a new historical candles sync worker
func NewCandlesWorker(
	assets assetStore,
	candles candleStore,
	logs syncLogStore,
	feed feedHistorical,
	candlesPerTimeframe int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CandlesWorker {
	return &CandlesWorker{
		assets:              assets,
		candles:             candles,
		logs:                logs,
		feed:                feed,
		candlesPerTimeframe: candlesPerTimeframe,
		metrics:             metrics,
		logger:              logger,
	}
}

func (w *CandlesWorker) Name() string {
	return model.SyncTypeCandles
}

// Run fetches each asset/timeframe pairing sequentially. A failed fetch
// or insert is absorbed as an item error so the remaining pairings still
// get their bars.
func (w *CandlesWorker) Run(ctx context.Context) error {
	return runSynced(ctx, w.logs, w.metrics, w.logger, w.Name(), func(ctx context.Context) (int, []string, error) {
		assets, err := w.assets.GetActiveAssets(ctx, 0)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to load active assets: %w", err)
		}

		inserted := 0
		var itemErrors []string

		for i := range assets {
			asset := &assets[i]
			for _, timeframe := range model.SyncTimeframes {
				if ctx.Err() != nil {
					return inserted, itemErrors, ctx.Err()
				}

				n, err := w.syncPairing(ctx, asset, timeframe)
				inserted += n
				if err != nil {
					w.logger.Warn("Candle sync failed",
						zap.Error(err),
						zap.String("symbol", asset.Symbol),
						zap.String("timeframe", timeframe))
					itemErrors = append(itemErrors, fmt.Sprintf("%s/%s: %v", asset.Symbol, timeframe, err))
				}
			}
		}

		return inserted, itemErrors, nil
	})
}

func (w *CandlesWorker) syncPairing(ctx context.Context, asset *model.Asset, timeframe string) (int, error) {
	bars, err := w.feed.HistoricalCandles(ctx, asset.Exchange, asset.Ticker, timeframe, w.candlesPerTimeframe)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(bars) == 0 {
		return 0, nil
	}

	n, err := w.candles.InsertCandles(ctx, asset.ID, asset.Symbol, timeframe, bars)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}

	w.logger.Debug("Candles stored",
		zap.String("symbol", asset.Symbol),
		zap.String("timeframe", timeframe),
		zap.Int("fetched", len(bars)),
		zap.Int("inserted", n))

	return n, nil
}
