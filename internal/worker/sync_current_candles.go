package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"go.uber.org/zap"
)

// currentCandleTimeframe is the resolution streamed for live quotes
const currentCandleTimeframe = "1m"

// CurrentCandlesWorker refreshes the live quote row for every active
// asset. Assets are processed in fixed-size batches with one feed
// connection per asset inside a batch running concurrently.
type CurrentCandlesWorker struct {
	assets    assetStore
	current   currentCandleStore
	logs      syncLogStore
	feed      feedStreamer
	batchSize int
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewCurrentCandlesWorker creates a new current candles sync worker
func NewCurrentCandlesWorker(
	assets assetStore,
	current currentCandleStore,
	logs syncLogStore,
	feed feedStreamer,
	batchSize int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CurrentCandlesWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &CurrentCandlesWorker{
		assets:    assets,
		current:   current,
		logs:      logs,
		feed:      feed,
		batchSize: batchSize,
		metrics:   metrics,
		logger:    logger,
	}
}

func (w *CurrentCandlesWorker) Name() string {
	return model.SyncTypeCurrentCandles
}

func (w *CurrentCandlesWorker) Run(ctx context.Context) error {
	return runSynced(ctx, w.logs, w.metrics, w.logger, w.Name(), func(ctx context.Context) (int, []string, error) {
		assets, err := w.assets.GetActiveAssets(ctx, 0)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to load active assets: %w", err)
		}

		updated := 0
		var itemErrors []string

		for start := 0; start < len(assets); start += w.batchSize {
			if ctx.Err() != nil {
				return updated, itemErrors, ctx.Err()
			}

			end := start + w.batchSize
			if end > len(assets) {
				end = len(assets)
			}

			n, errs := w.runBatch(ctx, assets[start:end])
			updated += n
			itemErrors = append(itemErrors, errs...)
		}

		return updated, itemErrors, nil
	})
}

// runBatch fans out one goroutine per asset and waits for all of them
func (w *CurrentCandlesWorker) runBatch(ctx context.Context, batch []model.Asset) (int, []string) {
	var (
		mu         sync.Mutex
		updated    int
		itemErrors []string
	)

	var wg sync.WaitGroup
	for i := range batch {
		asset := &batch[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := w.refreshAsset(ctx, asset)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				itemErrors = append(itemErrors, fmt.Sprintf("%s: %v", asset.Symbol, err))
			} else {
				updated++
			}
		}()
	}
	wg.Wait()

	return updated, itemErrors
}

func (w *CurrentCandlesWorker) refreshAsset(ctx context.Context, asset *model.Asset) error {
	bar, err := w.feed.CurrentBar(ctx, asset.Exchange, asset.Ticker, currentCandleTimeframe)
	if err != nil {
		w.logger.Warn("Current bar fetch failed",
			zap.Error(err),
			zap.String("symbol", asset.Symbol))
		return err
	}

	input := model.CurrentCandleFromBar(asset.ID, asset.Symbol, currentCandleTimeframe, *bar)
	if err := w.current.UpsertCurrentCandle(ctx, &input); err != nil {
		w.logger.Error("Current candle upsert failed",
			zap.Error(err),
			zap.String("symbol", asset.Symbol))
		return err
	}

	return nil
}
