package worker

import (
	"context"

	"github.com/yourorg/marketdata-sync/internal/model"
)

// Worker is one periodic sync job. Run executes a single batch pass with
// no in-memory state carried between runs; it returns an error only when
// the whole run failed (per-item failures are absorbed and reported
// through the run's sync log instead).
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// Store interfaces are declared on the consuming side so runs can be
// exercised against fakes. The sqlx repositories satisfy them.

type categoryStore interface {
	GetAllCategories(ctx context.Context) ([]model.Category, error)
	UpsertCategory(ctx context.Context, input *model.CategoryInput) error
}

type assetStore interface {
	GetActiveAssets(ctx context.Context, limit int) ([]model.Asset, error)
	UpsertAsset(ctx context.Context, input *model.AssetInput) error
}

type candleStore interface {
	InsertCandles(ctx context.Context, assetID, symbol, timeframe string, bars []model.OHLCV) (int, error)
}

type currentCandleStore interface {
	UpsertCurrentCandle(ctx context.Context, input *model.CurrentCandleInput) error
}

type syncLogStore interface {
	StartSyncLog(ctx context.Context, syncType string) (string, error)
	FinishSyncLog(ctx context.Context, id string, result model.SyncResult) error
}

type feedSearcher interface {
	SearchSymbols(ctx context.Context, query string) ([]model.SymbolSearchResult, error)
}

type feedHistorical interface {
	HistoricalCandles(ctx context.Context, exchange, ticker, timeframe string, count int) ([]model.OHLCV, error)
}

type feedStreamer interface {
	CurrentBar(ctx context.Context, exchange, ticker, timeframe string) (*model.OHLCV, error)
}
