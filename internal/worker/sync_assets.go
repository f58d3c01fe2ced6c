package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"go.uber.org/zap"
)

// AssetsWorker discovers tradable symbols per category/exchange through
// the external symbol-search endpoint and upserts them as assets. A
// failure on one exchange or category never aborts the others.
type AssetsWorker struct {
	categories        categoryStore
	assets            assetStore
	logs              syncLogStore
	feed              feedSearcher
	assetsPerExchange int
	metrics           *observability.Metrics
	logger            *zap.Logger
}

// NewAssetsWorker creates a new assets sync worker
func NewAssetsWorker(
	categories categoryStore,
	assets assetStore,
	logs syncLogStore,
	feed feedSearcher,
	assetsPerExchange int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AssetsWorker {
	return &AssetsWorker{
		categories:        categories,
		assets:            assets,
		logs:              logs,
		feed:              feed,
		assetsPerExchange: assetsPerExchange,
		metrics:           metrics,
		logger:            logger,
	}
}

func (w *AssetsWorker) Name() string {
	return model.SyncTypeAssets
}

// Run walks every category and each of its exchanges in listing order
func (w *AssetsWorker) Run(ctx context.Context) error {
	return runSynced(ctx, w.logs, w.metrics, w.logger, w.Name(), func(ctx context.Context) (int, []string, error) {
		categories, err := w.categories.GetAllCategories(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to load categories: %w", err)
		}

		total := 0
		var itemErrors []string

		for _, category := range categories {
			for _, exchange := range category.Exchanges {
				found, err := w.syncExchange(ctx, category.Key, exchange)
				total += found
				if err != nil {
					w.logger.Error("Exchange sync failed",
						zap.Error(err),
						zap.String("category", category.Key),
						zap.String("exchange", exchange))
					itemErrors = append(itemErrors, fmt.Sprintf("%s/%s: %v", category.Key, exchange, err))
				}
			}
		}

		return total, itemErrors, nil
	})
}

// syncExchange searches one category/exchange pairing, filters and
// de-duplicates the hits, and upserts up to the per-exchange cap
func (w *AssetsWorker) syncExchange(ctx context.Context, categoryKey, exchange string) (int, error) {
	seen := make(map[string]bool)
	var candidates []model.AssetInput

	for _, query := range searchQueries(categoryKey, exchange) {
		if len(candidates) >= w.assetsPerExchange {
			break
		}

		results, err := w.feed.SearchSymbols(ctx, query)
		if err != nil {
			w.logger.Warn("Symbol search failed",
				zap.Error(err),
				zap.String("query", query),
				zap.String("exchange", exchange))
			continue
		}

		for _, item := range results {
			if len(candidates) >= w.assetsPerExchange {
				break
			}
			if item.Symbol == "" || !strings.EqualFold(item.Exchange, exchange) {
				continue
			}
			if !validForCategory(item.Symbol, categoryKey) {
				continue
			}

			symbol := exchange + ":" + item.Symbol
			if seen[symbol] {
				continue
			}
			seen[symbol] = true

			q := query
			candidates = append(candidates, model.AssetInput{
				Symbol:      symbol,
				Exchange:    exchange,
				Ticker:      item.Symbol,
				Description: item.Description,
				Type:        item.Type,
				CategoryKey: categoryKey,
				SearchQuery: &q,
			})
		}
	}

	saved := 0
	for i := range candidates {
		if err := w.assets.UpsertAsset(ctx, &candidates[i]); err != nil {
			return saved, fmt.Errorf("failed to upsert %s: %w", candidates[i].Symbol, err)
		}
		saved++
	}

	return saved, nil
}

// searchQueries yields the seed search terms for one category/exchange
// pairing
func searchQueries(category, exchange string) []string {
	switch category {
	case "crypto":
		switch exchange {
		case "BINANCE":
			return []string{"BTC", "ETH", "ADA", "DOT", "LINK", "UNI", "LTC", "BCH", "XRP", "BNB"}
		case "COINBASE":
			return []string{"BTC", "ETH", "ADA", "DOT", "LINK", "UNI", "LTC", "BCH", "XRP"}
		default:
			return []string{"BTC", "ETH", "ADA", "DOT", "LINK"}
		}
	case "forex":
		return []string{"EUR", "GBP", "USD", "JPY", "CHF", "AUD", "CAD", "NZD"}
	case "stocks":
		switch exchange {
		case "NASDAQ":
			return []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NVDA", "NFLX", "AMD", "INTC"}
		case "NYSE":
			return []string{"JPM", "JNJ", "V", "PG", "UNH", "HD", "MA", "DIS", "PYPL", "ADBE"}
		default:
			return []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}
		}
	case "indices":
		return []string{"SPX", "NDX", "DJI", "RUT", "VIX", "COMP"}
	case "commodities":
		return []string{"GC", "SI", "CL", "NG", "ZC", "ZS", "ZW"}
	case "bonds":
		return []string{"TY", "US", "UB", "FGBL", "FGBM", "FGBS"}
	case "etfs":
		return []string{"SPY", "QQQ", "IWM", "VTI", "VEA", "VWO", "GLD", "SLV", "TLT", "HYG"}
	case "futures":
		return []string{"ES", "NQ", "YM", "RTY", "ZC", "ZS", "CL", "NG", "GC", "SI"}
	default:
		return nil
	}
}

// validForCategory applies the per-category symbol heuristics: suffix
// match for crypto pairs, known pair fragments for forex, ticker shape
// for stocks, known roots elsewhere, and the continuous-contract marker
// for futures
func validForCategory(symbol, category string) bool {
	upper := strings.ToUpper(symbol)

	contains := func(fragments ...string) bool {
		for _, f := range fragments {
			if strings.Contains(upper, f) {
				return true
			}
		}
		return false
	}

	switch category {
	case "crypto":
		for _, suffix := range []string{"USDT", "BTC", "ETH", "BNB", "ADA", "DOT", "LINK", "UNI", "LTC", "BCH", "XRP"} {
			if strings.HasSuffix(upper, suffix) {
				return true
			}
		}
		return false
	case "forex":
		return contains("EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "USDCAD", "NZDUSD", "EURGBP", "EURJPY", "GBPJPY")
	case "stocks":
		if len(symbol) < 1 || len(symbol) > 5 {
			return false
		}
		for _, r := range upper {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	case "indices":
		return contains("SPX", "NDX", "DJI", "RUT", "VIX", "COMP", "ES", "NQ", "YM", "RTY")
	case "commodities":
		return contains("GC", "SI", "CL", "NG", "ZC", "ZS", "ZW", "ALI", "ZNI")
	case "bonds":
		return contains("TY", "US", "UB", "FGBL", "FGBM", "FGBS", "JGB")
	case "etfs":
		return contains("SPY", "QQQ", "IWM", "VTI", "VEA", "VWO", "GLD", "SLV", "TLT", "HYG")
	case "futures":
		return strings.HasSuffix(upper, "!")
	default:
		return true
	}
}
