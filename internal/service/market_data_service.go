package service

import (
	"context"
	"errors"
	"time"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/repository"

	"go.uber.org/zap"
)

// searchResultLimit caps the symbol-search proxy response
const searchResultLimit = 15

// ErrCurrentCandleNotFound signals no live quote row for a symbol
var ErrCurrentCandleNotFound = errors.New("current candle not found")

// symbolSearcher is the slice of the feed client this service needs
type symbolSearcher interface {
	SearchSymbols(ctx context.Context, query string) ([]model.SymbolSearchResult, error)
}

// MarketDataService serves stored candles, live quotes and symbol search
type MarketDataService struct {
	candleRepo  *repository.CandleRepository
	currentRepo *repository.CurrentCandleRepository
	feed        symbolSearcher
	logger      *zap.Logger
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(
	candleRepo *repository.CandleRepository,
	currentRepo *repository.CurrentCandleRepository,
	feed symbolSearcher,
	logger *zap.Logger,
) *MarketDataService {
	return &MarketDataService{
		candleRepo:  candleRepo,
		currentRepo: currentRepo,
		feed:        feed,
		logger:      logger,
	}
}

// GetCandles returns up to limit stored bars for a symbol/timeframe,
// newest first
func (s *MarketDataService) GetCandles(ctx context.Context, symbol, timeframe string, limit int) (*model.CandlesResponse, error) {
	candles, err := s.candleRepo.GetCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}

	views := make([]model.CandleView, 0, len(candles))
	for _, candle := range candles {
		views = append(views, model.CandleView{
			Timestamp: candle.Timestamp,
			Datetime:  candle.Datetime,
			Open:      candle.Open,
			High:      candle.High,
			Low:       candle.Low,
			Close:     candle.Close,
			Volume:    candle.Volume,
		})
	}

	return &model.CandlesResponse{
		Symbol:            symbol,
		Timeframe:         timeframe,
		TotalCandles:      len(views),
		HistoricalCandles: views,
		GeneratedAt:       time.Now().UTC(),
		Timezone:          "UTC",
		Source:            "database",
	}, nil
}

// GetCurrentCandle returns the stored live quote for a symbol
func (s *MarketDataService) GetCurrentCandle(ctx context.Context, symbol, timeframe string) (*model.CurrentCandleResponse, error) {
	candle, err := s.currentRepo.GetCurrentCandleBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if candle == nil {
		return nil, ErrCurrentCandleNotFound
	}

	return &model.CurrentCandleResponse{
		Symbol:             candle.Symbol,
		Timeframe:          candle.Timeframe,
		Timestamp:          candle.Timestamp,
		Datetime:           candle.Datetime,
		Open:               candle.Open,
		High:               candle.High,
		Low:                candle.Low,
		Close:              candle.Close,
		Volume:             candle.Volume,
		PriceChange:        candle.PriceChange,
		PriceChangePercent: candle.PriceChangePercent,
		IsPositive:         candle.IsPositive,
		GeneratedAt:        time.Now().UTC(),
		Timezone:           "UTC",
		Source:             "database",
		LastUpdate:         candle.LastUpdate,
	}, nil
}

// SearchSymbols proxies the external symbol search, combining exchange
// and ticker into the EXCHANGE:TICKER form. Queries under two
// characters return an empty list without hitting the feed.
func (s *MarketDataService) SearchSymbols(ctx context.Context, query string) ([]model.SymbolSearchView, error) {
	if len(query) < 2 {
		return []model.SymbolSearchView{}, nil
	}

	results, err := s.feed.SearchSymbols(ctx, query)
	if err != nil {
		return nil, err
	}

	views := make([]model.SymbolSearchView, 0, searchResultLimit)
	for _, item := range results {
		if len(views) >= searchResultLimit {
			break
		}
		if item.Symbol == "" || item.Exchange == "" {
			continue
		}
		views = append(views, model.SymbolSearchView{
			Symbol:      item.Exchange + ":" + item.Symbol,
			Description: item.Description,
			Type:        item.Type,
			Exchange:    item.Exchange,
		})
	}

	return views, nil
}
