package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/yourorg/marketdata-sync/internal/cache"
	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"
	"github.com/yourorg/marketdata-sync/internal/service"
	"github.com/yourorg/marketdata-sync/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultCandleLimit = 1000
	maxCandleLimit     = 1000
)

// MarketDataHandler handles candle and symbol-search HTTP requests
type MarketDataHandler struct {
	marketDataService *service.MarketDataService
	cache             *cache.ResponseCache
	metrics           *observability.Metrics
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(
	marketDataService *service.MarketDataService,
	responseCache *cache.ResponseCache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		cache:             responseCache,
		metrics:           metrics,
		logger:            logger,
	}
}

// validateSymbolAndTimeframe applies the shared query validation for the
// candle endpoints. It writes the error response itself and reports
// whether the request may proceed.
func (h *MarketDataHandler) validateSymbolAndTimeframe(c *gin.Context, symbol, timeframe, example string) bool {
	if symbol == "" {
		utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, `Parameter "symbol" is required`, gin.H{
			"example": example,
		})
		return false
	}
	if !strings.Contains(symbol, ":") {
		utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, "Invalid symbol format", gin.H{
			"expected": "EXCHANGE:TICKER (e.g. BINANCE:BTCUSDT)",
			"received": symbol,
		})
		return false
	}
	if !model.IsValidTimeframe(timeframe) {
		utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, "Invalid timeframe", gin.H{
			"valid_timeframes": model.ValidTimeframes,
			"received":         timeframe,
		})
		return false
	}
	return true
}

// GetCandles handles retrieving stored historical candles
// GET /api/candles
func (h *MarketDataHandler) GetCandles(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	timeframe := strings.TrimSpace(c.DefaultQuery("timeframe", "1m"))

	if !h.validateSymbolAndTimeframe(c, symbol, timeframe, "/api/candles?symbol=BINANCE:BTCUSDT&timeframe=1h") {
		return
	}

	limit := defaultCandleLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.SendErrorResponseWithDetails(c, http.StatusBadRequest, "Invalid limit parameter", gin.H{
				"received": raw,
			})
			return
		}
		limit = parsed
	}
	if limit > maxCandleLimit {
		limit = maxCandleLimit
	}

	response, err := h.marketDataService.GetCandles(c.Request.Context(), symbol, timeframe, limit)
	if err != nil {
		h.logger.Error("Failed to get candles",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve candles")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetCurrentCandle handles retrieving the live quote with a short TTL
// cache in front of the database
// GET /api/current-candle
func (h *MarketDataHandler) GetCurrentCandle(c *gin.Context) {
	symbol := strings.TrimSpace(c.Query("symbol"))
	timeframe := strings.TrimSpace(c.DefaultQuery("timeframe", "1m"))
	forceRefresh := strings.EqualFold(c.Query("force_refresh"), "true")

	if !h.validateSymbolAndTimeframe(c, symbol, timeframe, "/api/current-candle?symbol=BINANCE:BTCUSDT&timeframe=1m") {
		return
	}

	cacheKey := symbol + "_" + timeframe
	if !forceRefresh {
		if data, ok := h.cache.Get(cacheKey); ok {
			h.metrics.CacheHits.Inc()
			h.logger.Debug("Cache hit", zap.String("symbol", symbol), zap.String("timeframe", timeframe))
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
	}
	h.metrics.CacheMisses.Inc()

	response, err := h.marketDataService.GetCurrentCandle(c.Request.Context(), symbol, timeframe)
	if err != nil {
		if errors.Is(err, service.ErrCurrentCandleNotFound) {
			utils.SendErrorResponseWithDetails(c, http.StatusNotFound, "Current candle not found", gin.H{
				"symbol":    symbol,
				"timeframe": timeframe,
			})
			return
		}
		h.logger.Error("Failed to get current candle", zap.Error(err), zap.String("symbol", symbol))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve current candle")
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	h.cache.Set(cacheKey, data)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// SearchSymbols handles proxying the external symbol search. Failures
// degrade to an empty list so the endpoint never breaks autocomplete.
// GET /api/search-symbols
func (h *MarketDataHandler) SearchSymbols(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	results, err := h.marketDataService.SearchSymbols(c.Request.Context(), query)
	if err != nil {
		h.logger.Warn("Symbol search failed", zap.Error(err), zap.String("query", query))
		c.JSON(http.StatusOK, []model.SymbolSearchView{})
		return
	}

	c.JSON(http.StatusOK, results)
}
