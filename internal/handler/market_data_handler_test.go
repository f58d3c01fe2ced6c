package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/marketdata-sync/internal/cache"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler() (*MarketDataHandler, *cache.ResponseCache) {
	responseCache := cache.NewResponseCache(5 * time.Second)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	// validation and cache paths never reach the service
	return NewMarketDataHandler(nil, responseCache, metrics, zap.NewNop()), responseCache
}

func performRequest(h gin.HandlerFunc, path, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetCandlesMissingSymbol(t *testing.T) {
	h, _ := newTestHandler()
	w := performRequest(h.GetCandles, "/api/candles", "/api/candles")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "symbol")
}

func TestGetCandlesInvalidSymbolFormat(t *testing.T) {
	h, _ := newTestHandler()
	w := performRequest(h.GetCandles, "/api/candles", "/api/candles?symbol=BTCUSDT")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "BTCUSDT", body["received"])
}

func TestGetCandlesRejectsUnknownTimeframe(t *testing.T) {
	h, _ := newTestHandler()
	w := performRequest(h.GetCandles, "/api/candles", "/api/candles?symbol=BINANCE:BTCUSDT&timeframe=2h")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2h", body["received"])
	assert.NotContains(t, body["valid_timeframes"], "2h")
}

func TestGetCandlesInvalidLimit(t *testing.T) {
	h, _ := newTestHandler()

	for _, limit := range []string{"abc", "0", "-5"} {
		w := performRequest(h.GetCandles, "/api/candles", "/api/candles?symbol=BINANCE:BTCUSDT&timeframe=1h&limit="+limit)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestGetCurrentCandleCacheHitIsByteIdentical(t *testing.T) {
	h, responseCache := newTestHandler()

	cached := []byte(`{"symbol":"BINANCE:BTCUSDT","timeframe":"1m","close":50000.5}`)
	responseCache.Set("BINANCE:BTCUSDT_1m", cached)

	w := performRequest(h.GetCurrentCandle, "/api/current-candle", "/api/current-candle?symbol=BINANCE:BTCUSDT&timeframe=1m")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cached, w.Body.Bytes())
}

func TestGetCurrentCandleValidatesBeforeCache(t *testing.T) {
	h, responseCache := newTestHandler()
	responseCache.Set("BINANCE:BTCUSDT_2h", []byte(`{}`))

	w := performRequest(h.GetCurrentCandle, "/api/current-candle", "/api/current-candle?symbol=BINANCE:BTCUSDT&timeframe=2h")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
