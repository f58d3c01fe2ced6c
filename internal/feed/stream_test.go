package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/marketdata-sync/internal/config"
	"github.com/yourorg/marketdata-sync/internal/observability"
)

const twoBarUpdate = `{"m":"du","p":["cs_test",{"sds_1":{"s":[` +
	`{"i":0,"v":[1700000000,100.5,110.0,99.0,105.25,1234.5]},` +
	`{"i":1,"v":[1700000060,105.25,112.0,104.0,111.0,820.0]}]}}]}`

const twoBarTimescale = `{"m":"timescale_update","p":["cs_test",{"sds_1":{"s":[` +
	`{"i":0,"v":[1700000000,100.5,110.0,99.0,105.25,1234.5]},` +
	`{"i":1,"v":[1700000060,105.25,112.0,104.0,111.0,820.0]}]}}]}`

// fakeFeedServer drains the four-message session handshake, then writes
// the given payloads framed and holds the connection open.
func fakeFeedServer(t *testing.T, payloads ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for i := 0; i < 4; i++ {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
		for _, p := range payloads {
			if err := conn.WriteMessage(websocket.TextMessage, EncodeFrame([]byte(p))); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	cfg := config.FeedConfig{
		ChartURL:      "ws" + strings.TrimPrefix(srv.URL, "http"),
		Origin:        "https://example.test",
		StreamTimeout: 2 * time.Second,
		SearchTimeout: 2 * time.Second,
	}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewClient(cfg, metrics, zap.NewNop())
}

func TestCurrentBarTakesFirstBarOfUpdate(t *testing.T) {
	srv := fakeFeedServer(t, twoBarUpdate)
	defer srv.Close()

	bar, err := newTestClient(t, srv).CurrentBar(context.Background(), "BINANCE", "BTCUSDT", "1m")
	require.NoError(t, err)
	require.NotNil(t, bar)

	assert.Equal(t, int64(1700000000), bar.Timestamp)
	assert.Equal(t, 105.25, bar.Close)
}

func TestCurrentBarEchoesHeartbeats(t *testing.T) {
	srv := fakeFeedServer(t, "~h~7", twoBarUpdate)
	defer srv.Close()

	bar, err := newTestClient(t, srv).CurrentBar(context.Background(), "BINANCE", "BTCUSDT", "1m")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), bar.Timestamp)
}

func TestHistoricalCandlesWaitsForTimescaleUpdate(t *testing.T) {
	// The du packet must be skipped; only the timescale batch counts.
	srv := fakeFeedServer(t, twoBarUpdate, twoBarTimescale)
	defer srv.Close()

	bars, err := newTestClient(t, srv).HistoricalCandles(context.Background(), "BINANCE", "BTCUSDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, int64(1700000000), bars[0].Timestamp)
	assert.Equal(t, int64(1700000060), bars[1].Timestamp)
	assert.Equal(t, 111.0, bars[1].Close)
}
