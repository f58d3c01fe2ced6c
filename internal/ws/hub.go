package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// number of recent stored bars replayed before the live relay starts
const backfillBars = 100

// candleReader is the slice of the candle repository the hub needs
type candleReader interface {
	GetCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.Candle, error)
}

// barStreamer is the slice of the feed client the hub needs
type barStreamer interface {
	StreamBars(ctx context.Context, exchange, ticker, timeframe string, out chan<- model.OHLCV) error
}

// clientMessage is one inbound control frame
type clientMessage struct {
	Type      string `json:"type"`
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

// priceUpdate is one outbound price event
type priceUpdate struct {
	Type               string  `json:"type"`
	Symbol             string  `json:"symbol"`
	Timeframe          string  `json:"timeframe"`
	Timestamp          int64   `json:"timestamp"`
	Open               float64 `json:"open"`
	High               float64 `json:"high"`
	Low                float64 `json:"low"`
	Close              float64 `json:"close"`
	Volume             float64 `json:"volume"`
	PriceChange        float64 `json:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent"`
	IsPositive         bool    `json:"is_positive"`
	Historical         bool    `json:"historical,omitempty"`
}

// Hub upgrades HTTP requests to WebSocket connections and serves
// start_stream/stop_stream subscriptions over them
type Hub struct {
	candles  candleReader
	feed     barStreamer
	upgrader websocket.Upgrader
	metrics  *observability.Metrics
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*client]bool
}

// NewHub creates a new WebSocket hub
func NewHub(candles candleReader, feed barStreamer, metrics *observability.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		candles: candles,
		feed:    feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		metrics: metrics,
		logger:  logger,
		clients: make(map[*client]bool),
	}
}

// client is one connected WebSocket peer. Writes are serialized through
// writeMu; each active subscription owns a cancel func.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	streams map[string]context.CancelFunc
}

func (c *client) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Handle upgrades the request and serves control frames until the peer
// disconnects
// GET /ws
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		conn:    conn,
		streams: make(map[string]context.CancelFunc),
	}
	h.register(cl)
	defer h.unregister(cl)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read failed", zap.Error(err))
			}
			return
		}
		h.dispatch(c.Request.Context(), cl, &msg)
	}
}

// ConnectionCount returns the number of live peers
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = true
	h.mu.Unlock()
	h.metrics.WSConnections.Inc()
}

func (h *Hub) unregister(cl *client) {
	cl.mu.Lock()
	for _, cancel := range cl.streams {
		cancel()
	}
	cl.streams = make(map[string]context.CancelFunc)
	cl.mu.Unlock()

	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
	h.metrics.WSConnections.Dec()

	cl.conn.Close()
}

func (h *Hub) dispatch(ctx context.Context, cl *client, msg *clientMessage) {
	switch msg.Type {
	case "start_stream":
		h.startStream(ctx, cl, msg)
	case "stop_stream":
		h.stopStream(cl, msg)
	default:
		_ = cl.send(gin.H{"type": "error", "error": "unknown message type", "received": msg.Type})
	}
}

func (h *Hub) startStream(ctx context.Context, cl *client, msg *clientMessage) {
	symbol := strings.TrimSpace(msg.Symbol)
	timeframe := msg.Timeframe
	if timeframe == "" {
		timeframe = "1m"
	}

	if symbol == "" || !strings.Contains(symbol, ":") {
		_ = cl.send(gin.H{"type": "error", "error": "invalid symbol", "received": msg.Symbol})
		return
	}
	if !model.IsValidTimeframe(timeframe) {
		_ = cl.send(gin.H{"type": "error", "error": "invalid timeframe", "received": msg.Timeframe})
		return
	}

	key := symbol + "_" + timeframe

	cl.mu.Lock()
	if _, exists := cl.streams[key]; exists {
		cl.mu.Unlock()
		return
	}
	streamCtx, cancel := context.WithCancel(ctx)
	cl.streams[key] = cancel
	cl.mu.Unlock()

	go h.runStream(streamCtx, cl, symbol, timeframe)
}

func (h *Hub) stopStream(cl *client, msg *clientMessage) {
	timeframe := msg.Timeframe
	if timeframe == "" {
		timeframe = "1m"
	}
	key := strings.TrimSpace(msg.Symbol) + "_" + timeframe

	cl.mu.Lock()
	cancel, ok := cl.streams[key]
	if ok {
		delete(cl.streams, key)
	}
	cl.mu.Unlock()

	if ok {
		cancel()
		_ = cl.send(gin.H{"type": "stream_stopped", "symbol": msg.Symbol, "timeframe": timeframe})
	}
}

// runStream replays stored history for the subscription, then relays
// live bars until cancelled
func (h *Hub) runStream(ctx context.Context, cl *client, symbol, timeframe string) {
	h.backfill(ctx, cl, symbol, timeframe)

	exchange, ticker, ok := strings.Cut(symbol, ":")
	if !ok {
		return
	}

	bars := make(chan model.OHLCV)
	go func() {
		defer close(bars)
		if err := h.feed.StreamBars(ctx, exchange, ticker, timeframe, bars); err != nil && ctx.Err() == nil {
			h.logger.Warn("Live stream ended",
				zap.Error(err),
				zap.String("symbol", symbol),
				zap.String("timeframe", timeframe))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case bar, ok := <-bars:
			if !ok {
				return
			}
			if err := cl.send(barUpdate(symbol, timeframe, bar, false)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) backfill(ctx context.Context, cl *client, symbol, timeframe string) {
	candles, err := h.candles.GetCandles(ctx, symbol, timeframe, backfillBars)
	if err != nil {
		h.logger.Warn("Backfill query failed", zap.Error(err), zap.String("symbol", symbol))
		return
	}

	// stored candles come newest first; replay oldest first
	for i := len(candles) - 1; i >= 0; i-- {
		candle := candles[i]
		bar := model.OHLCV{
			Timestamp: candle.Timestamp,
			Open:      candle.Open,
			High:      candle.High,
			Low:       candle.Low,
			Close:     candle.Close,
			Volume:    candle.Volume,
		}
		if err := cl.send(barUpdate(symbol, timeframe, bar, true)); err != nil {
			return
		}
	}
}

func barUpdate(symbol, timeframe string, bar model.OHLCV, historical bool) priceUpdate {
	return priceUpdate{
		Type:               "price_update",
		Symbol:             symbol,
		Timeframe:          timeframe,
		Timestamp:          bar.Timestamp,
		Open:               bar.Open,
		High:               bar.High,
		Low:                bar.Low,
		Close:              bar.Close,
		Volume:             bar.Volume,
		PriceChange:        bar.PriceChange(),
		PriceChangePercent: bar.PriceChangePercent(),
		IsPositive:         bar.IsPositive(),
		Historical:         historical,
	}
}
