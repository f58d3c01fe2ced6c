package feed

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/yourorg/marketdata-sync/internal/config"
	"github.com/yourorg/marketdata-sync/internal/model"
	"github.com/yourorg/marketdata-sync/internal/observability"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sessionIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Client talks to the external charting feed: bulk historical series and
// live tick streaming over websocket, symbol search over HTTP.
type Client struct {
	chartURL      string
	searchURL     string
	origin        string
	streamTimeout time.Duration
	httpClient    *http.Client
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewClient creates a new feed client
func NewClient(cfg config.FeedConfig, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		chartURL:      cfg.ChartURL,
		searchURL:     cfg.SearchURL,
		origin:        cfg.Origin,
		streamTimeout: cfg.StreamTimeout,
		httpClient: &http.Client{
			Timeout: cfg.SearchTimeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

func sessionID(prefix string) string {
	b := make([]byte, 12)
	for i := range b {
		b[i] = sessionIDAlphabet[rand.Intn(len(sessionIDAlphabet))]
	}
	return prefix + "_" + string(b)
}

// dial opens the chart websocket with the origin header the platform expects
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Origin", c.origin)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.chartURL, header)
	if err != nil {
		c.logger.Error("Failed to dial feed websocket", zap.Error(err), zap.String("url", c.chartURL))
		return nil, fmt.Errorf("failed to dial feed: %w", err)
	}

	return conn, nil
}

// openSeries performs the chart session handshake: auth, session creation,
// symbol resolution, and series creation for the requested bar count.
func (c *Client) openSeries(conn *websocket.Conn, exchange, ticker, timeframe string, count int) error {
	resolution, err := Resolution(timeframe)
	if err != nil {
		return err
	}

	chartSession := sessionID("cs")
	symbolSpec := fmt.Sprintf(`={"symbol":"%s:%s","adjustment":"splits"}`, exchange, ticker)

	setup := []struct {
		method string
		params []interface{}
	}{
		{"set_auth_token", []interface{}{"unauthorized_user_token"}},
		{"chart_create_session", []interface{}{chartSession, ""}},
		{"resolve_symbol", []interface{}{chartSession, "sds_sym_1", symbolSpec}},
		{"create_series", []interface{}{chartSession, "sds_1", "s1", "sds_sym_1", resolution, count, ""}},
	}

	for _, msg := range setup {
		frame, err := EncodeMessage(msg.method, msg.params)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return fmt.Errorf("failed to send %s: %w", msg.method, err)
		}
	}

	return nil
}

// readUpdates reads frames until the predicate accepts an update or the
// deadline passes. Heartbeats are echoed back; malformed packets are
// logged and skipped.
func (c *Client) readUpdates(ctx context.Context, conn *websocket.Conn, deadline time.Time, accept func(*Update) bool) (*Update, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("no data before deadline")
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read from feed: %w", err)
		}

		for _, payload := range SplitFrames(data) {
			if IsHeartbeat(payload) {
				if err := conn.WriteMessage(websocket.TextMessage, EncodeFrame(payload)); err != nil {
					return nil, fmt.Errorf("failed to echo heartbeat: %w", err)
				}
				continue
			}

			update, err := DecodeUpdate(payload)
			if err != nil {
				if err == ErrSkipPacket {
					continue
				}
				c.metrics.FeedDecodeSkips.Inc()
				c.logger.Debug("Skipping undecodable packet", zap.Error(err))
				continue
			}

			if accept(update) {
				return update, nil
			}
		}
	}
}

// HistoricalCandles fetches up to count bars for one symbol and timeframe.
// The bulk series arrives as a single timescale_update shortly after the
// series is created.
func (c *Client) HistoricalCandles(ctx context.Context, exchange, ticker, timeframe string, count int) ([]model.OHLCV, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := c.openSeries(conn, exchange, ticker, timeframe, count); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(30 * time.Second)
	update, err := c.readUpdates(ctx, conn, deadline, func(u *Update) bool {
		return u.Method == methodTimescaleUpdate
	})
	if err != nil {
		c.logger.Warn("No historical data received",
			zap.Error(err),
			zap.String("exchange", exchange),
			zap.String("ticker", ticker),
			zap.String("timeframe", timeframe))
		return nil, err
	}

	c.logger.Debug("Fetched historical candles",
		zap.Int("count", len(update.Bars)),
		zap.String("exchange", exchange),
		zap.String("ticker", ticker),
		zap.String("timeframe", timeframe))

	return update.Bars, nil
}

// CurrentBar opens a short-lived streaming session and returns the first
// valid live bar for the symbol. The wait is bounded by the configured
// per-symbol stream timeout; on expiry it reports no data.
func (c *Client) CurrentBar(ctx context.Context, exchange, ticker, timeframe string) (*model.OHLCV, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := c.openSeries(conn, exchange, ticker, timeframe, 1); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.streamTimeout)
	update, err := c.readUpdates(ctx, conn, deadline, func(u *Update) bool {
		return len(u.Bars) > 0
	})
	if err != nil {
		c.logger.Warn("No live tick received before timeout",
			zap.Error(err),
			zap.String("exchange", exchange),
			zap.String("ticker", ticker))
		return nil, fmt.Errorf("no data for %s:%s: %w", exchange, ticker, err)
	}

	bar := update.Bars[0]
	return &bar, nil
}

// StreamBars relays every decoded live bar to out until the context is
// cancelled. Used by the websocket layer to feed subscribed clients.
func (c *Client) StreamBars(ctx context.Context, exchange, ticker, timeframe string, out chan<- model.OHLCV) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := c.openSeries(conn, exchange, ticker, timeframe, 1); err != nil {
		return err
	}

	for {
		// Far deadline; cancellation is observed between reads
		deadline := time.Now().Add(time.Minute)
		update, err := c.readUpdates(ctx, conn, deadline, func(u *Update) bool {
			return len(u.Bars) > 0
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for _, bar := range update.Bars {
			select {
			case out <- bar:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
