package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yourorg/marketdata-sync/internal/model"
)

// Envelope methods that carry series data. du is the incremental data
// update emitted while streaming; timescale_update carries the bulk
// historical series when a chart series is first created.
const (
	methodDataUpdate      = "du"
	methodTimescaleUpdate = "timescale_update"
)

// ErrSkipPacket marks envelopes that are valid protocol traffic but carry
// no series data (session acks, symbol resolution, quote noise). Callers
// skip these silently.
var ErrSkipPacket = errors.New("packet carries no series data")

// DecodeError reports a packet that claimed to carry data but whose shape
// could not be decoded. These are logged and skipped, never fatal.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode error: " + e.Reason
}

// Update is one decoded data-bearing envelope
type Update struct {
	Method string
	Bars   []model.OHLCV
}

// envelope is the loosely-typed JSON wrapper every packet arrives in
type envelope struct {
	Method string            `json:"m"`
	Params []json.RawMessage `json:"p"`
}

// seriesPayload is the nested per-series structure inside a data packet:
// a map of series id to a list of bars, each bar a {i, v} pair where v is
// [timestamp, open, high, low, close, volume].
type seriesPayload struct {
	Series []struct {
		Index  int       `json:"i"`
		Values []float64 `json:"v"`
	} `json:"s"`
}

// DecodeUpdate parses one frame payload into a typed update. Envelopes
// without the update markers return ErrSkipPacket; update envelopes with
// an unusable shape return a *DecodeError. Bars with missing fields are
// dropped individually.
func DecodeUpdate(payload []byte) (*Update, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("malformed envelope: %v", err)}
	}

	if env.Method != methodDataUpdate && env.Method != methodTimescaleUpdate {
		return nil, ErrSkipPacket
	}

	if len(env.Params) < 2 {
		return nil, &DecodeError{Reason: "update envelope missing series parameter"}
	}

	var series map[string]seriesPayload
	if err := json.Unmarshal(env.Params[1], &series); err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("unexpected series shape: %v", err)}
	}

	update := &Update{Method: env.Method}
	for _, payload := range series {
		for _, bar := range payload.Series {
			if len(bar.Values) < 6 {
				continue
			}
			update.Bars = append(update.Bars, model.OHLCV{
				Timestamp: int64(bar.Values[0]),
				Open:      bar.Values[1],
				High:      bar.Values[2],
				Low:       bar.Values[3],
				Close:     bar.Values[4],
				Volume:    bar.Values[5],
			})
		}
	}

	if len(update.Bars) == 0 {
		return nil, &DecodeError{Reason: "update envelope contained no complete bars"}
	}

	return update, nil
}

// Resolution maps a timeframe code to the platform's chart resolution
func Resolution(timeframe string) (string, error) {
	switch timeframe {
	case "1m":
		return "1", nil
	case "5m":
		return "5", nil
	case "15m":
		return "15", nil
	case "30m":
		return "30", nil
	case "1h":
		return "60", nil
	case "4h":
		return "240", nil
	case "1d":
		return "D", nil
	case "1w":
		return "W", nil
	case "1M":
		return "M", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", timeframe)
	}
}
