package model

import (
	"time"
)

// Timeframes accepted by the HTTP surface and the sync workers
var ValidTimeframes = []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w", "1M"}

// SyncTimeframes are the bar intervals the candles worker backfills
var SyncTimeframes = []string{"1m", "5m", "15m", "1h", "4h", "1d"}

// IsValidTimeframe reports whether tf is in the accepted timeframe enum
func IsValidTimeframe(tf string) bool {
	for _, v := range ValidTimeframes {
		if v == tf {
			return true
		}
	}
	return false
}

// OHLCV is one Open/High/Low/Close/Volume bar as decoded from the feed
type OHLCV struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// PriceChange returns close - open
func (o OHLCV) PriceChange() float64 {
	return o.Close - o.Open
}

// PriceChangePercent returns the change relative to open, in percent.
// Defined as 0 when open is 0.
func (o OHLCV) PriceChangePercent() float64 {
	if o.Open == 0 {
		return 0
	}
	return o.PriceChange() / o.Open * 100
}

// IsPositive reports whether the bar closed at or above its open
func (o OHLCV) IsPositive() bool {
	return o.PriceChange() >= 0
}

// Candle is one persisted historical bar, immutable once inserted
// and unique per (asset_id, timeframe, timestamp)
type Candle struct {
	ID        string    `json:"id" db:"id"`
	AssetID   string    `json:"asset_id" db:"asset_id"`
	Symbol    string    `json:"symbol" db:"symbol"`
	Timeframe string    `json:"timeframe" db:"timeframe"`
	Timestamp int64     `json:"timestamp" db:"timestamp"`
	Datetime  time.Time `json:"datetime" db:"datetime"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
	Volume    float64   `json:"volume" db:"volume"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CurrentCandle is the continuously overwritten most-recent bar per asset.
// Unique per asset id and per symbol; a snapshot, not history.
type CurrentCandle struct {
	ID                 string    `json:"id" db:"id"`
	AssetID            string    `json:"asset_id" db:"asset_id"`
	Symbol             string    `json:"symbol" db:"symbol"`
	Timeframe          string    `json:"timeframe" db:"timeframe"`
	Timestamp          int64     `json:"timestamp" db:"timestamp"`
	Datetime           time.Time `json:"datetime" db:"datetime"`
	Open               float64   `json:"open" db:"open"`
	High               float64   `json:"high" db:"high"`
	Low                float64   `json:"low" db:"low"`
	Close              float64   `json:"close" db:"close"`
	Volume             float64   `json:"volume" db:"volume"`
	PriceChange        float64   `json:"price_change" db:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent" db:"price_change_percent"`
	IsPositive         bool      `json:"is_positive" db:"is_positive"`
	LastUpdate         time.Time `json:"last_update" db:"last_update"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// CurrentCandleInput holds the fields upserted by the current-candles worker
type CurrentCandleInput struct {
	AssetID            string
	Symbol             string
	Timeframe          string
	Timestamp          int64
	Datetime           time.Time
	Open               float64
	High               float64
	Low                float64
	Close              float64
	Volume             float64
	PriceChange        float64
	PriceChangePercent float64
	IsPositive         bool
}

// CurrentCandleFromBar derives the stored snapshot fields from a decoded bar
func CurrentCandleFromBar(assetID, symbol, timeframe string, bar OHLCV) CurrentCandleInput {
	return CurrentCandleInput{
		AssetID:            assetID,
		Symbol:             symbol,
		Timeframe:          timeframe,
		Timestamp:          bar.Timestamp,
		Datetime:           time.Unix(bar.Timestamp, 0).UTC(),
		Open:               bar.Open,
		High:               bar.High,
		Low:                bar.Low,
		Close:              bar.Close,
		Volume:             bar.Volume,
		PriceChange:        bar.PriceChange(),
		PriceChangePercent: bar.PriceChangePercent(),
		IsPositive:         bar.IsPositive(),
	}
}
