package model

import "testing"

func TestPriceChange(t *testing.T) {
	bar := OHLCV{Open: 100, Close: 105.5}
	if got := bar.PriceChange(); got != 5.5 {
		t.Errorf("price change: got %v, want 5.5", got)
	}
	if !bar.IsPositive() {
		t.Error("expected positive bar")
	}

	down := OHLCV{Open: 100, Close: 90}
	if got := down.PriceChange(); got != -10 {
		t.Errorf("price change: got %v, want -10", got)
	}
	if down.IsPositive() {
		t.Error("expected negative bar")
	}
}

func TestPriceChangePercent(t *testing.T) {
	bar := OHLCV{Open: 200, Close: 210}
	if got := bar.PriceChangePercent(); got != 5 {
		t.Errorf("percent: got %v, want 5", got)
	}
}

func TestPriceChangePercentZeroOpen(t *testing.T) {
	bar := OHLCV{Open: 0, Close: 42}
	if got := bar.PriceChangePercent(); got != 0 {
		t.Errorf("percent with zero open: got %v, want 0", got)
	}
}

func TestFlatBarIsPositive(t *testing.T) {
	bar := OHLCV{Open: 100, Close: 100}
	if !bar.IsPositive() {
		t.Error("flat bar should count as positive")
	}
}

func TestIsValidTimeframe(t *testing.T) {
	for _, tf := range ValidTimeframes {
		if !IsValidTimeframe(tf) {
			t.Errorf("%s should be valid", tf)
		}
	}
	for _, tf := range []string{"2h", "3m", "", "60", "1D"} {
		if IsValidTimeframe(tf) {
			t.Errorf("%s should be invalid", tf)
		}
	}
}

func TestCurrentCandleFromBar(t *testing.T) {
	bar := OHLCV{Timestamp: 1700000000, Open: 100, High: 120, Low: 95, Close: 110, Volume: 3.5}
	input := CurrentCandleFromBar("asset-1", "BINANCE:BTCUSDT", "1m", bar)

	if input.AssetID != "asset-1" || input.Symbol != "BINANCE:BTCUSDT" || input.Timeframe != "1m" {
		t.Errorf("identity fields: %+v", input)
	}
	if input.Datetime.Unix() != bar.Timestamp {
		t.Errorf("datetime: got %v, want unix %d", input.Datetime, bar.Timestamp)
	}
	if input.PriceChange != 10 {
		t.Errorf("price change: got %v, want 10", input.PriceChange)
	}
	if input.PriceChangePercent != 10 {
		t.Errorf("percent: got %v, want 10", input.PriceChangePercent)
	}
	if !input.IsPositive {
		t.Error("expected positive")
	}
}
