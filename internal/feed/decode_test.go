package feed

import (
	"errors"
	"testing"
)

const duPayload = `{"m":"du","p":["cs_abc",{"sds_1":{"s":[{"i":0,"v":[1700000000,100.5,110.0,99.0,105.25,1234.5]}]}}]}`

func TestDecodeUpdateDataUpdate(t *testing.T) {
	update, err := DecodeUpdate([]byte(duPayload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if update.Method != "du" {
		t.Errorf("method: got %s, want du", update.Method)
	}
	if len(update.Bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(update.Bars))
	}

	bar := update.Bars[0]
	if bar.Timestamp != 1700000000 {
		t.Errorf("timestamp: got %d, want 1700000000", bar.Timestamp)
	}
	if bar.Open != 100.5 || bar.High != 110.0 || bar.Low != 99.0 || bar.Close != 105.25 || bar.Volume != 1234.5 {
		t.Errorf("unexpected OHLCV: %+v", bar)
	}
}

func TestDecodeUpdateTimescaleUpdate(t *testing.T) {
	payload := `{"m":"timescale_update","p":["cs_abc",{"sds_1":{"s":[` +
		`{"i":0,"v":[1700000000,1,2,0.5,1.5,10]},` +
		`{"i":1,"v":[1700000060,1.5,2.5,1.0,2.0,20]}]}}]}`

	update, err := DecodeUpdate([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if update.Method != "timescale_update" {
		t.Errorf("method: got %s", update.Method)
	}
	if len(update.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(update.Bars))
	}
	if update.Bars[1].Timestamp != 1700000060 {
		t.Errorf("second bar timestamp: got %d", update.Bars[1].Timestamp)
	}
}

func TestDecodeUpdateSkipsNonDataPackets(t *testing.T) {
	for _, payload := range []string{
		`{"m":"symbol_resolved","p":["cs_abc"]}`,
		`{"m":"series_loading","p":[]}`,
		`{"m":"qsd","p":["qs_abc",{}]}`,
		`{"session_id":"abc"}`,
	} {
		_, err := DecodeUpdate([]byte(payload))
		if !errors.Is(err, ErrSkipPacket) {
			t.Errorf("payload %q: got %v, want ErrSkipPacket", payload, err)
		}
	}
}

func TestDecodeUpdateMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `~h~12`},
		{"missing series param", `{"m":"du","p":["cs_abc"]}`},
		{"series wrong shape", `{"m":"du","p":["cs_abc",[1,2,3]]}`},
		{"no complete bars", `{"m":"du","p":["cs_abc",{"sds_1":{"s":[{"i":0,"v":[1700000000,100]}]}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeUpdate([]byte(tc.payload))
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("got %v, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeUpdateDropsIncompleteBar(t *testing.T) {
	payload := `{"m":"du","p":["cs_abc",{"sds_1":{"s":[` +
		`{"i":0,"v":[1700000000,100]},` +
		`{"i":1,"v":[1700000060,1,2,0.5,1.5,10]}]}}]}`

	update, err := DecodeUpdate([]byte(payload))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(update.Bars) != 1 {
		t.Fatalf("expected the incomplete bar to be dropped, got %d bars", len(update.Bars))
	}
	if update.Bars[0].Timestamp != 1700000060 {
		t.Errorf("kept wrong bar: %+v", update.Bars[0])
	}
}

func TestResolution(t *testing.T) {
	cases := map[string]string{
		"1m": "1", "5m": "5", "15m": "15", "30m": "30",
		"1h": "60", "4h": "240", "1d": "D", "1w": "W", "1M": "M",
	}
	for tf, want := range cases {
		got, err := Resolution(tf)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tf, err)
			continue
		}
		if got != want {
			t.Errorf("%s: got %s, want %s", tf, got, want)
		}
	}

	if _, err := Resolution("2h"); err == nil {
		t.Error("expected error for unsupported timeframe")
	}
}
