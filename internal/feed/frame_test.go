package feed

import (
	"bytes"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	got := EncodeFrame([]byte(`{"m":"ping"}`))
	want := []byte(`~m~12~m~{"m":"ping"}`)
	if !bytes.Equal(got, want) {
		t.Errorf("frame: got %q, want %q", got, want)
	}
}

func TestSplitFramesSingle(t *testing.T) {
	frames := SplitFrames([]byte(`~m~5~m~hello`))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if string(frames[0]) != "hello" {
		t.Errorf("payload: got %q, want %q", frames[0], "hello")
	}
}

func TestSplitFramesConcatenated(t *testing.T) {
	data := append(EncodeFrame([]byte("first")), EncodeFrame([]byte("second bit"))...)
	frames := SplitFrames(data)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if string(frames[0]) != "first" || string(frames[1]) != "second bit" {
		t.Errorf("payloads: got %q, %q", frames[0], frames[1])
	}
}

func TestSplitFramesRoundtrip(t *testing.T) {
	payloads := []string{`{"m":"du"}`, "~h~42", ""}
	var data []byte
	for _, p := range payloads {
		data = append(data, EncodeFrame([]byte(p))...)
	}

	frames := SplitFrames(data)
	if len(frames) != len(payloads) {
		t.Fatalf("expected %d frames, got %d", len(payloads), len(frames))
	}
	for i, p := range payloads {
		if string(frames[i]) != p {
			t.Errorf("frame %d: got %q, want %q", i, frames[i], p)
		}
	}
}

func TestSplitFramesMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
		want int
	}{
		{"no marker", "hello world", 0},
		{"bad length", "~m~xx~m~hello", 0},
		{"truncated payload", "~m~50~m~short", 0},
		{"valid then garbage", "~m~2~m~okgarbage", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frames := SplitFrames([]byte(tc.data))
			if len(frames) != tc.want {
				t.Errorf("got %d frames, want %d", len(frames), tc.want)
			}
		})
	}
}

func TestIsHeartbeat(t *testing.T) {
	if !IsHeartbeat([]byte("~h~17")) {
		t.Error("expected heartbeat")
	}
	if IsHeartbeat([]byte(`{"m":"du"}`)) {
		t.Error("json envelope misread as heartbeat")
	}
}
