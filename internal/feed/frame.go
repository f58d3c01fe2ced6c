package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The charting platform multiplexes messages over one websocket using a
// length-prefixed text framing: ~m~<len>~m~<payload>. Payloads are either
// JSON envelopes or ~h~<n> heartbeats that must be echoed back verbatim.
const frameMarker = "~m~"

// EncodeFrame wraps a payload in the wire framing
func EncodeFrame(payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(frameMarker)
	buf.WriteString(strconv.Itoa(len(payload)))
	buf.WriteString(frameMarker)
	buf.Write(payload)
	return buf.Bytes()
}

// EncodeMessage builds a framed JSON envelope for a protocol method call
func EncodeMessage(method string, params []interface{}) ([]byte, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"m": method,
		"p": params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", method, err)
	}
	return EncodeFrame(payload), nil
}

// SplitFrames extracts the payloads from a websocket message that may carry
// several concatenated frames. Malformed fragments are dropped rather than
// failing the whole message.
func SplitFrames(data []byte) [][]byte {
	var frames [][]byte
	rest := string(data)

	for len(rest) > 0 {
		if !strings.HasPrefix(rest, frameMarker) {
			break
		}
		rest = rest[len(frameMarker):]

		end := strings.Index(rest, frameMarker)
		if end < 0 {
			break
		}

		length, err := strconv.Atoi(rest[:end])
		if err != nil || length < 0 {
			break
		}
		rest = rest[end+len(frameMarker):]

		if length > len(rest) {
			break
		}
		frames = append(frames, []byte(rest[:length]))
		rest = rest[length:]
	}

	return frames
}

// IsHeartbeat reports whether a frame payload is a keepalive probe
func IsHeartbeat(payload []byte) bool {
	return bytes.HasPrefix(payload, []byte("~h~"))
}
