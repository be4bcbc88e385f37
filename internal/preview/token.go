package preview

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/starford/meow/internal/apperr"
)

// DecodeToken reads a JSON body of the form {"timestamp": N}. N may be a
// JSON integer, a float (truncated) or a string of digits; anything else
// is a *apperr.MalformedRequestError.
func DecodeToken(r io.Reader) (int64, error) {
	var req struct {
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return 0, &apperr.MalformedRequestError{Reason: "invalid JSON body", Err: err}
	}

	raw := bytes.TrimSpace(req.Timestamp)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, &apperr.MalformedRequestError{Reason: "timestamp is required"}
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, &apperr.MalformedRequestError{Reason: "timestamp is not a number", Err: err}
		}
	}
	return parseTimestamp(text)
}

func parseTimestamp(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &apperr.MalformedRequestError{Reason: "timestamp is not a number", Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, &apperr.MalformedRequestError{Reason: "timestamp out of range"}
	}
	return int64(f), nil
}
