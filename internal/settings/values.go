package settings

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// String returns the override stored under key, or fallback when absent or not a string.
func (s *Snapshot) String(key, fallback string) string {
	raw, ok := s.Value(key)
	if !ok {
		return fallback
	}
	if parsed, okParse := parseString(raw); okParse {
		return parsed
	}
	return fallback
}

// Int64 returns the integer override stored under key, or fallback when absent or invalid.
func (s *Snapshot) Int64(key string, fallback int64) int64 {
	raw, ok := s.Value(key)
	if !ok {
		return fallback
	}
	if parsed, okParse := parseInt64(raw); okParse {
		return parsed
	}
	return fallback
}

func parseString(raw json.RawMessage) (string, bool) {
	raw = bytesTrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		return s, true
	}
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if errUnmarshal := json.Unmarshal(raw, &wrapper); errUnmarshal == nil && len(wrapper.Value) > 0 {
		return parseString(wrapper.Value)
	}
	return "", false
}

func parseInt64(raw json.RawMessage) (int64, bool) {
	raw = bytesTrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var n int64
	if errUnmarshal := json.Unmarshal(raw, &n); errUnmarshal == nil {
		return n, true
	}
	var f float64
	if errUnmarshal := json.Unmarshal(raw, &f); errUnmarshal == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		parsed, errParse := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if errParse == nil {
			return parsed, true
		}
	}
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if errUnmarshal := json.Unmarshal(raw, &wrapper); errUnmarshal == nil && len(wrapper.Value) > 0 {
		return parseInt64(wrapper.Value)
	}
	return 0, false
}

func bytesTrimSpace(input []byte) []byte {
	if len(input) == 0 {
		return nil
	}
	start := 0
	end := len(input)
	for start < end && input[start] <= ' ' {
		start++
	}
	for end > start && input[end-1] <= ' ' {
		end--
	}
	return input[start:end]
}
