package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// nullTokens are cell values tabular exports use for "no value"
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"-nan": true,
	"na":   true,
	"n/a":  true,
	"#n/a": true,
	"null": true,
	"none": true,
	"<na>": true,
}

func isNullToken(s string) bool {
	return nullTokens[strings.ToLower(s)]
}

// toText coerces a cell to trimmed text. Nulls and unconvertible values become "".
func toText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(val)
		if isNullToken(s) {
			return ""
		}
		return s
	case float64:
		if math.IsNaN(val) {
			return ""
		}
	case float32:
		if math.IsNaN(float64(val)) {
			return ""
		}
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// toNumber coerces a cell to a finite number. ok is false for nulls and
// anything that does not parse as a number.
func toNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0, false
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(val)
		if isNullToken(s) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toInt truncates a numeric cell toward zero, or returns def
func toInt(v any, def int) int {
	f, ok := toNumber(v)
	if !ok {
		return def
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// toFlag coerces a presence flag. Numbers are true when non-zero after
// truncation; strings also accept the usual boolean spellings.
func toFlag(v any) bool {
	if f, ok := toNumber(v); ok {
		return int(f) != 0
	}
	if s, ok := v.(string); ok {
		b, err := cast.ToBoolE(strings.TrimSpace(s))
		return err == nil && b
	}
	return false
}
