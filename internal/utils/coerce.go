package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Lookup walks a nested document by dotted path ("academicRecord.points").
func Lookup(doc map[string]any, path string) (any, bool) {
	if doc == nil {
		return nil, false
	}

	var current any = doc
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok || current == nil {
			return nil, false
		}
	}

	return current, true
}

// First returns the value of the first path that is present in the document.
func First(doc map[string]any, paths ...string) (any, bool) {
	for _, path := range paths {
		if v, ok := Lookup(doc, path); ok {
			return v, true
		}
	}
	return nil, false
}

// CoerceBool reads booleans, "true"/"yes" strings and non-zero numbers.
func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return false
	}
}

// CoerceFloat returns NaN when the value is not a number or numeric string.
func CoerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

const (
	minIntFloat = float64(math.MinInt)
	maxIntFloat = float64(math.MaxInt)
)

// CoerceInt truncates numeric values; ok is false when the value is not
// numeric or does not fit into an int.
func CoerceInt(v any) (int, bool) {
	f := CoerceFloat(v)
	if math.IsNaN(f) || f < minIntFloat || f >= maxIntFloat {
		return 0, false
	}
	return int(f), true
}

// CoerceFloor reads a numeric lower bound. Fractions round up, and bounds above
// the int range clamp to math.MaxInt so they stay unreachable.
func CoerceFloor(v any) (int, bool) {
	f := CoerceFloat(v)
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= maxIntFloat:
		return math.MaxInt, true
	case f < minIntFloat:
		return math.MinInt, true
	}
	return int(math.Ceil(f)), true
}

// CoerceString renders scalars as trimmed strings and other values as JSON.
func CoerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// CoerceStrings accepts a list of scalars or a comma-separated string.
// Blank entries are dropped.
func CoerceStrings(v any) []string {
	var raw []string
	switch val := v.(type) {
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, CoerceString(item))
		}
	case string:
		raw = strings.Split(val, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
