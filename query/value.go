package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// missingText is the text a filter sees for a property the record lacks.
// A filter on an absent key therefore only matches substrings of "undefined".
const missingText = "undefined"

// propertyText renders a decoded JSON property value as filter text.
func propertyText(v any, present bool) string {
	if !present {
		return missingText
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			if el == nil {
				continue
			}
			parts[i] = propertyText(el, true)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func propertyNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// compareValues orders two present property values: numerically when both are
// numbers, by text otherwise.
func compareValues(a, b any) int {
	if fa, ok := propertyNumber(a); ok {
		if fb, ok := propertyNumber(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(propertyText(a, true), propertyText(b, true))
}
