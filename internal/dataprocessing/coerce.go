package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces a spreadsheet cell into a finite float or nil.
// Strings keep only the runes [0-9+-.eE] before parsing, so "95.5%" yields 95.5
// and "N/A" yields nil.
func ToNumber(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return finite(float64(t))
	case int64:
		return finite(float64(t))
	case int32:
		return finite(float64(t))
	case uint:
		return finite(float64(t))
	case uint64:
		return finite(float64(t))
	case string:
		return parseNumeric(t)
	default:
		return nil
	}
}

func parseNumeric(s string) *float64 {
	if s == "" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '+', r == '-', r == '.', r == 'e', r == 'E':
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Stringify renders a cell the way it is compared and displayed: nil becomes "",
// whole floats drop their fraction.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// isBlank reports whether a cell carries no usable value.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
