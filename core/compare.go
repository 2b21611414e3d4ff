package core

import (
	"strings"
	"time"
)

// CompareValues compares two loosely typed values the way dashboards order them:
// numbers numerically (any int, uint or float kind), strings lexicographically,
// times chronologically and bools false before true.
// ok is false when the values are incomparable (nil, mixed or unsupported kinds);
// incomparable values compare equal to everything.
func CompareValues(a, b interface{}) (cmp int, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}

	if fa, isNum := toFloat(a); isNum {
		fb, isNum := toFloat(b)
		if !isNum {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	switch va := a.(type) {
	case string:
		if vb, isStr := b.(string); isStr {
			return strings.Compare(va, vb), true
		}
	case time.Time:
		if vb, isTime := b.(time.Time); isTime {
			switch {
			case va.Before(vb):
				return -1, true
			case va.After(vb):
				return 1, true
			}
			return 0, true
		}
	case bool:
		if vb, isBool := b.(bool); isBool {
			switch {
			case va == vb:
				return 0, true
			case !va:
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
