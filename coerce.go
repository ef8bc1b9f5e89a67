package adminquery

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
)

// coerce converts value according to vt. ok is false when the value has no
// valid representation and the condition has to be dropped.
func coerce(value any, vt ValueType, op Operator) (any, bool) {
	if op == OpIn {
		if items, isSeq := toSlice(value); isSeq {
			if vt == "" || vt == TypeString {
				return items, true
			}
			out := make([]any, 0, len(items))
			for _, item := range items {
				if v, ok := coerceScalar(item, vt); ok {
					out = append(out, v)
				}
			}
			return out, true
		}
		v, ok := coerceScalar(value, vt)
		if !ok {
			return nil, false
		}
		return []any{v}, true
	}
	// Repeated query parameters arrive as slices; only a single value
	// has a meaning for scalar operators.
	if items, isSeq := toSlice(value); isSeq {
		if len(items) != 1 {
			return nil, false
		}
		value = items[0]
	}
	return coerceScalar(value, vt)
}

func coerceScalar(value any, vt ValueType) (any, bool) {
	switch vt {
	case TypeNumber:
		return toNumber(value)
	case TypeInt:
		f, ok := toNumber(value)
		if !ok || !integral(f) {
			return nil, false
		}
		return int64(f), true
	case TypeBoolean:
		return toBoolean(value)
	case TypeDate:
		return toDate(value)
	default:
		return value, true
	}
}

func toNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		n, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
		f = n
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case jsoniter.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		if _, isSeq := toSlice(v); isSeq {
			return 0, false
		}
		n, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = n
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBoolean(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func toDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		t, err := cast.ToTimeE(s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case bool:
		return time.Time{}, false
	}
	// Numbers are milliseconds since the epoch.
	if ms, ok := toNumber(value); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

// toSlice returns the elements of any slice or array value except byte slices.
func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toInt reads a reserved integer parameter such as page or limit.
func toInt(value any) (int, bool) {
	if items, isSeq := toSlice(value); isSeq {
		if len(items) == 0 {
			return 0, false
		}
		value = items[0]
	}
	f, ok := toNumber(value)
	if !ok || !integral(f) {
		return 0, false
	}
	return int(f), true
}

// integral reports whether f is a whole number within the int64 range.
func integral(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}

// toString reads a reserved string parameter such as sortBy.
func toString(value any) (string, bool) {
	if items, isSeq := toSlice(value); isSeq {
		if len(items) == 0 {
			return "", false
		}
		value = items[0]
	}
	s, ok := value.(string)
	return s, ok
}
