package ast

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// FromGo converts plain Go data (as produced by encoding/json or written as
// a literal) into a Value.
//
// Go maps have no order, so map[string]any keys are sorted. Callers that
// need a specific column order must build a Map directly.
func FromGo(v any) (Value, error) {
	return fromGo(v, "$")
}

// MustFromGo is FromGo for literals in tests and examples. It panics on error.
func MustFromGo(v any) Value {
	val, err := FromGo(v)
	if err != nil {
		panic(err)
	}
	return val
}

func fromGo(v any, path string) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return Number(strconv.FormatUint(val, 10)), nil
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return nil, decodeErrorf("go", path, "non-finite number %v", val)
		}
		return Number(strconv.FormatFloat(val, 'g', -1, 64)), nil
	case json.Number:
		return Number(val), nil
	case []any:
		l := make(List, len(val))
		for i, item := range val {
			elem, err := fromGo(item, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			l[i] = elem
		}
		return l, nil
	case []string:
		l := make(List, len(val))
		for i, s := range val {
			l[i] = String(s)
		}
		return l, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Map, 0, len(val))
		for _, k := range keys {
			elem, err := fromGo(val[k], childPath(path, k))
			if err != nil {
				return nil, err
			}
			m = append(m, Pair{Key: k, Value: elem})
		}
		return m, nil
	default:
		return nil, decodeErrorf("go", path, "unsupported type %s", fmt.Sprintf("%T", v))
	}
}
