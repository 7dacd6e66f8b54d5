package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a sealed interface representing one node of a query AST.
// Only String, Number, Bool, Null, List and Map implement it.
//
// Values are read-only once decoded. The compiler never mutates them, so a
// single tree may be compiled concurrently by any number of goroutines.
type Value interface {
	astValue() // Sealed - only these types implement it
}

// String is a text scalar.
type String string

func (String) astValue() {}

// Number is a numeric scalar kept as the decimal text it was written with.
// Keeping the text (instead of a float64) makes rendering deterministic and
// lets "10" and "10.0" stay distinct.
type Number string

func (Number) astValue() {}

// Int64 reports the number as an int64 when it is an integer literal.
func (n Number) Int64() (int64, bool) {
	i, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// MarshalJSON implements json.Marshaler for Number.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(json.Number(n))
}

// Bool is a boolean scalar.
type Bool bool

func (Bool) astValue() {}

// Null represents an explicit null in the source document.
type Null struct{}

func (Null) astValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// List is an ordered sequence of values.
type List []Value

func (List) astValue() {}

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   string
	Value Value
}

// Map is an association map that remembers document order.
//
// The order is part of the query: Insert and Update derive their column list
// and value list from it, so it is never re-sorted.
type Map []Pair

func (Map) astValue() {}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in document order.
func (m Map) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

// Pairs returns a copy of the entries in document order.
func (m Map) Pairs() []Pair {
	pairs := make([]Pair, len(m))
	copy(pairs, m)
	return pairs
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m)
}

// MarshalJSON implements json.Marshaler for Map, keeping document order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(p.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", p.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", p.Key, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// P is a shorthand for Pair used when building maps by hand.
// Example: ast.Map{ast.P("Select", ast.String("*")), ast.P("From", ast.String("Customer"))}
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// Int creates a Number from an int64.
func Int(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// Kind names the shape of a value for diagnostics.
func Kind(v Value) string {
	switch v.(type) {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Null:
		return "null"
	case List:
		return "list"
	case Map:
		return "map"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// ScalarText returns the text of a string, number or bool value.
// Null, lists and maps have no scalar text.
func ScalarText(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Number:
		return string(val), true
	case Bool:
		return strconv.FormatBool(bool(val)), true
	default:
		return "", false
	}
}

// Snippet renders v as compact JSON, truncated to max bytes, for error messages.
func Snippet(v Value, max int) string {
	data, err := json.Marshal(v)
	if err != nil {
		return Kind(v)
	}
	if max > 3 && len(data) > max {
		return string(data[:max-3]) + "..."
	}
	return string(data)
}
