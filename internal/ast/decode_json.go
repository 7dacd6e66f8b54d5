package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// DecodeJSON parses a JSON document into a Value.
//
// Decoding walks the token stream so object keys keep their document order;
// unmarshaling into map[string]any would lose it. Numbers keep their literal
// text and duplicate keys are rejected.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec, "$")
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, decodeErrorf("json", "$", "unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder, path string) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, decodeErrorf("json", path, "unexpected end of input")
		}
		return nil, decodeErrorf("json", path, "%v", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec, path)
		case '[':
			return decodeJSONArray(dec, path)
		default:
			return nil, decodeErrorf("json", path, "unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, decodeErrorf("json", path, "unexpected token %T", tok)
	}
}

func decodeJSONObject(dec *json.Decoder, path string) (Value, error) {
	m := Map{}
	seen := make(map[string]bool)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, decodeErrorf("json", path, "%v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, decodeErrorf("json", path, "object key must be a string, got %T", keyTok)
		}
		if seen[key] {
			return nil, decodeErrorf("json", path, "duplicate key %q", key)
		}
		seen[key] = true

		val, err := decodeJSONValue(dec, childPath(path, key))
		if err != nil {
			return nil, err
		}
		m = append(m, Pair{Key: key, Value: val})
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, decodeErrorf("json", path, "%v", err)
	}
	return m, nil
}

func decodeJSONArray(dec *json.Decoder, path string) (Value, error) {
	l := List{}
	for i := 0; dec.More(); i++ {
		val, err := decodeJSONValue(dec, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		l = append(l, val)
	}

	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, decodeErrorf("json", path, "%v", err)
	}
	return l, nil
}
