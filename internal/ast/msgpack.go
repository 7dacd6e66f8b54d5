package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// DecodeMsgpack parses a MessagePack document into a Value.
//
// Maps and arrays are walked by hand so map entries keep wire order.
// Map keys must be strings.
func DecodeMsgpack(data []byte) (Value, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := decodeMsgpackValue(dec, "$")
	if err != nil {
		return nil, err
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, decodeErrorf("msgpack", "$", "unexpected data after top-level value")
	}
	return v, nil
}

func decodeMsgpackValue(dec *msgpack.Decoder, path string) (Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, decodeErrorf("msgpack", path, "unexpected end of input")
		}
		return nil, decodeErrorf("msgpack", path, "%v", err)
	}

	switch {
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, decodeErrorf("msgpack", path, "%v", err)
		}
		m := make(Map, 0, n)
		seen := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, decodeErrorf("msgpack", path, "map key: %v", err)
			}
			if seen[key] {
				return nil, decodeErrorf("msgpack", path, "duplicate key %q", key)
			}
			seen[key] = true
			val, err := decodeMsgpackValue(dec, childPath(path, key))
			if err != nil {
				return nil, err
			}
			m = append(m, Pair{Key: key, Value: val})
		}
		return m, nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, decodeErrorf("msgpack", path, "%v", err)
		}
		l := make(List, 0, n)
		for i := 0; i < n; i++ {
			val, err := decodeMsgpackValue(dec, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			l = append(l, val)
		}
		return l, nil
	}

	raw, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, decodeErrorf("msgpack", path, "%v", err)
	}
	return msgpackScalar(raw, path)
}

func msgpackScalar(raw any, path string) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		return Number(strconv.FormatUint(val, 10)), nil
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return nil, decodeErrorf("msgpack", path, "non-finite number %v", val)
		}
		return Number(strconv.FormatFloat(val, 'g', -1, 64)), nil
	case time.Time:
		return String(val.UTC().Format(time.RFC3339Nano)), nil
	default:
		return nil, decodeErrorf("msgpack", path, "unsupported value of type %T", raw)
	}
}

// EncodeMsgpack serializes v as MessagePack, keeping map order.
// Integer numbers are written as integers; other numbers as float64.
func EncodeMsgpack(v Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeMsgpackValue(enc, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeMsgpackValue(enc *msgpack.Encoder, v Value) error {
	switch val := v.(type) {
	case Map:
		if err := enc.EncodeMapLen(len(val)); err != nil {
			return err
		}
		for _, p := range val {
			if err := enc.EncodeString(p.Key); err != nil {
				return err
			}
			if err := encodeMsgpackValue(enc, p.Value); err != nil {
				return err
			}
		}
		return nil
	case List:
		if err := enc.EncodeArrayLen(len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := encodeMsgpackValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	case String:
		return enc.EncodeString(string(val))
	case Number:
		if i, ok := val.Int64(); ok {
			return enc.EncodeInt(i)
		}
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return fmt.Errorf("encode number %q: %w", string(val), err)
		}
		return enc.EncodeFloat64(f)
	case Bool:
		return enc.EncodeBool(bool(val))
	case Null:
		return enc.EncodeNil()
	default:
		return fmt.Errorf("encode msgpack: unsupported value %s", Kind(v))
	}
}
