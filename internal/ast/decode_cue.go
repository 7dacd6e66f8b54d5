package ast

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// DecodeCUE evaluates a CUE document and converts the resulting concrete
// value into a Value. Struct fields keep their declaration order. Hidden
// fields and definitions are not part of the query and are skipped.
func DecodeCUE(data []byte, filename string) (Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueDecodeError("$", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueDecodeError("$", err)
	}
	return fromCUE(v, "$")
}

func fromCUE(v cue.Value, path string) (Value, error) {
	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, cueDecodeError(path, err)
		}
		m := Map{}
		for iter.Next() {
			key := iter.Label()
			val, err := fromCUE(iter.Value(), childPath(path, key))
			if err != nil {
				return nil, err
			}
			m = append(m, Pair{Key: key, Value: val})
		}
		return m, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, cueDecodeError(path, err)
		}
		l := List{}
		for i := 0; iter.Next(); i++ {
			val, err := fromCUE(iter.Value(), indexPath(path, i))
			if err != nil {
				return nil, err
			}
			l = append(l, val)
		}
		return l, nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, cueDecodeError(path, err)
		}
		return String(s), nil

	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		// MarshalJSON keeps CUE's exact decimal representation.
		text, err := v.MarshalJSON()
		if err != nil {
			return nil, cueDecodeError(path, err)
		}
		return Number(text), nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, cueDecodeError(path, err)
		}
		return Bool(b), nil

	case cue.NullKind:
		return Null{}, nil

	default:
		de := decodeErrorf("cue", path, "unsupported value kind %v", v.Kind())
		de.Line = v.Pos().Line()
		return nil, de
	}
}

func cueDecodeError(path string, err error) *DecodeError {
	de := &DecodeError{Format: "cue", Path: path, Message: err.Error()}
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			de.Line = pos.Line()
			de.Message = fmt.Sprint(e)
			break
		}
	}
	return de
}
