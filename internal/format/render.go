package format

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dict2sql/internal/ir"
)

// ErrCodeMalformedIR identifies MalformedIRError in logs and CLI output.
const ErrCodeMalformedIR = "MALFORMED_IR"

// MalformedIRError reports a token that is neither atomic nor a sequence.
// It always indicates a bug in a rule, never bad user input.
type MalformedIRError struct {
	// Type is the Go type of the offending token.
	Type string
}

// Error implements the error interface.
func (e *MalformedIRError) Error() string {
	return fmt.Sprintf("%s: unexpected token of type %s", ErrCodeMalformedIR, e.Type)
}

// IsMalformedIR returns true if err is or wraps a MalformedIRError.
func IsMalformedIR(err error) bool {
	var me *MalformedIRError
	return errors.As(err, &me)
}

// Parenthesize wraps tokens in literal "(" and ")" atoms.
func Parenthesize(tokens ...ir.Token) ir.Seq {
	out := make(ir.Seq, 0, len(tokens)+2)
	out = append(out, ir.Atom("("))
	out = append(out, tokens...)
	return append(out, ir.Atom(")"))
}

// RenderFlat flattens t into production SQL: atoms pass through, sequences
// join their non-empty children with one space. Labels are transparent.
func RenderFlat(t ir.Token) (string, error) {
	switch v := t.(type) {
	case ir.Atom:
		return string(v), nil
	case ir.Seq:
		parts := make([]string, 0, len(v))
		for _, child := range v {
			if ir.IsEmpty(child) {
				continue
			}
			s, err := RenderFlat(child)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " "), nil
	case ir.Labeled:
		return RenderFlat(v.Token)
	default:
		if t == ir.Empty {
			return "", nil
		}
		return "", &MalformedIRError{Type: fmt.Sprintf("%T", t)}
	}
}

// RenderDebug realizes t into nested lists and prints it as YAML.
// Labeled tokens become single-key maps naming the chosen alternative.
func RenderDebug(t ir.Token) (string, error) {
	tree, _, err := realize(t)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return "", fmt.Errorf("render debug: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render debug: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// realize returns the plain form of t and whether it is non-empty.
func realize(t ir.Token) (any, bool, error) {
	switch v := t.(type) {
	case ir.Atom:
		return string(v), v != "", nil
	case ir.Seq:
		items := make([]any, 0, len(v))
		for _, child := range v {
			item, ok, err := realize(child)
			if err != nil {
				return nil, false, err
			}
			if ok {
				items = append(items, item)
			}
		}
		return items, len(items) > 0, nil
	case ir.Labeled:
		inner, ok, err := realize(v.Token)
		if err != nil || !ok {
			return nil, false, err
		}
		return map[string]any{v.Name: inner}, true, nil
	default:
		if t == ir.Empty {
			return nil, false, nil
		}
		return nil, false, &MalformedIRError{Type: fmt.Sprintf("%T", t)}
	}
}

// Formatter carries the render configuration of one compiler instance.
// It is a value and is never modified after construction.
type Formatter struct {
	Dialect Dialect
	Debug   bool
}

// CompileQuery renders t with the debug or flat renderer.
func (f Formatter) CompileQuery(t ir.Token) (string, error) {
	if f.Debug {
		return RenderDebug(t)
	}
	return RenderFlat(t)
}
