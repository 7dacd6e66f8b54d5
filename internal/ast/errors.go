package ast

import (
	"errors"
	"fmt"
)

// ErrCodeDecodeFailed identifies DecodeError in logs and CLI output.
const ErrCodeDecodeFailed = "DECODE_FAILED"

// DecodeError reports a document that could not be turned into a query AST.
type DecodeError struct {
	// Format is the source format ("json", "yaml", "cue", "msgpack", "go").
	Format string

	// Path locates the offending node, e.g. "$.From.Sx".
	Path string

	// Line is the 1-based source line when the decoder knows it.
	Line int

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s (line %d)", e.Path, e.Line)
	}
	if loc != "" {
		return fmt.Sprintf("%s: %s: %s: %s", ErrCodeDecodeFailed, e.Format, loc, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrCodeDecodeFailed, e.Format, e.Message)
}

// IsDecodeError returns true if err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func decodeErrorf(format, path string, msg string, args ...any) *DecodeError {
	return &DecodeError{Format: format, Path: path, Message: fmt.Sprintf(msg, args...)}
}
