package querysql

import (
	"errors"
	"fmt"
)

// ErrCodeMissingField identifies MissingFieldError in logs and CLI output.
const ErrCodeMissingField = "MISSING_FIELD"

// MissingFieldError reports a statement whose required inner structure is
// absent or has the wrong shape, e.g. an Insert without a Table.
type MissingFieldError struct {
	// Statement is the statement or clause kind ("Insert", "Where").
	Statement string

	// Field is the path of the missing field ("Insert.Table").
	Field string

	// Reason says what was expected.
	Reason string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s statement: %s %s", ErrCodeMissingField, e.Statement, e.Field, e.Reason)
}

// IsMissingField returns true if err is or wraps a MissingFieldError.
func IsMissingField(err error) bool {
	var me *MissingFieldError
	return errors.As(err, &me)
}

func missingField(stmt, field, reason string) *MissingFieldError {
	return &MissingFieldError{Statement: stmt, Field: field, Reason: reason}
}

// StatementError attributes a CompileAll failure to one input statement.
type StatementError struct {
	Index int
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d: %v", e.Index, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
