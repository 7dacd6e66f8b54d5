package cli

import (
	"errors"
	"os"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/dispatch"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/querysql"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No query or scenario files found
	ErrCodeDecodeFailed = "E004" // Query document could not be decoded
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeUnsupported  = "E006" // Unsupported file extension
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeDatabase     = "E008" // Database open or execution error
	ErrCodeScenario     = "E009" // Scenario file invalid

	// Compilation errors
	ErrCodeNoMatch      = "E010" // No alternative accepted a node
	ErrCodeMissingField = "E011" // Statement lacks a required field
	ErrCodeMalformedIR  = "E012" // Renderer met an invalid token
)

// LoadError is a file-level failure with a CLI error code.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return e.Code + ": " + e.Path + ": " + e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error to its CLI code.
func ErrorCode(err error) string {
	var loadErr *LoadError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &loadErr):
		return loadErr.Code
	case dispatch.IsNoMatch(err):
		return ErrCodeNoMatch
	case querysql.IsMissingField(err):
		return ErrCodeMissingField
	case format.IsMalformedIR(err):
		return ErrCodeMalformedIR
	case ast.IsDecodeError(err):
		return ErrCodeDecodeFailed
	case errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound
	default:
		return ErrCodeGeneric
	}
}
