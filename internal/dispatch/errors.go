package dispatch

import (
	"errors"
	"fmt"
)

// ErrCodeNoMatch identifies NoMatchError in logs and CLI output.
const ErrCodeNoMatch = "NO_MATCHING_ALTERNATIVE"

// NoMatchError reports a node that none of a rule's alternatives accept.
// The AST is malformed; retrying cannot help.
type NoMatchError struct {
	// Rule is the name of the rule that was dispatching.
	Rule string

	// Kind is the shape of the rejected node ("map", "list", ...).
	Kind string

	// Snippet is a short JSON rendering of the node.
	Snippet string
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("%s: rule %s has no alternative for %s %s", ErrCodeNoMatch, e.Rule, e.Kind, e.Snippet)
	}
	return fmt.Sprintf("%s: rule %s has no alternative for %s", ErrCodeNoMatch, e.Rule, e.Kind)
}

// IsNoMatch returns true if err is or wraps a NoMatchError.
func IsNoMatch(err error) bool {
	var ne *NoMatchError
	return errors.As(err, &ne)
}
