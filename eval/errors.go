package eval

import (
	"errors"
	"fmt"
)

// Sentinel errors for common evaluation failures.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrNilDocument indicates Evaluate was called without a document.
	ErrNilDocument = errors.New("nil document")

	// ErrInvalidDocument indicates the document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidRule indicates a rule failed validation.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidExternalFinding indicates an external finding could not
	// be normalized for merging.
	ErrInvalidExternalFinding = errors.New("invalid external finding")
)

// Error kinds categorize errors by their type.
const (
	// KindValidation represents malformed rule or document input.
	// Fatal at load time; evaluation never proceeds on invalid input.
	KindValidation = "validation"

	// KindPredicate represents expression evaluation failure. Always
	// recovered locally as a non-match, never surfaced to the caller.
	KindPredicate = "predicate"

	// KindTemplate represents an unresolved message-template
	// placeholder.
	KindTemplate = "template"

	// KindMerge represents a failure normalizing external findings.
	KindMerge = "merge"
)

// Error is a structured error type that wraps underlying errors with
// the operation that failed and the category of failure.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As().
type Error struct {
	// Op is the operation that failed (e.g., "Runner.Evaluate").
	Op string

	// Kind categorizes the error (e.g., KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error
}

// Error implements the error interface, returning a formatted message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("eval: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("eval: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and
// errors.As() to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches either another *Error with the same Kind (and Op, when
// the target sets one) or the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewMergeError creates a new Error with KindMerge.
func NewMergeError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindMerge, Err: err}
}
