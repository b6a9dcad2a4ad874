package schema

import (
	"errors"
	"fmt"
)

// Failure categories for schema derivation. Every error returned by the
// loader, runner and introspect packages matches one of these with
// errors.Is.
var (
	// ErrEngine indicates the execution engine rejected a statement or batch.
	ErrEngine = errors.New("engine failure")

	// ErrParse indicates text could not be parsed into statements.
	ErrParse = errors.New("parse failure")

	// ErrResultCount indicates a different number of results than expected.
	ErrResultCount = errors.New("result count mismatch")

	// ErrUnexpectedType indicates a value or statement of the wrong shape.
	ErrUnexpectedType = errors.New("unexpected type")

	// ErrMissingKey indicates an expected mapping key was absent.
	ErrMissingKey = errors.New("missing expected key")

	// ErrIO indicates a filesystem failure.
	ErrIO = errors.New("io failure")
)

// EngineError wraps a failure reported by the execution engine.
type EngineError struct {
	Statement string // statement text, empty for batch-level failures
	Err       error
}

func (e *EngineError) Error() string {
	if e.Statement != "" {
		return fmt.Sprintf("engine failure executing %q: %v", e.Statement, e.Err)
	}
	return fmt.Sprintf("engine failure: %v", e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// ParseError reports text that failed to parse. Path names the migration
// file; Source describes the text when it did not come from a file.
type ParseError struct {
	Path   string
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = e.Source
	}
	if where == "" {
		return fmt.Sprintf("parse failure: %v", e.Err)
	}
	return fmt.Sprintf("parse failure in %s: %v", where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ResultCountError reports an unexpected number of results.
type ResultCountError struct {
	Expected int
	Got      int
}

func (e *ResultCountError) Error() string {
	return fmt.Sprintf("Expected %d rows, got %d", e.Expected, e.Got)
}

func (e *ResultCountError) Is(target error) bool { return target == ErrResultCount }

// UnexpectedTypeError reports a value whose shape did not match.
type UnexpectedTypeError struct {
	Expected string
	Got      string
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("Expected type %s, but got %s", e.Expected, e.Got)
}

func (e *UnexpectedTypeError) Is(target error) bool { return target == ErrUnexpectedType }

// MissingKeyError reports an absent key in an engine result mapping.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("Missing expected key %q", e.Key)
}

func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingKey }

// IOError wraps a filesystem failure with the operation and path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
