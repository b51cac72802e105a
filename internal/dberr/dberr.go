// Package dberr defines the engine's single error taxonomy.
//
// EDUCATIONAL NOTES:
// ------------------
// Every error the engine returns carries one of six kinds (Parse, Planner,
// Schema, Execution, NotFound, IO). Callers that need to branch on the
// failure class use errors.As to recover the *Error and inspect its Kind;
// everything else just treats it as a normal wrapped error via %w.
package dberr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// KindParse marks syntactically malformed or unsupported SQL.
	KindParse Kind = iota
	// KindPlanner marks a semantically invalid plan.
	KindPlanner
	// KindSchema marks a type/arity/constraint violation.
	KindSchema
	// KindExecution marks a runtime evaluation failure.
	KindExecution
	// KindNotFound marks a missing database/table/record/page/column.
	KindNotFound
	// KindIO marks disk failure, page-full, or (de)serialization failure.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindPlanner:
		return "planner"
	case KindSchema:
		return "schema"
	case KindExecution:
		return "execution"
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by every engine layer.
type Error struct {
	Kind Kind
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, allowing
// callers to write errors.Is(err, dberr.NotFound("")) style checks against
// a kind regardless of message or wrapped cause.
func (e *Error) Is(target error) bool {
	var other *Error
	if !stderrors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Parse builds a KindParse error.
func Parse(format string, args ...any) *Error { return newf(KindParse, format, args...) }

// Planner builds a KindPlanner error.
func Planner(format string, args ...any) *Error { return newf(KindPlanner, format, args...) }

// Schema builds a KindSchema error.
func Schema(format string, args ...any) *Error { return newf(KindSchema, format, args...) }

// Execution builds a KindExecution error.
func Execution(format string, args ...any) *Error { return newf(KindExecution, format, args...) }

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error { return newf(KindNotFound, format, args...) }

// IO builds a KindIO error, wrapping cause with a stack trace via
// github.com/pkg/errors since this is the one kind where "what was the OS
// doing" is worth preserving.
func IO(cause error, format string, args ...any) *Error {
	e := newf(KindIO, format, args...)
	if cause != nil {
		e.Err = errors.Wrap(cause, e.msg)
	}
	return e
}

// Wrap attaches an existing error to kind without reformatting its
// message, used when forwarding an error unchanged from a lower layer so
// it stays attributable to its originating kind.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if stderrors.As(err, &existing) {
		return err
	}
	return &Error{Kind: kind, msg: err.Error(), Err: err}
}

// KindOf extracts the Kind of err, returning ok=false if err is not (or does
// not wrap) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
