// Package errorsx defines the structured error kinds the engine records
// against a Transaction, a block's plan execution, or the reactive
// fixpoint loop, adapted from sentra's internal/errors package.
package errorsx

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories the engine can raise.
type Kind string

const (
	Overflow        Kind = "Overflow"
	DomainMismatch  Kind = "DomainMismatch"
	ShapeMismatch   Kind = "ShapeMismatch"
	MissingTable    Kind = "MissingTable"
	IndexOutOfRange Kind = "IndexOutOfRange"
	TypeMismatch    Kind = "TypeMismatch"
	Divergence      Kind = "Divergence"
)

// Location pins an error to the table/row/col it occurred at. Row and Col
// are 1-based; zero means "not applicable" (e.g. a ShapeMismatch has no
// single cell).
type Location struct {
	Table uint64
	Row   uint32
	Col   uint32
}

func (l Location) String() string {
	if l.Table == 0 && l.Row == 0 && l.Col == 0 {
		return ""
	}
	return fmt.Sprintf("table=%d row=%d col=%d", l.Table, l.Row, l.Col)
}

// Error is a single structured failure produced by the engine. Several
// Errors accumulate per block invocation (see Propagation policy); they
// never themselves panic.
type Error struct {
	Kind     Kind
	Message  string
	At       Location
	cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if loc := e.At.String(); loc != "" {
		sb.WriteString(" (")
		sb.WriteString(loc)
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithLocation attaches table/row/col context to the error.
func (e *Error) WithLocation(loc Location) *Error {
	e.At = loc
	return e
}

// WithCause wraps an underlying cause with a stack trace via pkg/errors,
// so the root of a propagated failure keeps a trace even though Error's
// own Error() text stays short.
func (e *Error) WithCause(cause error) *Error {
	e.cause = errors.WithStack(cause)
	return e
}

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// List accumulates Errors produced during one block invocation or one
// Transaction apply, matching the propagation policy: most kinds append to
// the list and let execution continue; Divergence is always raised alone.
type List struct {
	errs []*Error
}

func (l *List) Add(err *Error) {
	l.errs = append(l.errs, err)
}

// Merge appends every error from other onto l; other may be nil.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.errs = append(l.errs, other.errs...)
}

func (l *List) Errs() []*Error {
	return l.errs
}

func (l *List) Empty() bool {
	return len(l.errs) == 0
}

func (l *List) Error() string {
	if l.Empty() {
		return ""
	}
	parts := make([]string, len(l.errs))
	for i, e := range l.errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
