// Package sqlerr defines the error kinds shared by the builder, row and
// dispatcher packages.
//
// Every failure surfaces as an *Error carrying a Kind so callers can branch
// with errors.As (or the Is* helpers) no matter how deeply it was wrapped:
//
//   - Validation: empty or invalid input (insert data, limits, directions)
//   - Schema: reference to an unknown table or column
//   - Operator: unsupported boolean operator token
//   - Engine: failure reported by the SQL engine itself
package sqlerr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error.
type Kind string

const (
	// KindValidation indicates caller input was rejected before anything ran.
	KindValidation Kind = "VALIDATION"

	// KindSchema indicates a table or column is not known to the schema.
	KindSchema Kind = "SCHEMA"

	// KindOperator indicates an unsupported AND/OR/"," token.
	KindOperator Kind = "OPERATOR"

	// KindEngine indicates the SQL engine rejected or failed a statement.
	KindEngine Kind = "ENGINE"
)

// Error is the structured error returned by tablekit packages.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Op names the operation that failed (e.g. "insert", "order by").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Schema creates a schema error.
func Schema(op, format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Operator creates an operator error for the rejected token.
func Operator(op, token string) *Error {
	return &Error{Kind: KindOperator, Op: op, Message: fmt.Sprintf("incorrect operator %q", token)}
}

// Engine wraps an error returned by the SQL engine.
// The statement text is kept in the message for diagnostics.
func Engine(op, statement string, err error) *Error {
	return &Error{Kind: KindEngine, Op: op, Message: statement, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is matches a bare *Error of the same Kind, so errors.Is(err,
// &Error{Kind: k}) finds a kind anywhere in err's tree, including inside
// errors.Join.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

func hasKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// IsValidation reports whether err contains a validation error.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsSchema reports whether err contains a schema error.
func IsSchema(err error) bool { return hasKind(err, KindSchema) }

// IsOperator reports whether err contains an operator error.
func IsOperator(err error) bool { return hasKind(err, KindOperator) }

// IsEngine reports whether err contains an engine error.
func IsEngine(err error) bool { return hasKind(err, KindEngine) }
