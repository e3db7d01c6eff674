package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure for callers that need to decide how to react
type Kind string

const (
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindInvalidReference    Kind = "invalid_reference"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindStorage             Kind = "storage"
	KindInvariantViolation  Kind = "invariant_violation"
)

// Error is a classified failure. IDs lists every offending identifier for
// KindInvalidReference.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	IDs     []string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	default:
		b.WriteString(string(e.Kind))
	}
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.IDs, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// NotFound reports a missing record
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// InvalidReference reports references to unknown records; ids must hold all of them
func InvalidReference(op, message string, ids []string) *Error {
	return &Error{Kind: KindInvalidReference, Op: op, Message: message, IDs: ids}
}

// Upstream wraps a failure of an external provider
func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Message: "upstream unavailable", Err: err}
}

// Storage wraps a persistence failure
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Err: err}
}

// Invariant reports a state that should not be reachable
func Invariant(op, message string) *Error {
	return &Error{Kind: KindInvariantViolation, Op: op, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// InvalidIDs returns the offending IDs carried by err, if any
func InvalidIDs(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.IDs
	}
	return nil
}
