package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to react to it, such as the
// HTTP layer choosing a status code.
type Kind string

const (
	KindInternal             Kind = "internal"
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation_error"
	KindOutOfBounds          Kind = "out_of_bounds"
	KindPositionConflict     Kind = "position_conflict"
	KindInvalidPlacementRule Kind = "invalid_placement_rule"
	KindConflict             Kind = "conflict"
)

// Error is the application error type. Start and End hold the offending RU
// range when the error is about rack space; both are zero otherwise.
type Error struct {
	Kind    Kind
	Message string
	Start   int
	End     int
	Err     error
}

// Sentinels for errors.Is checks. Only the Kind is compared.
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrValidation           = &Error{Kind: KindValidation}
	ErrOutOfBounds          = &Error{Kind: KindOutOfBounds}
	ErrPositionConflict     = &Error{Kind: KindPositionConflict}
	ErrInvalidPlacementRule = &Error{Kind: KindInvalidPlacementRule}
	ErrConflict             = &Error{Kind: KindConflict}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HasRange reports whether the error carries an RU range.
func (e *Error) HasRange() bool { return e.Start > 0 && e.End >= e.Start }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// NotFound builds a NotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a ValidationError.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict wraps a storage-level uniqueness violation.
func Conflict(err error, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Err: err}
}

// InvalidPlacementRule builds an InvalidPlacementRule error.
func InvalidPlacementRule(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidPlacementRule, Message: fmt.Sprintf(format, args...)}
}

// OutOfBounds builds an OutOfBounds error for the RU range [start, end].
func OutOfBounds(start, end int, format string, args ...any) *Error {
	return &Error{Kind: KindOutOfBounds, Message: fmt.Sprintf(format, args...), Start: start, End: end}
}

// PositionConflict builds a PositionConflict error for the RU range [start, end].
func PositionConflict(start, end int, format string, args ...any) *Error {
	return &Error{Kind: KindPositionConflict, Message: fmt.Sprintf(format, args...), Start: start, End: end}
}
