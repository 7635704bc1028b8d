package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine failures.
type Kind string

const (
	KindPermissionDenied    Kind = "PERMISSION_DENIED"
	KindPreconditionFailed  Kind = "PRECONDITION_FAILED"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindConcurrencyConflict Kind = "CONCURRENCY_CONFLICT"
	KindNotFound            Kind = "NOT_FOUND"
)

// Sentinels for errors.Is; matching is by kind.
var (
	ErrPermissionDenied    = &Error{Kind: KindPermissionDenied}
	ErrPreconditionFailed  = &Error{Kind: KindPreconditionFailed}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrConcurrencyConflict = &Error{Kind: KindConcurrencyConflict}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

// Error is a recoverable, per-operation failure. Reasons are the human
// readable explanations shown to the end user, in evaluation order.
type Error struct {
	Kind    Kind
	Action  string
	Reasons []string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Action != "" {
		b.WriteString(" (")
		b.WriteString(e.Action)
		b.WriteString(")")
	}
	if len(e.Reasons) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Reasons, "; "))
	} else if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Reason returns the first reason.
func (e *Error) Reason() string {
	if len(e.Reasons) == 0 {
		return ""
	}
	return e.Reasons[0]
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// NewError creates an error of kind for action.
func NewError(kind Kind, action string, reasons ...string) *Error {
	return &Error{Kind: kind, Action: action, Reasons: reasons}
}

func NewPermissionDeniedError(action string, reasons ...string) error {
	return NewError(KindPermissionDenied, action, reasons...)
}

func NewPreconditionFailedError(action string, reasons ...string) error {
	return NewError(KindPreconditionFailed, action, reasons...)
}

func NewValidationError(action, reason string) error {
	return NewError(KindValidation, action, reason)
}

func NewConcurrencyConflictError(action string, cause error) error {
	return &Error{Kind: KindConcurrencyConflict, Action: action, Cause: cause,
		Reasons: []string{"The obligation was changed by another user; reload and try again"}}
}

func NewNotFoundError(what, id string) error {
	return &Error{Kind: KindNotFound, Reasons: []string{fmt.Sprintf("%s %s not found", what, id)}}
}

// KindOf returns the kind of err, or an empty kind when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
