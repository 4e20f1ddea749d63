// Package apperr defines the typed failures returned by services.
//
// Services never write HTTP responses. They return an *Error (or wrap one),
// and the transport layer maps its Kind to a status code exactly once:
//
//	if err := rbac.CheckPermission(p, order.UserID.Hex()); err != nil {
//	    return err // Kind == PermissionDenied
//	}
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	Internal Kind = iota
	Validation
	BadRequest
	NotFound
	Conflict
	Unauthorized
	PermissionDenied
	Upstream
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case PermissionDenied:
		return "permission_denied"
	case Upstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified application failure.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // field-level detail for Validation
	Err     error             // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, apperr.ErrNotFound) works for any
// not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation       = &Error{Kind: Validation}
	ErrNotFound         = &Error{Kind: NotFound}
	ErrConflict         = &Error{Kind: Conflict}
	ErrUnauthorized     = &Error{Kind: Unauthorized}
	ErrPermissionDenied = &Error{Kind: PermissionDenied}
	ErrUpstream         = &Error{Kind: Upstream}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFoundf(format string, args ...any) *Error { return New(NotFound, format, args...) }

func Conflictf(format string, args ...any) *Error { return New(Conflict, format, args...) }

func Unauthorizedf(format string, args ...any) *Error { return New(Unauthorized, format, args...) }

func Forbiddenf(format string, args ...any) *Error { return New(PermissionDenied, format, args...) }

// Invalid builds a Validation error carrying per-field messages.
func Invalid(fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: "Validation failed", Fields: fields}
}

// KindOf returns the Kind of err, or Internal when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
