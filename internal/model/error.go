// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

package model

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ErrorKindInternal ErrorKind = iota
	ErrorKindValidation
	ErrorKindNotFound
	ErrorKindConflict
	ErrorKindUnauthorized
	ErrorKindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindValidation:
		return "validation"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindConflict:
		return "conflict"
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error carries a stable kind next to a human readable message. Handlers
// map the kind to a transport status, stores attach the cause.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindConflict, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindForbidden, Message: fmt.Sprintf(format, args...)}
}

// WrapInternal hides the cause behind a generic message while keeping it
// reachable through errors.Unwrap for logging.
func WrapInternal(err error, message string) *Error {
	return &Error{Kind: ErrorKindInternal, Message: message, cause: err}
}

// KindOf reports the kind of err, ErrorKindInternal for anything that is
// not a *model.Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
