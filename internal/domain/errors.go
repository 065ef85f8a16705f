package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrNotFound       = errors.New("not found")
	ErrNoRowsAffected = errors.New("no rows affected")
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidOrExpired  ErrorKind = "invalid_or_expired"
	KindDependencyFailure ErrorKind = "dependency_failure"
	KindPartialFailure    ErrorKind = "partial_failure"
	KindConflict          ErrorKind = "conflict"
	KindForbidden         ErrorKind = "forbidden"
	KindUnauthorized      ErrorKind = "unauthorized"
)

// Error is the structured failure returned by services. Err keeps the
// underlying cause for logs, Details carries data the caller may render
// (a deletion report, field errors).
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	Details any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewFieldValidationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Err: err}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: ErrNotFound}
}

func NewInvalidOrExpiredError(message string) *Error {
	return &Error{Kind: KindInvalidOrExpired, Message: message}
}

func NewDependencyError(message string, err error) *Error {
	return &Error{Kind: KindDependencyFailure, Message: message, Err: err}
}

func NewPartialFailureError(message string, details any) *Error {
	return &Error{Kind: KindPartialFailure, Message: message, Details: details}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: ErrDuplicateEntry}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf reports the taxonomy kind of err. Bare repository errors are
// dependency failures unless they are one of the sentinels above.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return KindConflict
	}

	return KindDependencyFailure
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
