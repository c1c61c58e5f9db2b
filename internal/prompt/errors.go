package prompt

import (
	"errors"
	"fmt"
)

// Error kinds. Public operations wrap failures in one of these so
// callers can branch with errors.Is without parsing messages.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrExternal     = errors.New("external service failure")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &kindError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

// Preconditionf builds a precondition error with a formatted message.
func Preconditionf(format string, args ...any) error {
	return &kindError{kind: ErrPrecondition, msg: fmt.Sprintf(format, args...)}
}

// Externalf builds an external-service error with a formatted message.
func Externalf(format string, args ...any) error {
	return &kindError{kind: ErrExternal, msg: fmt.Sprintf(format, args...)}
}
