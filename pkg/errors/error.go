package errors

import (
	"errors"
	"fmt"
)

// Re-exported so callers only need one errors import.
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// Error extends error with a machine readable code.
type Error interface {
	error
	Code() string
	Unwrap() error
}

// AppError is the application error carried up to the transport layer.
// Message is safe to show to clients; the wrapped error is for logs only.
type AppError struct {
	code    string
	message string
	details string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *AppError) Code() string {
	return e.code
}

func (e *AppError) Message() string {
	return e.message
}

func (e *AppError) Details() string {
	return e.details
}

func (e *AppError) Unwrap() error {
	return e.err
}

// WithDetails returns a copy carrying client-facing details. The copy wraps the
// receiver so errors.Is against a sentinel still matches.
func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		code:    e.code,
		message: e.message,
		details: details,
		err:     e,
	}
}

// NewAppError creates an application error.
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// Wrap wraps err, keeping the code of an inner AppError when there is one.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return &AppError{code: appErr.Code(), message: appErr.message, details: appErr.details, err: fmt.Errorf("%s: %w", message, err)}
	}

	return NewAppError(ErrInternal, message, err)
}

// CodeOf returns the code of the first AppError in the chain, or INTERNAL.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}
