package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorType classifies failures so both surfaces can report them consistently.
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeConstraint     ErrorType = "CONSTRAINT"
	ErrorTypeInternal       ErrorType = "INTERNAL"
)

// FieldErrors maps a form or JSON field name to a user-facing message.
type FieldErrors map[string]string

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Fields  FieldErrors
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, fields FieldErrors) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Fields: fields}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{Type: ErrorTypeAuthentication, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

func NewConstraintError(message string, fields FieldErrors) *AppError {
	return &AppError{Type: ErrorTypeConstraint, Message: message, Fields: fields}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Err: err}
}

// IsType reports whether err is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// AsAppError wraps anything that is not already an AppError as an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("unexpected error", err)
}

// lookupError maps a failed single-row lookup to NotFound or Internal.
func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(what + " not found")
	}
	return NewInternalError("database error", err)
}
