package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewInvalidArgumentError reports input that cannot be processed.
func NewInvalidArgumentError(format string, args ...any) error {
	return &DomainError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError() error {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication required",
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(msg string) error {
	return &DomainError{
		Code:    ErrCodeForbidden,
		Message: msg,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(format string, args ...any) error {
	return &DomainError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeNotFound
}

// IsConflict reports whether err carries ErrCodeConflict.
func IsConflict(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeConflict
}
