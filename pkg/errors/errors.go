package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an upstream source
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new upstream source error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// CollectorError is the failure of one collection domain. The whole domain
// is abandoned; other domains are unaffected.
type CollectorError struct {
	Domain string
	Err    error
}

// Error implements the error interface
func (e *CollectorError) Error() string {
	return fmt.Sprintf("%s collector failed: %v", e.Domain, e.Err)
}

// Unwrap implements the unwrap interface
func (e *CollectorError) Unwrap() error {
	return e.Err
}

// NewCollectorError wraps the root cause of a failed domain collection.
// An error that already carries the same domain is returned unchanged.
func NewCollectorError(domain string, err error) error {
	if err == nil {
		return nil
	}
	var existing *CollectorError
	if stderrors.As(err, &existing) && existing.Domain == domain {
		return err
	}
	return &CollectorError{Domain: domain, Err: err}
}

// IsCollectorError reports whether err is a collector failure for domain.
// An empty domain matches any collector failure.
func IsCollectorError(err error, domain string) bool {
	var collectorErr *CollectorError
	if !stderrors.As(err, &collectorErr) {
		return false
	}
	return domain == "" || collectorErr.Domain == domain
}
