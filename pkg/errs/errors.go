// Package errs defines the error taxonomy shared by the domain packages.
//
// Validation, not-found and authorization failures are detected before any
// mutation starts. Storage failures are wrapped with ErrOperationFailed so the
// HTTP layer can report a generic outcome while the cause stays in the logs.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when an operation is attempted without an actor
	ErrUnauthenticated = errors.New("authentication required")

	// ErrOperationFailed wraps storage failures that abort an operation
	ErrOperationFailed = errors.New("operation failed")
)

// ValidationError is a user-visible rejection of input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced record that does not exist
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// AuthorizationError is returned when the access guard denies an actor
type AuthorizationError struct {
	Permission string
	Reason     string
}

func (e *AuthorizationError) Error() string {
	if e.Permission == "" {
		return "access denied: " + e.Reason
	}
	return fmt.Sprintf("access denied: %s required", e.Permission)
}

// Failed wraps a storage error as a generic operation failure
func Failed(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrOperationFailed, op, err)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAuthorization reports whether err is an AuthorizationError
func IsAuthorization(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}
