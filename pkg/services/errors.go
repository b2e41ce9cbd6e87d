// Package services provides the sandbox business operations behind the HTTP handlers.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// ErrInvalidRequest marks a request the service refuses to process (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrWorkflowNotFound is returned when a workflow is not found (404 Not Found).
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

	// ErrExecutionNotFound is returned when an execution is not found (404 Not Found).
	ErrExecutionNotFound = persistence.ErrExecutionNotFound

	// ErrExecutionFinished is returned when closing an execution that already reached a terminal status (409 Conflict).
	ErrExecutionFinished = errors.New("execution already finished")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || models.IsValidationError(err)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) || errors.Is(err, ErrExecutionNotFound)
}

func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrExecutionFinished)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
