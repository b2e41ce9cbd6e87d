package models

import (
	"errors"
	"fmt"
	"strings"
)

// Client-side validation errors. None of them is ever sent over the network.
var (
	ErrInvalidWorkflow  = errors.New("invalid workflow")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidStepType  = errors.New("invalid step type")
	ErrInvalidStatus    = errors.New("invalid workflow status")
	ErrIndexOutOfRange  = errors.New("step index out of range")
	ErrInvalidStepState = errors.New("invalid step status")
)

// ValidationError describes a model-level rule that was violated.
type ValidationError struct {
	Op     string   // Operation being performed
	Fields []string // Offending fields, e.g. "name" or "steps[2].name"
	Reason string   // Human-readable message
	Err    error    // One of the sentinel errors above
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Reason, strings.Join(e.Fields, ", "))
	}

	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IndexError reports a structural operation addressed at a step that does not exist.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: step index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// IsValidationError reports whether err was detected locally, before any request was made.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidWorkflow) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStepType) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidStepState)
}

// IsIndexOutOfRange reports whether err was caused by an invalid step index.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

func newValidationError(op, reason string, err error, fields ...string) *ValidationError {
	return &ValidationError{
		Op:     op,
		Fields: fields,
		Reason: reason,
		Err:    err,
	}
}
