package remediation

import (
	"errors"
	"fmt"

	"autoremediator/internal/event"
	awsprovider "autoremediator/internal/providers/aws"
)

// Error categories surfaced in results
const (
	// ErrMalformedEvent means a required envelope field is missing
	ErrMalformedEvent = "malformed_event"

	// ErrConfiguration means required configuration is missing
	ErrConfiguration = "configuration_error"

	// ErrResourceNotFound means the target is already gone
	ErrResourceNotFound = "resource_not_found"

	// ErrTransientAPI covers every other EC2 failure
	ErrTransientAPI = "transient_api_error"
)

// Error represents a remediation failure with its category
type Error struct {
	// Category helps with programmatic error handling
	Category string

	// Message provides human-readable details
	Message string

	// Target identifies the resource involved (if applicable)
	Target string

	// Underlying is the wrapped cause of this error
	Underlying error
}

// Error returns the error message
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Category, e.Message)
	if e.Target != "" {
		msg = fmt.Sprintf("%s (target: %s)", msg, e.Target)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

// Unwrap returns the underlying error (for errors.Is/As support)
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a new error with the given category and details
func NewError(category, message, target string, underlying error) *Error {
	return &Error{
		Category:   category,
		Message:    message,
		Target:     target,
		Underlying: underlying,
	}
}

// IsErrorCategory checks if an error belongs to a specific error category
func IsErrorCategory(err error, category string) bool {
	if err == nil {
		return false
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Category == category
	}

	return false
}

// classify maps lower level errors onto the remediation categories
func classify(err error, target string) *Error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return e
	case errors.Is(err, event.ErrMalformedEvent):
		return NewError(ErrMalformedEvent, "event is missing required fields", target, err)
	case awsprovider.IsNotFound(err):
		return NewError(ErrResourceNotFound, "resource not found", target, err)
	default:
		return NewError(ErrTransientAPI, "EC2 call failed", target, err)
	}
}
