package aws

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

type ErrorCategory string

// Error categories for better error classification and handling
const (
	// ErrResourceNotFound is returned when the instance, group or rule doesn't exist
	ErrResourceNotFound ErrorCategory = "resource_not_found"

	// ErrPermissionDenied is returned when AWS API access is denied
	ErrPermissionDenied ErrorCategory = "permission_denied"

	// ErrThrottling is returned when AWS API throttles the request
	ErrThrottling ErrorCategory = "request_throttled"

	// ErrInvalidState is returned when the instance state forbids the operation
	ErrInvalidState ErrorCategory = "invalid_state"

	// ErrWaitTimeout is returned when an instance did not reach the awaited state in time
	ErrWaitTimeout ErrorCategory = "wait_timeout"

	// ErrCanceled is returned when the caller's context ended before the operation finished
	ErrCanceled ErrorCategory = "canceled"

	// ErrConfigurationError is returned when there's an issue with AWS configuration
	ErrConfigurationError ErrorCategory = "configuration_error"

	// ErrNetworkError is returned for network-related errors accessing AWS API
	ErrNetworkError ErrorCategory = "network_error"

	// ErrInvalidInput is returned when invalid input is provided
	ErrInvalidInput ErrorCategory = "invalid_input"

	// ErrInternalError is returned for unexpected internal errors
	ErrInternalError ErrorCategory = "internal_error"
)

// Resource types used in error context
const (
	EC2ResourceType           = "EC2"
	SecurityGroupResourceType = "SecurityGroup"
)

// notFoundCodes are the EC2 error codes meaning the target is already gone.
var notFoundCodes = []string{
	"InvalidPermission.NotFound",
	"InvalidGroup.NotFound",
	"InvalidInstanceID.NotFound",
	"InvalidInstanceID.Malformed",
}

// Error represents an error that occurred during AWS operations with
// additional context about what went wrong.
type Error struct {
	// Category for programmatic error handling
	Category ErrorCategory

	// ResourceType identifies the AWS resource type (e.g., EC2, SecurityGroup)
	ResourceType string

	// ResourceID identifies the specific resource ID when applicable
	ResourceID string

	// Code is the AWS API error code, when the service returned one
	Code string

	// Message provides human-readable details
	Message string

	// Underlying is the wrapped cause of this error
	Underlying error
}

// Error returns a formatted error message
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	if e.ResourceID != "" {
		return fmt.Sprintf("%s: %s [resource: %s/%s]", e.Category, msg, e.ResourceType, e.ResourceID)
	}
	if e.ResourceType != "" {
		return fmt.Sprintf("%s: %s [resource type: %s]", e.Category, msg, e.ResourceType)
	}
	return fmt.Sprintf("%s: %s", e.Category, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewAWSError creates a new AWS error with the specified details
func NewAWSError(category ErrorCategory, resourceType, resourceID, message string, underlying error) *Error {
	return &Error{
		Category:     category,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Message:      message,
		Underlying:   underlying,
	}
}

// IsErrorCategory checks if an error belongs to a specific error category
func IsErrorCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var awsErr *Error
	if errors.As(err, &awsErr) {
		return awsErr.Category == category
	}

	return false
}

// IsNotFound reports whether err means the target no longer exists
func IsNotFound(err error) bool {
	return IsErrorCategory(err, ErrResourceNotFound)
}

// ClassifyAWSError classifies an AWS error from its API error code, falling
// back to the message text for errors raised before a response was received.
func ClassifyAWSError(err error, resourceType, resourceID string) *Error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	// Reference: https://docs.aws.amazon.com/AWSEC2/latest/APIReference/errors-overview.html
	code := ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
	}
	errMsg := err.Error()
	if code != "" {
		errMsg = code
	}

	var classified *Error
	switch {
	case contains(errMsg, notFoundCodes...):
		classified = NewAWSError(ErrResourceNotFound, resourceType, resourceID,
			"Resource not found", err)

	case contains(errMsg, "UnauthorizedOperation", "AuthFailure", "AccessDenied"):
		classified = NewAWSError(ErrPermissionDenied, resourceType, resourceID,
			"Access denied", err)

	case contains(errMsg, "RequestLimitExceeded", "Throttling"):
		classified = NewAWSError(ErrThrottling, resourceType, resourceID,
			"Request throttled", err)

	case contains(errMsg, "IncorrectInstanceState", "IncorrectState"):
		classified = NewAWSError(ErrInvalidState, resourceType, resourceID,
			"Instance is in an incompatible state", err)

	case contains(errMsg, "InvalidClientTokenId", "could not find region", "failed to retrieve credentials"):
		classified = NewAWSError(ErrConfigurationError, resourceType, resourceID,
			"AWS SDK configuration error", err)

	case contains(errMsg, "InvalidParameter", "ValidationError", "MalformedQueryString", "MissingParameter"):
		classified = NewAWSError(ErrInvalidInput, resourceType, resourceID,
			"Invalid input", err)

	case contains(errMsg, "no such host", "connection refused", "timeout"):
		classified = NewAWSError(ErrNetworkError, resourceType, resourceID,
			"Network error while accessing AWS API", err)

	default:
		classified = NewAWSError(ErrInternalError, resourceType, resourceID,
			"Internal error occurred", err)
	}
	classified.Code = code
	return classified
}

// contains checks if the error message contains any of the provided substrings
func contains(s string, substrings ...string) bool {
	s = strings.ToLower(s)
	for _, substr := range substrings {
		if strings.Contains(s, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}
