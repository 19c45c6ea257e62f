package integration

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// ErrorContext
// ---------------------------------------------------------------------------

// ErrorContext carries the call-site details of a failed target request.
// Fields are named rather than a free-form map so every producer records the
// same shape and log fields stay stable.
type ErrorContext struct {
	// Target is the integration type the call was made against
	Target IntegrationType
	// TargetIdentifier distinguishes multiple instances of the same type
	TargetIdentifier string
	// Endpoint is the request path or API method name
	Endpoint string
	// Method is the HTTP method used
	Method string
	// EntityType is the catalog entity being synced, if any
	EntityType MappableType
	// EntityID is the catalog entity ID being synced, if any
	EntityID int64
	// Attempt is the 1-based attempt number within the current task
	Attempt int
	// ResponseBody is a bounded excerpt of the response body
	ResponseBody string
	// Category overrides status-code classification when no HTTP status is
	// available, such as an application-level error code in a 200 response
	Category ErrorCategory
}

// ---------------------------------------------------------------------------
// APIError
// ---------------------------------------------------------------------------

// APIError is the typed error returned by target clients. StatusCode is the
// HTTP status of the failed call, or 0 when no response was received.
type APIError struct {
	// Message is a human-readable description of the failure
	Message string
	// StatusCode is the HTTP status code, 0 when the request never completed
	StatusCode int
	// RetryAfterSeconds is the parsed Retry-After header, 0 when absent
	RetryAfterSeconds int
	// Context carries the call-site details
	Context ErrorContext
	// Err is the underlying transport error, if any
	Err error
}

// NewAPIError creates an APIError from an HTTP status code
func NewAPIError(message string, statusCode int, ctx ErrorContext) *APIError {
	return &APIError{
		Message:    message,
		StatusCode: statusCode,
		Context:    ctx,
	}
}

// NewConnectionError creates an APIError for a request that never produced a
// response
func NewConnectionError(err error, ctx ErrorContext) *APIError {
	return &APIError{
		Message: "connection failed",
		Context: ctx,
		Err:     err,
	}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("integration: %s call failed with status %d: %s",
			e.Context.Target, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("integration: %s call failed: %s: %v",
			e.Context.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("integration: %s call failed: %s", e.Context.Target, e.Message)
}

// Unwrap returns the underlying transport error
func (e *APIError) Unwrap() error {
	return e.Err
}

// Category classifies the failure. Status codes win; an explicit context
// category is used when no status is available; everything else is a
// connection failure when the request never completed, unknown otherwise.
func (e *APIError) Category() ErrorCategory {
	switch {
	case e.StatusCode == 401:
		return ErrorCategoryAuthentication
	case e.StatusCode == 403:
		return ErrorCategoryAuthorization
	case e.StatusCode == 404:
		return ErrorCategoryNotFound
	case e.StatusCode == 429:
		return ErrorCategoryRateLimited
	case e.StatusCode >= 500:
		return ErrorCategoryServerError
	case e.StatusCode == 0:
		if e.Context.Category.IsValid() {
			return e.Context.Category
		}
		return ErrorCategoryConnectionFailed
	default:
		if e.Context.Category.IsValid() {
			return e.Context.Category
		}
		return ErrorCategoryUnknown
	}
}

// IsRetryable returns true if the failure is worth retrying
func (e *APIError) IsRetryable() bool {
	return e.Category().IsRetryable()
}

// IsAuthError returns true for authentication and authorization failures
func (e *APIError) IsAuthError() bool {
	c := e.Category()
	return c == ErrorCategoryAuthentication || c == ErrorCategoryAuthorization
}

// IsNotFound returns true if the remote resource does not exist
func (e *APIError) IsNotFound() bool {
	return e.Category() == ErrorCategoryNotFound
}

// IsRateLimited returns true if the target throttled the call
func (e *APIError) IsRateLimited() bool {
	return e.Category() == ErrorCategoryRateLimited
}

// RetryAfter returns the wait the target asked for, or 0 when it gave none
func (e *APIError) RetryAfter() time.Duration {
	if e.RetryAfterSeconds <= 0 {
		return 0
	}
	return time.Duration(e.RetryAfterSeconds) * time.Second
}
