package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status received from the remote API, 0 when no response arrived.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Transport ---

// ConnectionFailed creates a new AppError for a request that never got a response.
func ConnectionFailed(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to reach %s.", service),
		Retryable: true, Details: map[string]any{"service": service}, Cause: cause,
	}
}

// Timeout creates a new AppError for a request cancelled by its context.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request was cancelled or timed out.",
		Retryable: true, Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// --- Status ---

// UnexpectedStatus creates a new AppError for a response whose status is not accepted
// by the operation. The status is classified with FromStatus.
func UnexpectedStatus(method, url string, status int, body []byte) *AppError {
	e := FromStatus(status)
	e.Message = fmt.Sprintf("%s %s answered %d", method, url, status)
	e.Details = map[string]any{"method": method, "url": url}
	if len(body) > 0 {
		e.Details["body"] = truncate(string(body), 512)
	}
	return e
}

// FromStatus maps an HTTP status to an error code.
func FromStatus(status int) *AppError {
	code := ErrCodeUnexpectedStatus
	switch {
	case status == http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case status == http.StatusForbidden:
		code = ErrCodeForbidden
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		code = ErrCodeRateLimited
	case status >= 500:
		code = ErrCodeExternalService
	}
	return &AppError{
		Code:       code,
		Message:    http.StatusText(status),
		HTTPStatus: status,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Body ---

// MalformedBody creates a new AppError for a body that cannot be parsed as expected.
func MalformedBody(reason string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeMalformedBody, Message: fmt.Sprintf("Malformed response body: %s", reason),
		Cause: cause,
	}
}

// Hydration creates a new AppError for a JSON value that cannot be assigned to a field.
func Hydration(kind, field string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeHydration, Message: fmt.Sprintf("Cannot assign %s.%s", kind, field),
		Details: map[string]any{"kind": kind, "field": field}, Cause: cause,
	}
}

// --- Setup ---

// Configuration creates a new AppError for missing or invalid connector configuration.
func Configuration(reason string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: reason}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
