package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable by a caller that chooses to)
const (
	// ErrCodeConnectionFailed indicates the remote API could not be reached.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request was cancelled or timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the remote API rejected the call with 429.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeExternalService indicates a 5xx answer from the remote API.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Status errors
const (
	// ErrCodeUnexpectedStatus indicates a status outside the accepted set for the operation.
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates the WSSE credentials were rejected.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates the credentials lack access to the resource.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Body errors
const (
	// ErrCodeMalformedBody indicates a response body that is not the expected JSON shape.
	ErrCodeMalformedBody ErrorCode = "MALFORMED_BODY"
	// ErrCodeHydration indicates a JSON value that does not fit the target field.
	ErrCodeHydration ErrorCode = "HYDRATION_ERROR"
)

// Setup errors
const (
	// ErrCodeConfiguration indicates the connector is missing or has invalid configuration.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeInvalidInput indicates invalid caller input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeRateLimited:      true,
	ErrCodeExternalService:  true,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// The connector itself never retries; the flag is advice for callers.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
