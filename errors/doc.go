// Package errors provides the structured error type returned by every
// docket operation. Errors carry a machine-readable code, the HTTP status
// received from the remote API (when there was one) and the underlying cause.
package errors
