// Package error defines domain-specific errors for the bookkeeping engine.
package error

// RequestErrorCode defines error codes for requests rejected before any use case runs.
// Format: REQ-XXYYYY where XX is category and YYYY is specific error.
type RequestErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeMissingWorkspace RequestErrorCode = "REQ-010001"
	ErrCodeInvalidWorkspace RequestErrorCode = "REQ-010002"
	ErrCodeInvalidRequest   RequestErrorCode = "REQ-010003"
	ErrCodeInvalidID        RequestErrorCode = "REQ-010004"

	// Throttling errors (02XXXX)
	ErrCodeRateLimited RequestErrorCode = "REQ-020001"

	// Server errors (03XXXX)
	ErrCodeInternal RequestErrorCode = "REQ-030001"
)
