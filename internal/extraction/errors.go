package extraction

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes generative client failures so callers and logs
// can reason about them without inspecting SDK-specific error types.
type ErrorCategory string

const (
	// ErrorTimeout indicates the client took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the client returned invalid or empty output.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorProviderOutage indicates the generative service is unavailable.
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// ClientError wraps a generative client failure with its normalized category.
type ClientError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ClientError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("extraction client [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("extraction client [%s]: %s", e.Category, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Underlying
}

// NewClientError creates a categorized client error. Timeouts, outages and
// rate limits are marked retryable.
func NewClientError(category ErrorCategory, message string, underlying error) *ClientError {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &ClientError{
		Category:   category,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks whether an error is worth retrying.
func IsRetryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// CategoryOf extracts the category from an error, defaulting to internal.
func CategoryOf(err error) ErrorCategory {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorInternal
}
