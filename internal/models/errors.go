package models

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeValidation represents input or config policy violations (400)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeRateLimit represents rate limiting errors (429)
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeProvider represents completion provider errors (502/503)
	ErrorTypeProvider ErrorType = "provider"
	// ErrorTypeRetryExhausted represents a provider error that survived all retry attempts (502)
	ErrorTypeRetryExhausted ErrorType = "retry_exhausted"
	// ErrorTypeTimeout represents timeout errors (504)
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeInternal represents internal server errors (500)
	ErrorTypeInternal ErrorType = "internal"
)

// Validation reason codes surfaced to callers alongside the message.
const (
	CodeQuestionTooShort   = "QUESTION_TOO_SHORT"
	CodeQuestionTooLong    = "QUESTION_TOO_LONG"
	CodeContextTooLong     = "CONTEXT_TOO_LONG"
	CodeBlockedContent     = "BLOCKED_CONTENT"
	CodeModelNotAllowed    = "MODEL_NOT_ALLOWED"
	CodeTemperatureRange   = "TEMPERATURE_OUT_OF_RANGE"
	CodeContextBudgetRange = "CONTEXT_BUDGET_OUT_OF_RANGE"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType     `json:"type"`
	Message    string        `json:"message"`
	Code       string        `json:"code,omitzero"`
	StatusCode int           `json:"-"`
	Retryable  bool          `json:"retryable"`
	RetryAfter time.Duration `json:"-"`
	Cause      error         `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// GetStatusCode returns the HTTP status code for the error
func (e *AppError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeProvider, ErrorTypeRetryExhausted:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a policy violation error with a reason code
func NewValidationError(message, code string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusBadRequest,
		Retryable:  false,
	}
}

// NewRateLimitError creates a rate limit error carrying the retry-after hint.
// It is a specialization of a policy violation: never retried by the pipeline,
// but distinguishable so callers can map it to a "retry later" response.
func NewRateLimitError(retryAfter time.Duration) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    fmt.Sprintf("rate limit exceeded, retry after %.1fs", retryAfter.Seconds()),
		Code:       CodeRateLimitExceeded,
		StatusCode: http.StatusTooManyRequests,
		Retryable:  true,
		RetryAfter: retryAfter,
	}
}

// NewProviderError creates a completion provider error. statusCode is the
// upstream HTTP status when known, zero otherwise.
func NewProviderError(provider, message string, statusCode int, retryable bool, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Message:    fmt.Sprintf("provider %s error: %s", provider, message),
		Code:       fmt.Sprintf("PROVIDER_%s_ERROR", provider),
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// NewRetryExhaustedError wraps the last transient error after all attempts failed
func NewRetryExhaustedError(attempts int, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeRetryExhausted,
		Message:    fmt.Sprintf("failed after %d attempts", attempts),
		Code:       "RETRY_EXHAUSTED",
		StatusCode: http.StatusBadGateway,
		Retryable:  false,
		Cause:      cause,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    fmt.Sprintf("operation %s timed out", operation),
		StatusCode: http.StatusGatewayTimeout,
		Retryable:  true,
		Cause:      cause,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Retryable:  false,
		Cause:      cause,
	}
}

// SanitizeError sanitizes an error for external consumption
func SanitizeError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:       appErr.Type,
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.GetStatusCode(),
			Retryable:  appErr.Retryable,
			RetryAfter: appErr.RetryAfter,
		}
	}

	return NewInternalError("an unexpected error occurred", err)
}
