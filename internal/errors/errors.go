package errors

import (
	"fmt"
)

// FathomError is the structured error type for fathom.
// It provides rich context for error handling, logging, and user presentation.
type FathomError struct {
	// Code is the unique error code (e.g., "ERR_402_UNKNOWN_MODE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Provider, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *FathomError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FathomError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with FathomError.
func (e *FathomError) Is(target error) bool {
	if t, ok := target.(*FathomError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *FathomError) WithDetail(key, value string) *FathomError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new FathomError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *FathomError {
	return &FathomError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a FathomError from an existing error.
// The error's message becomes the FathomError message.
func Wrap(code string, err error) *FathomError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// UnknownMode creates the rejection error for an unregistered search mode.
func UnknownMode(mode string) *FathomError {
	return New(ErrCodeUnknownMode, fmt.Sprintf("unknown search mode %q", mode), nil).
		WithDetail("mode", mode)
}

// PersonaNotAuthorized creates the rejection error for a gated mode.
func PersonaNotAuthorized(mode, personaID string) *FathomError {
	return New(ErrCodePersonaNotAuthorized,
		fmt.Sprintf("persona %q is not authorized for mode %q", personaID, mode), nil).
		WithDetail("mode", mode).
		WithDetail("persona", personaID)
}

// AllProvidersUnavailable creates the fatal error for a query where every
// configured provider failed or timed out.
func AllProvidersUnavailable(cause error) *FathomError {
	return New(ErrCodeAllProvidersDown, "search temporarily unavailable: all providers failed or timed out", cause)
}

// InvalidQuery creates a query validation error.
func InvalidQuery(message string) *FathomError {
	return New(ErrCodeInvalidQuery, message, nil)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a FathomError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if fe, ok := err.(*FathomError); ok {
		return fe.Retryable
	}
	return false
}

// GetCode extracts the error code from a FathomError.
// Returns empty string if not a FathomError.
func GetCode(err error) string {
	if fe, ok := err.(*FathomError); ok {
		return fe.Code
	}
	return ""
}

// GetCategory extracts the category from a FathomError.
// Returns empty string if not a FathomError.
func GetCategory(err error) Category {
	if fe, ok := err.(*FathomError); ok {
		return fe.Category
	}
	return ""
}
