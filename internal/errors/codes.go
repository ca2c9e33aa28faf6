// Package errors provides structured error handling for fathom.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (index, corpus files)
//   - 3XX: Provider/network errors
//   - 4XX: Validation and authorization errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and index I/O errors.
	CategoryIO Category = "IO"
	// CategoryProvider indicates search-provider and network errors.
	CategoryProvider Category = "PROVIDER"
	// CategoryValidation indicates input validation and authorization errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeCorpusNotFound = "ERR_201_CORPUS_NOT_FOUND"
	ErrCodeCorruptIndex   = "ERR_202_CORRUPT_INDEX"

	// Provider errors (300-399)
	ErrCodeProviderTimeout     = "ERR_301_PROVIDER_TIMEOUT"
	ErrCodeProviderUnreachable = "ERR_302_PROVIDER_UNREACHABLE"
	ErrCodeAllProvidersDown    = "ERR_303_ALL_PROVIDERS_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidQuery         = "ERR_401_INVALID_QUERY"
	ErrCodeUnknownMode          = "ERR_402_UNKNOWN_MODE"
	ErrCodePersonaNotAuthorized = "ERR_403_PERSONA_NOT_AUTHORIZED"
	ErrCodeUnknownProvider      = "ERR_404_UNKNOWN_PROVIDER"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the error category from a code prefix.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryProvider
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from a code.
// Per-provider failures degrade the query rather than abort it.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeProviderTimeout, ErrCodeProviderUnreachable, ErrCodeUnknownProvider:
		return SeverityWarning
	case ErrCodeAllProvidersDown, ErrCodeCorruptIndex:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether an operation failing with this code
// may succeed on retry.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeProviderTimeout, ErrCodeProviderUnreachable, ErrCodeAllProvidersDown:
		return true
	default:
		return false
	}
}
