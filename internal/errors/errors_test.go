package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
		retry    bool
	}{
		{"config", ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{"io", ErrCodeCorruptIndex, CategoryIO, SeverityFatal, false},
		{"provider timeout", ErrCodeProviderTimeout, CategoryProvider, SeverityWarning, true},
		{"provider unreachable", ErrCodeProviderUnreachable, CategoryProvider, SeverityWarning, true},
		{"all down", ErrCodeAllProvidersDown, CategoryProvider, SeverityFatal, true},
		{"unknown mode", ErrCodeUnknownMode, CategoryValidation, SeverityError, false},
		{"persona gate", ErrCodePersonaNotAuthorized, CategoryValidation, SeverityError, false},
		{"internal", ErrCodeInternal, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retry, err.Retryable)
		})
	}
}

func TestFathomError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeUnknownMode, "unknown search mode \"turbo\"", nil)
	assert.Equal(t, `[ERR_402_UNKNOWN_MODE] unknown search mode "turbo"`, err.Error())
}

func TestFathomError_IsMatchesByCode(t *testing.T) {
	a := UnknownMode("turbo")
	b := New(ErrCodeUnknownMode, "different message", nil)
	c := New(ErrCodeInvalidQuery, "other", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestFathomError_UnwrapChain(t *testing.T) {
	root := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeProviderUnreachable, fmt.Errorf("dial backend: %w", root))

	require.NotNil(t, err)
	assert.ErrorContains(t, err, "dial backend")
	assert.True(t, stderrors.Is(err, root))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail(t *testing.T) {
	err := PersonaNotAuthorized("uncensored", "guest")
	assert.Equal(t, "uncensored", err.Details["mode"])
	assert.Equal(t, "guest", err.Details["persona"])
}

func TestHelpers(t *testing.T) {
	err := AllProvidersUnavailable(nil)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrCodeAllProvidersDown, GetCode(err))
	assert.Equal(t, CategoryProvider, GetCategory(err))

	plain := stderrors.New("plain")
	assert.False(t, IsRetryable(plain))
	assert.Empty(t, GetCode(plain))
}
