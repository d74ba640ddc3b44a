package contextutils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with details",
			appError: &AppError{
				Code:     ErrorCodeRemoteTranslation,
				Severity: SeverityError,
				Message:  "Translation service reported an error",
				Details:  "unsupported language",
			},
			expected: "REMOTE_TRANSLATION_ERROR: Translation service reported an error - unsupported language",
		},
		{
			name: "error without details",
			appError: &AppError{
				Code:     ErrorCodeNothingToPlay,
				Severity: SeverityWarn,
				Message:  "Nothing to play",
			},
			expected: "NOTHING_TO_PLAY: Nothing to play",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := &AppError{Code: ErrorCodeNetwork, Cause: cause}

	assert.Equal(t, cause, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, cause))
}

func TestAppError_Is(t *testing.T) {
	err1 := &AppError{Code: ErrorCodeEmptyInput}
	err2 := &AppError{Code: ErrorCodeEmptyInput}
	err3 := &AppError{Code: ErrorCodeTimeout}

	assert.True(t, err1.Is(err2))
	assert.False(t, err1.Is(err3))
	assert.False(t, err1.Is(errors.New("regular error")))
}

func TestDerive(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Derive(ErrNetwork, "dial tcp: refused", cause)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrNetwork.Severity, err.Severity)
	assert.Equal(t, "dial tcp: refused", err.Details)
	// The sentinel itself is untouched
	assert.Empty(t, ErrNetwork.Details)
}

func TestNewAppError(t *testing.T) {
	err := NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Invalid input", "rate out of range")

	assert.Equal(t, ErrorCodeInvalidInput, err.Code)
	assert.Equal(t, SeverityWarn, err.Severity)
	assert.Equal(t, "Invalid input", err.Message)
	assert.Equal(t, "rate out of range", err.Details)
	assert.Nil(t, err.Cause)
}

func TestNewAppErrorWithCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewAppErrorWithCause(ErrorCodeSynthesis, SeverityError, "Speech synthesis failed", "espeak-ng", cause)

	assert.Equal(t, ErrorCodeSynthesis, err.Code)
	assert.Equal(t, cause, err.Cause)
}

func TestWrapError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "context"))
	})

	t.Run("app error keeps its code", func(t *testing.T) {
		wrapped := WrapError(ErrTimeout, "translate")

		var appErr *AppError
		require.True(t, AsError(wrapped, &appErr))
		assert.Equal(t, ErrorCodeTimeout, appErr.Code)
		assert.Equal(t, "translate", appErr.Message)
		assert.True(t, errors.Is(wrapped, ErrTimeout))
	})

	t.Run("regular error becomes internal", func(t *testing.T) {
		wrapped := WrapError(errors.New("boom"), "decode")
		assert.Equal(t, ErrorCodeInternalError, GetErrorCode(wrapped))
		assert.Contains(t, wrapped.Error(), "boom")
	})
}

func TestWrapErrorf(t *testing.T) {
	assert.NoError(t, WrapErrorf(nil, "anything %d", 1))

	wrapped := WrapErrorf(ErrInternalError, "failed to load config from %s: %w", "x.yaml", errors.New("missing"))
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(wrapped))
	assert.Contains(t, wrapped.Error(), "x.yaml")

	wrapped = WrapErrorf(ErrNetwork, "session %s", "abc")
	assert.Equal(t, ErrorCodeNetwork, GetErrorCode(wrapped))
}

func TestErrorWithContextf(t *testing.T) {
	err := ErrorWithContextf("service %s not found", "registry")
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(err))
	assert.Contains(t, err.Error(), "service registry not found")
}

func TestIsError(t *testing.T) {
	assert.True(t, IsError(Derive(ErrVoiceInput, "no-speech", nil), ErrVoiceInput))
	assert.True(t, IsError(fmt.Errorf("outer: %w", ErrEmptyInput), ErrEmptyInput))
	assert.False(t, IsError(ErrEmptyInput, ErrTimeout))
	assert.False(t, IsError(errors.New("plain"), ErrTimeout))
}

func TestGetErrorCodeAndSeverity(t *testing.T) {
	assert.Equal(t, ErrorCodeAlreadyInProgress, GetErrorCode(ErrAlreadyInProgress))
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(errors.New("plain")))
	assert.Equal(t, SeverityInfo, GetErrorSeverity(ErrStaleResponse))
	assert.Equal(t, SeverityError, GetErrorSeverity(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", ErrTimeout, true},
		{"network", Derive(ErrNetwork, "refused", nil), true},
		{"unavailable", ErrServiceUnavailable, true},
		{"fatal network", &AppError{Code: ErrorCodeNetwork, Severity: SeverityFatal}, false},
		{"empty input", ErrEmptyInput, false},
		{"remote", ErrRemoteTranslation, false},
		{"plain", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestGetErrorLocalizedMessage(t *testing.T) {
	msg := GetErrorLocalizedMessage(Derive(ErrRemoteTranslation, "unsupported language", nil), "en-US")
	assert.Equal(t, "The translation service could not translate this text.: unsupported language", msg)

	assert.Equal(t, "An error occurred", GetErrorLocalizedMessage(errors.New("x"), "en"))
}

func TestAppError_ToJSON(t *testing.T) {
	err := Derive(ErrNetwork, "502 Bad Gateway", errors.New("bad gateway"))
	body := err.ToJSON()

	assert.Equal(t, "NETWORK_ERROR", body["code"])
	assert.Equal(t, "Translation request failed", body["message"])
	assert.Equal(t, "error", body["severity"])
	assert.Equal(t, "502 Bad Gateway", body["details"])
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, "bad gateway", body["cause"])

	body = ErrNothingToPlay.ToJSON()
	assert.NotContains(t, body, "details")
	assert.NotContains(t, body, "cause")
	assert.Equal(t, false, body["retryable"])
}

func TestAppError_ToJSONWithLocale(t *testing.T) {
	body := ErrEmptyInput.ToJSONWithLocale("fr-FR")
	assert.Equal(t, "Veuillez saisir un texte à traduire.", body["message"])
	assert.Equal(t, body["message"], body["error"])
}
