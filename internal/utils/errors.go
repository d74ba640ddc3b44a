// Package contextutils provides error handling utilities and standardized error types
// for consistent error management across the translator.
package contextutils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a standardized error code for API responses and notifications
type ErrorCode string

const (
	// Validation error codes

	// ErrorCodeInvalidInput indicates that the provided input is invalid
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeInvalidFormat indicates that the input format is invalid
	ErrorCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrorCodeValidationFailed indicates that validation has failed
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrorCodeEmptyInput indicates that there is no text to translate
	ErrorCodeEmptyInput ErrorCode = "EMPTY_INPUT"

	// Session error codes

	// ErrorCodeSessionNotFound indicates that the translation session does not exist or expired
	ErrorCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// ErrorCodeAlreadyInProgress indicates that an operation of the same kind is still running
	ErrorCodeAlreadyInProgress ErrorCode = "ALREADY_IN_PROGRESS"
	// ErrorCodeStaleResponse indicates that a response arrived after the session moved on
	ErrorCodeStaleResponse ErrorCode = "STALE_RESPONSE"

	// Translation service error codes

	// ErrorCodeCatalogLoadFailed indicates that the language catalog could not be loaded
	ErrorCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"
	// ErrorCodeNetwork indicates a transport or HTTP level failure talking to the translation service
	ErrorCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrorCodeRemoteTranslation indicates the translation service reported a semantic failure
	ErrorCodeRemoteTranslation ErrorCode = "REMOTE_TRANSLATION_ERROR"
	// ErrorCodeServiceUnavailable indicates that the service is temporarily unavailable
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrorCodeTimeout indicates that a request has timed out
	ErrorCodeTimeout ErrorCode = "REQUEST_TIMEOUT"

	// Speech error codes

	// ErrorCodeUnsupportedCapability indicates that the host has no speech engine for the operation
	ErrorCodeUnsupportedCapability ErrorCode = "UNSUPPORTED_CAPABILITY"
	// ErrorCodeVoiceInput indicates that speech recognition failed
	ErrorCodeVoiceInput ErrorCode = "VOICE_INPUT_ERROR"
	// ErrorCodeNothingToPlay indicates that there is no translated text to speak
	ErrorCodeNothingToPlay ErrorCode = "NOTHING_TO_PLAY"
	// ErrorCodeSynthesis indicates that the speech synthesis engine failed
	ErrorCodeSynthesis ErrorCode = "SYNTHESIS_ERROR"

	// ErrorCodeInternalError indicates an internal error
	ErrorCodeInternalError ErrorCode = "INTERNAL_SERVER_ERROR"
)

// SeverityLevel represents the severity of an error for logging and monitoring
type SeverityLevel string

const (
	// SeverityDebug indicates debug-level errors for development
	SeverityDebug SeverityLevel = "debug"
	// SeverityInfo indicates informational errors
	SeverityInfo SeverityLevel = "info"
	// SeverityWarn indicates warning-level errors
	SeverityWarn SeverityLevel = "warn"
	// SeverityError indicates error-level issues
	SeverityError SeverityLevel = "error"
	// SeverityFatal indicates fatal errors that require immediate attention
	SeverityFatal SeverityLevel = "fatal"
)

// AppError represents a structured error with code, severity, and context
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

// Error types for consistent error handling with associated codes and severity
var (
	ErrInvalidInput = &AppError{
		Code:     ErrorCodeInvalidInput,
		Severity: SeverityWarn,
		Message:  "Invalid input",
	}

	ErrInvalidFormat = &AppError{
		Code:     ErrorCodeInvalidFormat,
		Severity: SeverityWarn,
		Message:  "Invalid format",
	}

	ErrValidationFailed = &AppError{
		Code:     ErrorCodeValidationFailed,
		Severity: SeverityWarn,
		Message:  "Validation failed",
	}

	ErrEmptyInput = &AppError{
		Code:     ErrorCodeEmptyInput,
		Severity: SeverityWarn,
		Message:  "Please enter text to translate",
	}

	ErrSessionNotFound = &AppError{
		Code:     ErrorCodeSessionNotFound,
		Severity: SeverityInfo,
		Message:  "Session not found",
	}

	ErrAlreadyInProgress = &AppError{
		Code:     ErrorCodeAlreadyInProgress,
		Severity: SeverityInfo,
		Message:  "Operation already in progress",
	}

	ErrStaleResponse = &AppError{
		Code:     ErrorCodeStaleResponse,
		Severity: SeverityInfo,
		Message:  "Response discarded because the session changed",
	}

	ErrCatalogLoadFailed = &AppError{
		Code:     ErrorCodeCatalogLoadFailed,
		Severity: SeverityWarn,
		Message:  "Failed to load languages",
	}

	ErrNetwork = &AppError{
		Code:     ErrorCodeNetwork,
		Severity: SeverityError,
		Message:  "Translation request failed",
	}

	ErrRemoteTranslation = &AppError{
		Code:     ErrorCodeRemoteTranslation,
		Severity: SeverityError,
		Message:  "Translation service reported an error",
	}

	ErrServiceUnavailable = &AppError{
		Code:     ErrorCodeServiceUnavailable,
		Severity: SeverityError,
		Message:  "Service unavailable",
	}

	ErrTimeout = &AppError{
		Code:     ErrorCodeTimeout,
		Severity: SeverityWarn,
		Message:  "Request timeout",
	}

	ErrUnsupportedCapability = &AppError{
		Code:     ErrorCodeUnsupportedCapability,
		Severity: SeverityWarn,
		Message:  "Capability not supported",
	}

	ErrVoiceInput = &AppError{
		Code:     ErrorCodeVoiceInput,
		Severity: SeverityWarn,
		Message:  "Voice input failed",
	}

	ErrNothingToPlay = &AppError{
		Code:     ErrorCodeNothingToPlay,
		Severity: SeverityWarn,
		Message:  "Nothing to play",
	}

	ErrSynthesis = &AppError{
		Code:     ErrorCodeSynthesis,
		Severity: SeverityError,
		Message:  "Speech synthesis failed",
	}

	ErrInternalError = &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  "Internal server error",
	}
)

// NewAppError creates a new AppError with the specified code, severity, message and details
func NewAppError(code ErrorCode, severity SeverityLevel, message, details string) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
	}
}

// NewAppErrorWithCause creates a new AppError with an underlying cause
func NewAppErrorWithCause(code ErrorCode, severity SeverityLevel, message, details string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
		Cause:    cause,
	}
}

// Derive returns a copy of a sentinel AppError carrying details and an optional cause.
// The copy still matches the sentinel with errors.Is.
func Derive(sentinel *AppError, details string, cause error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Severity: sentinel.Severity,
		Message:  sentinel.Message,
		Details:  details,
		Cause:    cause,
	}
}

// WrapError wraps an error with additional context, preserving AppError structure if possible
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:     appErr.Code,
			Severity: appErr.Severity,
			Message:  context,
			Details:  appErr.Error(),
			Cause:    err,
		}
	}

	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  context,
		Details:  err.Error(),
		Cause:    err,
	}
}

// WrapErrorf wraps an error with formatted context, preserving AppError structure if possible
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	// Handle %w verb for error wrapping by using fmt.Errorf
	if strings.Contains(format, "%w") {
		wrappedErr := fmt.Errorf(format, args...)

		var appErr *AppError
		if errors.As(err, &appErr) {
			return &AppError{
				Code:     appErr.Code,
				Severity: appErr.Severity,
				Message:  wrappedErr.Error(),
				Details:  appErr.Error(),
				Cause:    wrappedErr,
			}
		}

		return &AppError{
			Code:     ErrorCodeInternalError,
			Severity: SeverityError,
			Message:  wrappedErr.Error(),
			Details:  err.Error(),
			Cause:    wrappedErr,
		}
	}

	return WrapError(err, fmt.Sprintf(format, args...))
}

// ErrorWithContextf creates a new error with formatted context
func ErrorWithContextf(format string, args ...interface{}) error {
	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// IsError checks if an error matches a specific AppError type anywhere in its chain
func IsError(err error, target *AppError) bool {
	return errors.Is(err, target)
}

// AsError attempts to convert an error to an AppError
func AsError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// GetErrorCode returns the error code from an error if it's an AppError, otherwise returns a default code
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

// GetErrorSeverity returns the severity level from an error if it's an AppError, otherwise returns error
func GetErrorSeverity(err error) SeverityLevel {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Severity
	}
	return SeverityError
}

// IsRetryable determines if an error could succeed when the user tries again.
// Nothing in the translator retries automatically.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrorCodeTimeout, ErrorCodeServiceUnavailable, ErrorCodeNetwork:
			return appErr.Severity != SeverityFatal
		}
	}
	return false
}

// GetErrorLocalizedMessage returns a localized message for the error
func GetErrorLocalizedMessage(err error, locale string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return GetLocalizedMessageWithDetails(appErr.Code, ParseLocale(locale), appErr.Details)
	}
	return "An error occurred"
}

// ToJSON converts an AppError to a JSON-serializable structure for API responses
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":     string(e.Code),
		"message":  e.Message,
		"severity": string(e.Severity),
		"error":    e.Message,
	}

	if e.Details != "" {
		result["details"] = e.Details
	}

	result["retryable"] = IsRetryable(e)

	if e.Cause != nil {
		switch e.Severity {
		case SeverityError, SeverityFatal:
			result["cause"] = e.Cause.Error()
		}
	}

	return result
}

// ToJSONWithLocale converts an AppError to a JSON-serializable structure with localized messages
func (e *AppError) ToJSONWithLocale(locale string) map[string]interface{} {
	result := e.ToJSON()
	localizedMessage := GetLocalizedMessage(e.Code, ParseLocale(locale))
	result["message"] = localizedMessage
	result["error"] = localizedMessage
	return result
}
