package middleware

import (
	"net/http"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/gin-gonic/gin"
)

// HandleAppError handles any error and sends the matching HTTP response.
// Errors other than AppError are reported as internal errors.
func HandleAppError(c *gin.Context, err error) {
	var appErr *contextutils.AppError
	if !contextutils.AsError(err, &appErr) {
		appErr = contextutils.Derive(contextutils.ErrInternalError, err.Error(), err)
	}
	_ = c.Error(appErr)
	StandardizeAppError(c, appErr)
}

// StandardizeAppError sends a structured error response using AppError. The message is
// localized from the Accept-Language header.
func StandardizeAppError(c *gin.Context, err *contextutils.AppError) {
	body := err.ToJSONWithLocale(c.GetHeader("Accept-Language"))
	c.JSON(StatusForCode(err.Code), body)
}

// ServiceUnavailable sends a 503 Service Unavailable error with a standardized payload
func ServiceUnavailable(c *gin.Context, msg string) {
	StandardizeAppError(c, contextutils.Derive(contextutils.ErrServiceUnavailable, msg, nil))
}

// StatusForCode maps AppError codes to HTTP status codes
func StatusForCode(code contextutils.ErrorCode) int {
	switch code {
	// 4xx Client Errors
	case contextutils.ErrorCodeInvalidInput, contextutils.ErrorCodeInvalidFormat,
		contextutils.ErrorCodeValidationFailed, contextutils.ErrorCodeEmptyInput:
		return http.StatusBadRequest

	case contextutils.ErrorCodeSessionNotFound:
		return http.StatusNotFound

	case contextutils.ErrorCodeAlreadyInProgress, contextutils.ErrorCodeStaleResponse:
		return http.StatusConflict

	case contextutils.ErrorCodeNothingToPlay, contextutils.ErrorCodeVoiceInput:
		return http.StatusUnprocessableEntity

	// 5xx Server Errors
	case contextutils.ErrorCodeUnsupportedCapability:
		return http.StatusNotImplemented

	case contextutils.ErrorCodeNetwork, contextutils.ErrorCodeRemoteTranslation,
		contextutils.ErrorCodeCatalogLoadFailed, contextutils.ErrorCodeSynthesis:
		return http.StatusBadGateway

	case contextutils.ErrorCodeServiceUnavailable:
		return http.StatusServiceUnavailable

	case contextutils.ErrorCodeTimeout:
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}
