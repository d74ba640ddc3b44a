package middleware

import (
	"bytes"
	"io"

	"github.com/Prachi290-pr/language-translator/internal/observability"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// maxRequestBody bounds request bodies read for validation
const maxRequestBody = 1 << 20

// RequestValidationMiddleware validates the JSON request body against the named schema
// and restores the body for the handler. An empty body is validated as {}.
func RequestValidationMiddleware(loader *SchemaLoader, schemaName string, logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "request_validation",
			attribute.String("validation.schema", schemaName))
		defer span.End()

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody+1))
			if err != nil {
				HandleAppError(c, contextutils.Derive(contextutils.ErrInvalidInput, "failed to read request body", err))
				c.Abort()
				return
			}
		}
		if len(body) > maxRequestBody {
			HandleAppError(c, contextutils.Derive(contextutils.ErrInvalidInput, "request body too large", nil))
			c.Abort()
			return
		}

		document := body
		if len(bytes.TrimSpace(document)) == 0 {
			document = []byte("{}")
		}

		if err := loader.ValidateJSON(schemaName, document); err != nil {
			span.SetAttributes(attribute.String("validation.result", "failed"))
			logger.Warn(ctx, "Request validation failed", map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"schema": schemaName,
				"error":  err.Error(),
			})
			HandleAppError(c, err)
			c.Abort()
			return
		}

		span.SetAttributes(attribute.String("validation.result", "passed"))
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
