// Package middleware provides session binding, validation and error handling middleware for the Gin web framework.
package middleware

import (
	"net/http"

	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/session"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// TranslatorSessionKey is the gin context key holding the bound *session.Session
const TranslatorSessionKey = "translator_session"

// RequireSession binds the translator session named by the session cookie. A missing or
// expired session is replaced by a new one when create is true; otherwise the request fails
// with 404.
func RequireSession(registry *session.Registry, create bool, logger *observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieSession := sessions.Default(c)

		if id, ok := cookieSession.Get(observability.SessionIDKey).(string); ok && id != "" {
			if s, err := registry.Get(id); err == nil {
				c.Set(TranslatorSessionKey, s)
				c.Next()
				return
			}
		}

		if !create {
			HandleAppError(c, contextutils.Derive(contextutils.ErrSessionNotFound, "", nil))
			c.Abort()
			return
		}

		ctx := session.WithLocale(c.Request.Context(), c.GetHeader("Accept-Language"))
		s, err := registry.Create(ctx)
		if err != nil {
			logger.Warn(ctx, "Failed to create session", map[string]interface{}{"error": err.Error()})
			HandleAppError(c, err)
			c.Abort()
			return
		}

		cookieSession.Set(observability.SessionIDKey, s.ID())
		if err := cookieSession.Save(); err != nil {
			registry.Remove(ctx, s.ID())
			logger.Error(ctx, "Failed to save session cookie", err)
			c.JSON(http.StatusInternalServerError, contextutils.Derive(contextutils.ErrInternalError, "failed to save session", err).ToJSON())
			c.Abort()
			return
		}

		c.Set(TranslatorSessionKey, s)
		c.Next()
	}
}

// CurrentSession returns the session bound by RequireSession
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	value, ok := c.Get(TranslatorSessionKey)
	if !ok {
		return nil, false
	}
	s, ok := value.(*session.Session)
	return s, ok
}
