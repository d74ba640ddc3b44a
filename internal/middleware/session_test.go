package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/services"
	"github.com/Prachi290-pr/language-translator/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, maxSessions int) *session.Registry {
	t.Helper()
	translator := services.NewNoopTranslationService()
	loader := session.NewCatalogLoader(translator, testLogger())
	registry := session.NewRegistry(&config.SessionConfig{MaxSessions: maxSessions}, loader,
		func(ctx context.Context, id string) (*session.Session, error) {
			return session.New(ctx, session.Options{ID: id, Translator: translator, Catalog: loader, Logger: testLogger()})
		}, testLogger())
	t.Cleanup(func() { _ = registry.Shutdown(context.Background()) })
	return registry
}

func setupSessionRouter(registry *session.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("test-session", cookie.NewStore([]byte("test-secret"))))

	handler := func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, s.ID())
	}
	router.GET("/session", RequireSession(registry, true, testLogger()), handler)
	router.GET("/existing", RequireSession(registry, false, testLogger()), handler)
	return router
}

func TestRequireSession_CreatesAndReuses(t *testing.T) {
	registry := newTestRegistry(t, 0)
	router := setupSessionRouter(registry)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	firstID := w.Body.String()
	assert.NotEmpty(t, firstID)
	assert.Equal(t, 1, registry.Len())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/existing", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, firstID, w.Body.String())
	assert.Equal(t, 1, registry.Len())
}

func TestRequireSession_ExpiredSessionIsReplaced(t *testing.T) {
	registry := newTestRegistry(t, 0)
	router := setupSessionRouter(registry)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	router.ServeHTTP(w, req)
	firstID := w.Body.String()
	cookies := w.Result().Cookies()

	registry.Remove(context.Background(), firstID)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, firstID, w.Body.String())
}

func TestRequireSession_WithoutCreate(t *testing.T) {
	router := setupSessionRouter(newTestRegistry(t, 0))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/existing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}

func TestRequireSession_RegistryFull(t *testing.T) {
	registry := newTestRegistry(t, 1)
	router := setupSessionRouter(registry)

	for i, want := range []int{http.StatusOK, http.StatusServiceUnavailable} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/session", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "request %d", i)
	}
}

func TestCurrentSession_Unbound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentSession(c)
	assert.False(t, ok)
}
