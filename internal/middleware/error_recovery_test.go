package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDefaultErrorRecoveryConfig(t *testing.T) {
	config := DefaultErrorRecoveryConfig()

	assert.False(t, config.EnableCircuitBreaker)
	assert.Equal(t, 5, config.CircuitBreakerThreshold)
	assert.Equal(t, 30*time.Second, config.CircuitBreakerTimeout)
}

func TestErrorRecoveryMiddleware_PanicRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorRecoveryMiddleware(testLogger(), nil))

	router.GET("/panic", func(_ *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestErrorRecoveryMiddleware_NormalRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorRecoveryMiddleware(nil, nil))

	router.GET("/normal", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/normal", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorRecoveryMiddleware_CircuitBreakerOpensOnUpstreamFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)

	status := http.StatusBadGateway
	router := gin.New()
	router.Use(ErrorRecoveryMiddleware(nil, &ErrorRecoveryConfig{
		EnableCircuitBreaker:    true,
		CircuitBreakerThreshold: 2,
		CircuitBreakerTimeout:   time.Hour,
	}))
	router.POST("/translate", func(c *gin.Context) {
		c.Status(status)
	})

	send := func() int {
		req, _ := http.NewRequest(http.MethodPost, "/translate", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadGateway, send())
	assert.Equal(t, http.StatusBadGateway, send())
	status = http.StatusOK
	assert.Equal(t, http.StatusServiceUnavailable, send())
}

func TestCircuitBreaker_CanExecute(t *testing.T) {
	config := &ErrorRecoveryConfig{CircuitBreakerThreshold: 2, CircuitBreakerTimeout: 100 * time.Millisecond}
	cb := newCircuitBreaker(config)
	now := time.Now()
	cb.now = func() time.Time { return now }

	assert.True(t, cb.canExecute())

	cb.recordFailure()
	assert.True(t, cb.canExecute())
	cb.recordFailure()
	assert.Equal(t, circuitOpen, cb.state)
	assert.False(t, cb.canExecute())

	now = now.Add(200 * time.Millisecond)
	assert.True(t, cb.canExecute())
	assert.Equal(t, circuitHalfOpen, cb.state)

	// A failure while half open opens the circuit again
	cb.recordFailure()
	assert.Equal(t, circuitOpen, cb.state)

	now = now.Add(200 * time.Millisecond)
	assert.True(t, cb.canExecute())
	cb.recordSuccess()
	assert.Equal(t, circuitClosed, cb.state)
	assert.Equal(t, 0, cb.failures)
}

func TestIsUpstreamFailure(t *testing.T) {
	assert.True(t, isUpstreamFailure(http.StatusBadGateway))
	assert.True(t, isUpstreamFailure(http.StatusGatewayTimeout))
	assert.False(t, isUpstreamFailure(http.StatusInternalServerError))
	assert.False(t, isUpstreamFailure(http.StatusBadRequest))
}
