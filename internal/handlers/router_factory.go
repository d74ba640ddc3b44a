package handlers

import (
	"net/http"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/middleware"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/session"
	"github.com/Prachi290-pr/language-translator/internal/version"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// ServiceName identifies the HTTP server in traces and version output
const ServiceName = "translator-server"

// IMPORTANT: When adding new API endpoints, make sure to:
// 1. Add a request schema to schemas.go if the endpoint takes a body
// 2. Update any relevant tests

// NewRouter creates the HTTP engine with all middleware and routes
func NewRouter(
	cfg *config.Config,
	registry *session.Registry,
	logger *observability.Logger,
) (*gin.Engine, error) {
	schemas := middleware.NewSchemaLoader()
	if err := schemas.LoadSchemas(requestSchemas); err != nil {
		return nil, err
	}

	// Setup Gin mode
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ErrorRecoveryMiddleware(logger, middleware.DefaultErrorRecoveryConfig()))
	router.Use(middleware.RequestLogger(logger))

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if !registry.IsReady() {
			status = "starting"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "service": ServiceName, "sessions": registry.Len()})
	})

	// Add OpenTelemetry middleware for HTTP tracing and context propagation with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling(ServiceName))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	// Setup CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept-Language", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	// Setup session middleware
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
		sessionOpts.Secure = true
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	sessionHandler := NewSessionHandler(registry, cfg, logger)
	routeListing := NewRouteListingHandler(ServiceName)

	validate := func(schema string) gin.HandlerFunc {
		return middleware.RequestValidationMiddleware(schemas, schema, logger)
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, version.Get(ServiceName))
		})
		v1.GET("/routes", routeListing.GetRouteListingJSON)
		v1.GET("/languages", sessionHandler.GetLanguages)

		// Closing an unknown session must not create one
		v1.DELETE("/session", middleware.RequireSession(registry, false, logger), sessionHandler.DeleteSession)

		s := v1.Group("/session")
		s.Use(middleware.RequireSession(registry, true, logger))
		{
			s.GET("", sessionHandler.GetSession)
			s.PUT("/input", validate(schemaInputRequest), sessionHandler.SetInput)
			s.PUT("/pair", validate(schemaPairRequest), sessionHandler.SetPair)
			s.POST("/swap", sessionHandler.Swap)
			s.POST("/translate", validate(schemaTranslateRequest), sessionHandler.Translate)
			s.PUT("/capabilities", validate(schemaCapabilities), sessionHandler.SetCapabilities)

			s.POST("/voice", sessionHandler.StartListening)
			s.DELETE("/voice", sessionHandler.StopListening)
			s.POST("/voice/events", validate(schemaRecognitionEvent), sessionHandler.ReportRecognition)

			s.POST("/playback/play", sessionHandler.Play)
			s.POST("/playback/pause", sessionHandler.Pause)
			s.POST("/playback/resume", sessionHandler.Resume)
			s.POST("/playback/stop", sessionHandler.Stop)
			s.PUT("/playback/rate", validate(schemaRateRequest), sessionHandler.SetRate)
			s.POST("/playback/events", validate(schemaSynthesisEvent), sessionHandler.ReportSynthesis)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	routeListing.CollectRoutes(router)

	return router, nil
}
