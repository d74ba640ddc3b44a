package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout      = 60 * time.Second
	ServerShutdownTimeout   = 30 * time.Second
	ServerReadHeaderTimeout = 10 * time.Second

	// Translation timeouts
	DefaultTranslationTimeout = 30 * time.Second

	// Speech timeouts
	DefaultRecognitionTimeout = 60 * time.Second
	EngineEventSettleTimeout  = 2 * time.Second

	// Session timeouts
	SessionMaxAge               = 7 * 24 * time.Hour // 7 days
	DefaultSessionIdleTimeout   = 30 * time.Minute
	DefaultSessionSweepInterval = time.Minute
)

// Translation constants
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
	ProviderNoop   = "noop"

	DefaultServerPort     = "8080"
	DefaultNumResults     = 3
	DefaultMaxTextLength  = 5000
	DefaultSourceLanguage = "en"
	DefaultTargetLanguage = "fr"
	DefaultOpenAIModel    = "gpt-4o-mini"
)

// Playback constants
const (
	MinPlaybackRate     = 0.5
	MaxPlaybackRate     = 2.0
	PlaybackRateStep    = 0.1
	DefaultPlaybackRate = 1.0

	// espeak-ng speaks at 175 words per minute by default
	DefaultWordsPerMinute = 175
)

// Notification constants
const (
	DefaultMaxNotifications = 20
)

// Session configuration constants
const (
	// Session settings
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	// Session name
	SessionName = "translator-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:; media-src 'self' blob: data:;"
)
