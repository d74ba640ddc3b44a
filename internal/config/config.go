// Package config handles application configuration loading from a YAML file and environment variables.
package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable that points at the YAML config file
const ConfigFileEnv = "TRANSLATOR_CONFIG_FILE"

// Config holds all configuration for the translator
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Translation service configuration
	Translation TranslationConfig `json:"translation" yaml:"translation"`

	// Speech engine configuration
	Speech SpeechConfig `json:"speech" yaml:"speech"`

	// Session lifecycle configuration
	Session SessionConfig `json:"session" yaml:"session"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port" validate:"required,numeric"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
}

// TranslationConfig selects and configures the translation provider
type TranslationConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Provider is one of "http", "openai" or "noop"
	Provider       string        `json:"provider" yaml:"provider" validate:"omitempty,oneof=http openai noop"`
	NumResults     int           `json:"num_results" yaml:"num_results" validate:"gte=1,lte=10"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxTextLength  int           `json:"max_text_length" yaml:"max_text_length" validate:"gte=0"`
	DefaultSource  string        `json:"default_source" yaml:"default_source" validate:"required"`
	DefaultTarget  string        `json:"default_target" yaml:"default_target" validate:"required"`

	HTTP   HTTPProviderConfig   `json:"http" yaml:"http"`
	OpenAI OpenAIProviderConfig `json:"openai" yaml:"openai"`
}

// HTTPProviderConfig configures the remote translation service reached over HTTP
type HTTPProviderConfig struct {
	BaseURL           string `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	LanguagesEndpoint string `json:"languages_endpoint" yaml:"languages_endpoint"`
	TranslateEndpoint string `json:"translate_endpoint" yaml:"translate_endpoint"`
}

// OpenAIProviderConfig configures an OpenAI-compatible chat completion endpoint used for translation
type OpenAIProviderConfig struct {
	BaseURL     string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey      string            `json:"api_key" yaml:"api_key"`
	Model       string            `json:"model" yaml:"model"`
	Temperature float32           `json:"temperature" yaml:"temperature"`
	Languages   map[string]string `json:"languages" yaml:"languages"`
}

// SpeechConfig configures the local speech engines used by the CLI
type SpeechConfig struct {
	DefaultRate float64 `json:"default_rate" yaml:"default_rate" validate:"gte=0.5,lte=2"`
	// WordsPerMinute is the engine speed that corresponds to rate 1.0
	WordsPerMinute int                `json:"words_per_minute" yaml:"words_per_minute" validate:"gte=0"`
	Synthesizer    SpeechEngineConfig `json:"synthesizer" yaml:"synthesizer"`
	Recognizer     SpeechEngineConfig `json:"recognizer" yaml:"recognizer"`
}

// SpeechEngineConfig describes an external command that implements a speech engine.
// Arguments may contain the placeholders {lang}, {wpm} and {text}.
type SpeechEngineConfig struct {
	Command []string      `json:"command" yaml:"command"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SessionConfig controls how long translation sessions live on the server
type SessionConfig struct {
	IdleTimeout      time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	SweepInterval    time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
	MaxNotifications int           `json:"max_notifications" yaml:"max_notifications" validate:"gte=0"`
	MaxSessions      int           `json:"max_sessions" yaml:"max_sessions" validate:"gte=0"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "translator-server" or "translator-cli"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()
	config.applyDefaults()

	if err := contextutils.ValidateStruct(config); err != nil {
		return nil, contextutils.WrapError(err, "invalid configuration")
	}

	return config, nil
}

// Default returns a configuration with every default applied and no file or environment input
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills zero values with the built-in defaults
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	t := &c.Translation
	if t.Provider == "" {
		t.Provider = ProviderHTTP
	}
	if t.NumResults == 0 {
		t.NumResults = DefaultNumResults
	}
	if t.RequestTimeout == 0 {
		t.RequestTimeout = DefaultTranslationTimeout
	}
	if t.MaxTextLength == 0 {
		t.MaxTextLength = DefaultMaxTextLength
	}
	if t.DefaultSource == "" {
		t.DefaultSource = DefaultSourceLanguage
	}
	if t.DefaultTarget == "" {
		t.DefaultTarget = DefaultTargetLanguage
	}
	if t.HTTP.LanguagesEndpoint == "" {
		t.HTTP.LanguagesEndpoint = "/languages"
	}
	if t.HTTP.TranslateEndpoint == "" {
		t.HTTP.TranslateEndpoint = "/translate"
	}
	if t.OpenAI.Model == "" {
		t.OpenAI.Model = DefaultOpenAIModel
	}

	s := &c.Speech
	if s.DefaultRate == 0 {
		s.DefaultRate = DefaultPlaybackRate
	}
	if s.WordsPerMinute == 0 {
		s.WordsPerMinute = DefaultWordsPerMinute
	}
	if s.Recognizer.Timeout == 0 {
		s.Recognizer.Timeout = DefaultRecognitionTimeout
	}

	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = DefaultSessionIdleTimeout
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = DefaultSessionSweepInterval
	}
	if c.Session.MaxNotifications == 0 {
		c.Session.MaxNotifications = DefaultMaxNotifications
	}

	if c.OpenTelemetry.Protocol == "" {
		c.OpenTelemetry.Protocol = "grpc"
	}
	if c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnvWithPrefix(c, "")
}

var durationType = reflect.TypeOf(time.Duration(0))

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables.
// The variable name is the upper-cased yaml path joined with underscores, e.g. TRANSLATION_HTTP_BASE_URL.
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		if field.Type() == durationType {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Comma separated, e.g. SERVER_CORS_ORIGINS or SPEECH_SYNTHESIZER_COMMAND
				if field.Type().Elem().Kind() == reflect.String {
					field.Set(reflect.ValueOf(strings.Split(envVal, ",")))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by TRANSLATOR_CONFIG_FILE, falling back to
// ./config.yaml. A missing default file is not an error: the CLI runs on defaults alone.
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	config, err := loadConfigFromFile("config.yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{Translation: TranslationConfig{Enabled: true}}, nil
	}
	return config, err
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Config{Translation: TranslationConfig{Enabled: true}}
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
