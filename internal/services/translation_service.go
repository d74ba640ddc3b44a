// Package services implements the translation providers used by translation sessions.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TranslationServiceInterface defines the interface for translation services
type TranslationServiceInterface = serviceinterfaces.TranslationService

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// HTTPTranslationService talks to the remote translation service:
// GET /languages and POST /translate
type HTTPTranslationService struct {
	config     *config.TranslationConfig
	httpClient *http.Client
	logger     *observability.Logger
}

// NewHTTPTranslationService creates a new remote translation service client
func NewHTTPTranslationService(cfg *config.Config, logger *observability.Logger) *HTTPTranslationService {
	return &HTTPTranslationService{
		config: &cfg.Translation,
		httpClient: &http.Client{
			Timeout: config.DefaultHTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
		logger: logger,
	}
}

// translateRequestBody is the wire format of POST /translate
type translateRequestBody struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	NumResults int    `json:"num_results"`
}

// translateResponseBody is the wire format of a POST /translate reply
type translateResponseBody struct {
	TranslatedTexts []string `json:"translated_texts"`
	Error           *string  `json:"error,omitempty"`
}

// Name returns the provider code
func (s *HTTPTranslationService) Name() string {
	return config.ProviderHTTP
}

// Languages fetches the supported languages. Every failure is reported as a catalog load failure.
func (s *HTTPTranslationService) Languages(ctx context.Context) (result map[string]string, err error) {
	ctx, span := observability.TraceTranslationFunction(ctx, "languages", observability.AttributeProvider(s.Name()))
	defer observability.FinishSpan(span, &err)

	url := s.endpoint(s.config.HTTP.LanguagesEndpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, "failed to create request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, describeStatus(resp.StatusCode, body), nil)
	}

	if err := validateBody(languagesSchema, body); err != nil {
		return nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, err.Error(), err)
	}

	var languages map[string]string
	if err := json.Unmarshal(body, &languages); err != nil {
		return nil, contextutils.Derive(contextutils.ErrCatalogLoadFailed, "failed to decode response", err)
	}

	span.SetAttributes(attribute.Int("translation.languages", len(languages)))
	return languages, nil
}

// Translate sends one translation request. A 200 response carrying an error field is a
// remote translation error; transport failures and non-2xx statuses are network errors.
func (s *HTTPTranslationService) Translate(ctx context.Context, req serviceinterfaces.TranslateRequest) (result *serviceinterfaces.TranslateResponse, err error) {
	ctx, span := observability.TraceTranslationFunction(ctx, "translate",
		observability.AttributeProvider(s.Name()),
		observability.AttributeSourceLanguage(req.SourceLanguage),
		observability.AttributeTargetLanguage(req.TargetLanguage),
		observability.AttributeTextLength(utf8.RuneCountInString(req.Text)),
	)
	defer observability.FinishSpan(span, &err)

	start := time.Now()
	defer func() { recordOutcome(ctx, s.Name(), start, err) }()

	req, err = normalizeRequest(req, s.config)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.AttributeNumResults(req.NumResults))

	jsonBody, err := json.Marshal(translateRequestBody{
		Text:       req.Text,
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
		NumResults: req.NumResults,
	})
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(s.config.HTTP.TranslateEndpoint), bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, contextutils.Derive(contextutils.ErrNetwork, describeStatus(resp.StatusCode, body), nil)
	}

	if err := validateBody(translateSchema, body); err != nil {
		return nil, contextutils.Derive(contextutils.ErrRemoteTranslation, "malformed response", err)
	}

	var decoded translateResponseBody
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, contextutils.Derive(contextutils.ErrRemoteTranslation, "malformed response", err)
	}

	if decoded.Error != nil {
		return nil, contextutils.Derive(contextutils.ErrRemoteTranslation, *decoded.Error, nil)
	}
	if len(decoded.TranslatedTexts) == 0 {
		return nil, contextutils.Derive(contextutils.ErrRemoteTranslation, "no translations returned", nil)
	}

	return &serviceinterfaces.TranslateResponse{
		TranslatedTexts: decoded.TranslatedTexts,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
		Provider:        s.Name(),
	}, nil
}

func (s *HTTPTranslationService) endpoint(path string) string {
	return strings.TrimRight(s.config.HTTP.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// normalizeRequest trims the text, applies the configured result count and enforces
// the text length limit
func normalizeRequest(req serviceinterfaces.TranslateRequest, cfg *config.TranslationConfig) (serviceinterfaces.TranslateRequest, error) {
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return req, contextutils.ErrEmptyInput
	}

	if cfg.MaxTextLength > 0 && utf8.RuneCountInString(req.Text) > cfg.MaxTextLength {
		return req, contextutils.Derive(contextutils.ErrInvalidInput, fmt.Sprintf("Text cannot exceed %d characters", cfg.MaxTextLength), nil)
	}

	if req.NumResults < 1 {
		req.NumResults = cfg.NumResults
	}
	if req.NumResults < 1 {
		req.NumResults = config.DefaultNumResults
	}

	return req, nil
}

// describeStatus renders a non-2xx reply, preferring the service's own error message
func describeStatus(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Sprintf("%d %s: %s", status, http.StatusText(status), payload.Error)
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// classifyTransportError maps a failed round trip to a timeout or network error
func classifyTransportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return contextutils.Derive(contextutils.ErrTimeout, err.Error(), err)
	}
	return contextutils.Derive(contextutils.ErrNetwork, err.Error(), err)
}

// recordOutcome feeds the translation counters
func recordOutcome(ctx context.Context, provider string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(contextutils.GetErrorCode(err)))
	}
	observability.RecordTranslation(ctx, provider, outcome, time.Since(start))
}

// noopLanguages is the language list served by the noop provider
var noopLanguages = map[string]string{
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"hi": "Hindi",
	"zh": "Chinese",
	"ar": "Arabic",
	"ru": "Russian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"pt": "Portuguese",
	"ta": "Tamil",
	"ur": "Urdu",
}

// NoopTranslationService is a no-operation implementation for testing and development
type NoopTranslationService struct{}

// NewNoopTranslationService creates a new noop translation service instance
func NewNoopTranslationService() *NoopTranslationService {
	return &NoopTranslationService{}
}

// Name returns the provider code
func (s *NoopTranslationService) Name() string {
	return config.ProviderNoop
}

// Languages returns a fixed set of common languages
func (s *NoopTranslationService) Languages(_ context.Context) (map[string]string, error) {
	languages := make(map[string]string, len(noopLanguages))
	for code, name := range noopLanguages {
		languages[code] = name
	}
	return languages, nil
}

// Translate returns the original text unchanged (no-op)
func (s *NoopTranslationService) Translate(_ context.Context, req serviceinterfaces.TranslateRequest) (*serviceinterfaces.TranslateResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, contextutils.ErrEmptyInput
	}
	return &serviceinterfaces.TranslateResponse{
		TranslatedTexts: []string{text},
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
		Provider:        s.Name(),
	}, nil
}

// SortedLanguageCodes returns the codes of a language map in a stable order
func SortedLanguageCodes(languages map[string]string) []string {
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NewTranslationService creates a translation service based on configuration.
// It falls back to the noop service when translation is disabled or the provider
// is not usable.
func NewTranslationService(cfg *config.Config, logger *observability.Logger) TranslationServiceInterface {
	ctx := context.Background()

	if !cfg.Translation.Enabled {
		logger.Info(ctx, "Translation disabled, using noop provider")
		return NewNoopTranslationService()
	}

	switch cfg.Translation.Provider {
	case config.ProviderHTTP:
		if cfg.Translation.HTTP.BaseURL == "" {
			logger.Warn(ctx, "HTTP translation provider has no base_url, using noop provider")
			return NewNoopTranslationService()
		}
		logger.Info(ctx, "Using HTTP translation provider", map[string]interface{}{"base_url": cfg.Translation.HTTP.BaseURL})
		return NewHTTPTranslationService(cfg, logger)
	case config.ProviderOpenAI:
		if cfg.Translation.OpenAI.APIKey == "" && cfg.Translation.OpenAI.BaseURL == "" {
			logger.Warn(ctx, "OpenAI translation provider has no api_key or base_url, using noop provider")
			return NewNoopTranslationService()
		}
		logger.Info(ctx, "Using OpenAI translation provider", map[string]interface{}{
			"model":   cfg.Translation.OpenAI.Model,
			"api_key": contextutils.MaskSecret(cfg.Translation.OpenAI.APIKey),
		})
		return NewOpenAITranslationService(cfg, logger)
	case config.ProviderNoop:
		return NewNoopTranslationService()
	default:
		logger.Warn(ctx, "Unsupported translation provider, using noop provider", map[string]interface{}{"provider": cfg.Translation.Provider})
		return NewNoopTranslationService()
	}
}
