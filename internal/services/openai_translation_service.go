package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const translationSystemPrompt = "You are a translation engine. Translate the user's message from %s to %s. " +
	"Reply with the translation only, without quotes, notes or explanations."

// OpenAITranslationService translates through an OpenAI-compatible chat completion API.
// Alternate translations are requested as additional choices.
type OpenAITranslationService struct {
	client *openai.Client
	config *config.TranslationConfig
	logger *observability.Logger
}

// NewOpenAITranslationService creates a chat completion backed translation service
func NewOpenAITranslationService(cfg *config.Config, logger *observability.Logger) *OpenAITranslationService {
	clientConfig := openai.DefaultConfig(cfg.Translation.OpenAI.APIKey)
	if cfg.Translation.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.Translation.OpenAI.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.DefaultHTTPTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	return &OpenAITranslationService{
		client: openai.NewClientWithConfig(clientConfig),
		config: &cfg.Translation,
		logger: logger,
	}
}

// Name returns the provider code
func (s *OpenAITranslationService) Name() string {
	return config.ProviderOpenAI
}

// Languages returns the configured language map, or the built-in list when none is configured
func (s *OpenAITranslationService) Languages(_ context.Context) (map[string]string, error) {
	source := s.config.OpenAI.Languages
	if len(source) == 0 {
		source = noopLanguages
	}
	languages := make(map[string]string, len(source))
	for code, name := range source {
		languages[code] = name
	}
	return languages, nil
}

// Translate asks the model for NumResults candidate translations
func (s *OpenAITranslationService) Translate(ctx context.Context, req serviceinterfaces.TranslateRequest) (result *serviceinterfaces.TranslateResponse, err error) {
	ctx, span := observability.TraceTranslationFunction(ctx, "translate",
		observability.AttributeProvider(s.Name()),
		observability.AttributeSourceLanguage(req.SourceLanguage),
		observability.AttributeTargetLanguage(req.TargetLanguage),
		observability.AttributeTextLength(utf8.RuneCountInString(req.Text)),
		attribute.String("openai.model", s.config.OpenAI.Model),
	)
	defer observability.FinishSpan(span, &err)

	start := time.Now()
	defer func() { recordOutcome(ctx, s.Name(), start, err) }()

	req, err = normalizeRequest(req, s.config)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.OpenAI.Model,
		N:           req.NumResults,
		Temperature: s.config.OpenAI.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(translationSystemPrompt, s.languageName(req.SourceLanguage), s.languageName(req.TargetLanguage)),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Text,
			},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, contextutils.Derive(contextutils.ErrNetwork,
				fmt.Sprintf("%d %s: %s", apiErr.HTTPStatusCode, http.StatusText(apiErr.HTTPStatusCode), apiErr.Message), err)
		}
		return nil, classifyTransportError(ctx, err)
	}

	texts := distinctChoices(resp.Choices)
	span.SetAttributes(attribute.Int("translation.choices", len(texts)))
	if len(texts) == 0 {
		return nil, contextutils.Derive(contextutils.ErrRemoteTranslation, "no translations returned", nil)
	}

	return &serviceinterfaces.TranslateResponse{
		TranslatedTexts: texts,
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
		Provider:        s.Name(),
	}, nil
}

// languageName prefers the configured display name and falls back to the CLDR English name
func (s *OpenAITranslationService) languageName(code string) string {
	if name, ok := s.config.OpenAI.Languages[code]; ok && name != "" {
		return name
	}
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return name
		}
	}
	return code
}

// distinctChoices keeps the non-empty completions in order, dropping duplicates
func distinctChoices(choices []openai.ChatCompletionChoice) []string {
	seen := make(map[string]bool, len(choices))
	texts := make([]string, 0, len(choices))
	for _, choice := range choices {
		text := strings.TrimSpace(choice.Message.Content)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		texts = append(texts, text)
	}
	return texts
}
