package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"
)

// RequestManager owns the input text and runs at most one translation at a time
type RequestManager struct {
	c          *core
	translator serviceinterfaces.TranslationService
	numResults int
	timeout    time.Duration
}

func newRequestManager(c *core, translator serviceinterfaces.TranslationService, cfg *config.TranslationConfig) *RequestManager {
	numResults := cfg.NumResults
	if numResults < 1 {
		numResults = config.DefaultNumResults
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultTranslationTimeout
	}
	return &RequestManager{c: c, translator: translator, numResults: numResults, timeout: timeout}
}

// SetInputText replaces the input text without validation
func (m *RequestManager) SetInputText(text string) {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	m.c.setInputLocked(text)
}

// InputText returns the current input text
func (m *RequestManager) InputText() string {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	return m.c.input
}

// Edits are input and language changes applied as part of a submit. Nil fields are left as they are.
type Edits struct {
	Text   *string
	Source *string
	Target *string
}

// Submit translates the current input with the current language pair.
//
// The session status is Translating for the duration of the call and returns to Idle on
// every exit path. A response that arrives after the input or pair changed is discarded
// and reported as a stale response. Failures never clear the previous result.
func (m *RequestManager) Submit(ctx context.Context) (TranslationResult, error) {
	return m.submit(ctx, nil)
}

// SubmitWith applies edits and submits. When a translation is already running the call is
// rejected and the edits are not applied, so the running request stays current.
func (m *RequestManager) SubmitWith(ctx context.Context, edits Edits) (TranslationResult, error) {
	return m.submit(ctx, &edits)
}

func (m *RequestManager) submit(ctx context.Context, edits *Edits) (result TranslationResult, err error) {
	ctx, span := observability.TraceTranslationFunction(ctx, "submit", observability.AttributeSessionID(m.c.id))
	defer observability.FinishSpan(span, &err)

	m.c.mu.Lock()
	if edits != nil {
		if m.c.status == StatusTranslating {
			m.c.mu.Unlock()
			return TranslationResult{}, contextutils.Derive(contextutils.ErrAlreadyInProgress, "a translation is already running", nil)
		}
		if edits.Source != nil {
			m.c.setSourceLocked(*edits.Source)
		}
		if edits.Target != nil {
			m.c.setTargetLocked(*edits.Target)
		}
		if edits.Text != nil {
			m.c.setInputLocked(*edits.Text)
		}
	}
	text := strings.TrimSpace(m.c.input)
	if text == "" {
		m.c.mu.Unlock()
		err = contextutils.Derive(contextutils.ErrEmptyInput, "", nil)
		m.c.notes.postError(err)
		return TranslationResult{}, err
	}
	if m.c.status == StatusTranslating {
		m.c.mu.Unlock()
		return TranslationResult{}, contextutils.Derive(contextutils.ErrAlreadyInProgress, "a translation is already running", nil)
	}
	m.c.status = StatusTranslating
	generation := m.c.generation
	pair := m.c.pair
	m.c.mu.Unlock()

	span.SetAttributes(
		observability.AttributeSourceLanguage(pair.Source),
		observability.AttributeTargetLanguage(pair.Target),
		observability.AttributeTextLength(len(text)),
		observability.AttributeGeneration(generation),
	)

	response, err := m.translate(ctx, serviceinterfaces.TranslateRequest{
		Text:           text,
		SourceLanguage: pair.Source,
		TargetLanguage: pair.Target,
		NumResults:     m.numResults,
	})

	m.c.mu.Lock()
	m.c.status = StatusIdle
	if err != nil {
		m.c.mu.Unlock()
		m.c.logger.Warn(ctx, "Translation failed", m.c.fields(map[string]interface{}{
			"error":      err.Error(),
			"generation": generation,
		}))
		m.c.notes.postError(err)
		return TranslationResult{}, err
	}
	if generation != m.c.generation {
		current := m.c.generation
		m.c.mu.Unlock()
		m.c.logger.Info(ctx, "Discarding stale translation", m.c.fields(map[string]interface{}{
			"generation": generation,
			"current":    current,
		}))
		return TranslationResult{}, contextutils.Derive(contextutils.ErrStaleResponse, "input or languages changed while translating", nil)
	}

	texts := response.TranslatedTexts
	result = TranslationResult{Primary: texts[0], Alternates: append([]string{}, texts[1:]...)}
	m.c.result = result.clone()
	m.c.mu.Unlock()

	m.c.notes.post(LevelSuccess, "", MessageTranslated)
	return result, nil
}

// translate calls the provider with the request timeout and maps every failure onto
// the translation error kinds
func (m *RequestManager) translate(ctx context.Context, req serviceinterfaces.TranslateRequest) (*serviceinterfaces.TranslateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	response, err := m.translator.Translate(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !contextutils.IsError(err, contextutils.ErrTimeout) {
			return nil, contextutils.Derive(contextutils.ErrTimeout, "no response within "+m.timeout.String(), err)
		}
		var appErr *contextutils.AppError
		if contextutils.AsError(err, &appErr) {
			return nil, err
		}
		return nil, contextutils.Derive(contextutils.ErrNetwork, err.Error(), err)
	}
	if response == nil || len(response.TranslatedTexts) == 0 {
		return nil, contextutils.Derive(contextutils.ErrRemoteTranslation, "no translations returned", nil)
	}
	return response, nil
}

// Status returns whether a translation is in flight
func (m *RequestManager) Status() Status {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	return m.c.status
}

// Result returns a copy of the last successful translation, or nil
func (m *RequestManager) Result() *TranslationResult {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	return m.c.result.clone()
}
