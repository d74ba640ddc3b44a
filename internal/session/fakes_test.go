package session

import (
	"context"
	"sync"
	"testing"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLanguages = map[string]string{"en": "English", "fr": "French", "es": "Spanish"}

// MockTranslationService is a mock implementation of serviceinterfaces.TranslationService
type MockTranslationService struct {
	mock.Mock
}

func (m *MockTranslationService) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTranslationService) Languages(ctx context.Context) (result0 map[string]string, err error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockTranslationService) Translate(ctx context.Context, req serviceinterfaces.TranslateRequest) (result0 *serviceinterfaces.TranslateResponse, err error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*serviceinterfaces.TranslateResponse), args.Error(1)
}

func newMockTranslator() *MockTranslationService {
	m := &MockTranslationService{}
	m.On("Name").Return("mock").Maybe()
	m.On("Languages", mock.Anything).Return(testLanguages, nil).Maybe()
	return m
}

func translated(texts ...string) *serviceinterfaces.TranslateResponse {
	return &serviceinterfaces.TranslateResponse{TranslatedTexts: texts, Provider: "mock"}
}

// fakeSynthesizer records calls; tests drive its events by hand
type fakeSynthesizer struct {
	mu       sync.Mutex
	spoken   []serviceinterfaces.Utterance
	cancels  int
	pauses   int
	resumes  int
	speaking bool
	speakErr error
	events   chan serviceinterfaces.SynthesisEvent
}

func newFakeSynthesizer() *fakeSynthesizer {
	return &fakeSynthesizer{events: make(chan serviceinterfaces.SynthesisEvent, 16)}
}

func (f *fakeSynthesizer) Speak(_ context.Context, u serviceinterfaces.Utterance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.speakErr != nil {
		return f.speakErr
	}
	f.spoken = append(f.spoken, u)
	f.speaking = true
	return nil
}

func (f *fakeSynthesizer) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.speaking = false
	return nil
}

func (f *fakeSynthesizer) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	f.speaking = true
	return nil
}

func (f *fakeSynthesizer) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	f.speaking = false
	return nil
}

func (f *fakeSynthesizer) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func (f *fakeSynthesizer) Events() <-chan serviceinterfaces.SynthesisEvent {
	return f.events
}

func (f *fakeSynthesizer) lastUtterance(t *testing.T) serviceinterfaces.Utterance {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.spoken)
	return f.spoken[len(f.spoken)-1]
}

// fakeRecognizer hands out one channel per activation
type fakeRecognizer struct {
	available bool
	startErr  error

	mu          sync.Mutex
	languages   []string
	activations []string
	pending     map[string]chan serviceinterfaces.RecognitionEvent
	aborted     []string
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{available: true, pending: make(map[string]chan serviceinterfaces.RecognitionEvent)}
}

func (f *fakeRecognizer) Available() bool {
	return f.available
}

func (f *fakeRecognizer) Start(_ context.Context, activationID, language string) (<-chan serviceinterfaces.RecognitionEvent, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make(chan serviceinterfaces.RecognitionEvent, 1)
	f.pending[activationID] = events
	f.languages = append(f.languages, language)
	f.activations = append(f.activations, activationID)
	return events, nil
}

func (f *fakeRecognizer) Abort(activationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = append(f.aborted, activationID)
	if events, ok := f.pending[activationID]; ok {
		delete(f.pending, activationID)
		events <- serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.RecognitionFailed, ActivationID: activationID, Reason: "aborted"}
		close(events)
	}
}

// deliver completes the latest activation with ev
func (f *fakeRecognizer) deliver(t *testing.T, ev serviceinterfaces.RecognitionEvent) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.activations)
	id := f.activations[len(f.activations)-1]
	events, ok := f.pending[id]
	require.True(t, ok, "activation %s is not pending", id)
	delete(f.pending, id)
	ev.ActivationID = id
	events <- ev
	close(events)
}

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Translation.DefaultSource = "en"
	cfg.Translation.DefaultTarget = "fr"
	return cfg
}

type sessionOption func(*Options)

func withSynthesizer(s serviceinterfaces.Synthesizer) sessionOption {
	return func(o *Options) { o.Synthesizer = s }
}

func withRecognizer(r serviceinterfaces.Recognizer) sessionOption {
	return func(o *Options) { o.Recognizer = r }
}

func withConfig(cfg *config.Config) sessionOption {
	return func(o *Options) { o.Config = cfg }
}

func newTestSession(t *testing.T, translator serviceinterfaces.TranslationService, opts ...sessionOption) *Session {
	t.Helper()
	options := Options{
		ID:         "test-session",
		Translator: translator,
		Config:     testConfig(),
		Logger:     testLogger(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	s, err := New(context.Background(), options)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func notificationCodes(notes []Notification) []string {
	codes := make([]string, 0, len(notes))
	for _, n := range notes {
		codes = append(codes, string(n.Code))
	}
	return codes
}
