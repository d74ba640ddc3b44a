package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/speech"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/google/uuid"
)

// Options configures a new Session
type Options struct {
	ID         string
	Translator serviceinterfaces.TranslationService
	// Catalog is shared between sessions; a private loader is created when nil
	Catalog     *CatalogLoader
	Synthesizer serviceinterfaces.Synthesizer
	Recognizer  serviceinterfaces.Recognizer
	// Bridge supplies browser engines for any engine left nil
	Bridge *speech.Bridge
	Config *config.Config
	Logger *observability.Logger
	// Locale selects the language of notification messages. When empty the locale
	// stored in the context by WithLocale is used.
	Locale string
}

// Session is one user's translator. All methods are safe for concurrent use.
type Session struct {
	id     string
	c      *core
	bridge *speech.Bridge

	requests *RequestManager
	pair     *PairController
	voice    *VoiceInput
	playback *Playback

	lastActive atomic.Int64
	cancel     context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once
	pumpDone   chan struct{}
}

// Snapshot is a consistent copy of the session state
type Snapshot struct {
	ID                   string             `json:"id"`
	Pair                 LanguagePair       `json:"pair"`
	Input                string             `json:"input"`
	Result               *TranslationResult `json:"result"`
	Status               Status             `json:"status"`
	Playback             PlaybackState      `json:"playback"`
	Rate                 float64            `json:"rate"`
	Listening            bool               `json:"listening"`
	CatalogSize          int                `json:"catalog_size"`
	PendingNotifications int                `json:"pending_notifications"`
	Generation           uint64             `json:"generation"`
}

// New creates a session, loads the language catalog and starts consuming synthesizer
// events. A catalog failure is posted as a notification and leaves the catalog empty.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Translator == nil {
		return nil, contextutils.Derive(contextutils.ErrInvalidInput, "session requires a translation service", nil)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewLogger(&cfg.OpenTelemetry)
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	synth := opts.Synthesizer
	recognizer := opts.Recognizer
	if opts.Bridge != nil {
		if synth == nil && opts.Bridge.Synthesizer != nil {
			synth = opts.Bridge.Synthesizer
		}
		if recognizer == nil && opts.Bridge.Recognizer != nil {
			recognizer = opts.Bridge.Recognizer
		}
	}

	rate := cfg.Speech.DefaultRate
	if rate == 0 {
		rate = config.DefaultPlaybackRate
	}

	locale := opts.Locale
	if locale == "" {
		locale = LocaleFromContext(ctx)
	}
	notes := newNotifier(cfg.Session.MaxNotifications, locale)
	c := newCore(id, LanguagePair{
		Source: cfg.Translation.DefaultSource,
		Target: cfg.Translation.DefaultTarget,
	}, ClampRate(rate), notes, logger)

	pumpCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		id:       id,
		c:        c,
		bridge:   opts.Bridge,
		requests: newRequestManager(c, opts.Translator, &cfg.Translation),
		pair:     &PairController{c: c},
		playback: &Playback{c: c, synth: synth, settle: make(chan chan struct{})},
		cancel:   cancel,
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	s.voice = &VoiceInput{c: c, recognizer: recognizer, done: s.done}
	s.touch()

	loader := opts.Catalog
	if loader == nil {
		loader = NewCatalogLoader(opts.Translator, logger)
	}
	catalog, err := loader.Load(ctx)
	if err != nil {
		notes.postError(err)
	}
	c.catalog = catalog

	go func() {
		defer close(s.pumpDone)
		s.playback.Run(pumpCtx)
	}()

	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns when the session was last used
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Catalog returns the language catalog loaded when the session started
func (s *Session) Catalog() Catalog {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return s.c.catalog
}

// Bridge returns the browser engines, or nil when the session uses host engines
func (s *Session) Bridge() *speech.Bridge {
	return s.bridge
}

// SetInputText replaces the input text
func (s *Session) SetInputText(text string) {
	s.touch()
	s.requests.SetInputText(text)
}

// Submit translates the current input
func (s *Session) Submit(ctx context.Context) (TranslationResult, error) {
	s.touch()
	return s.requests.Submit(ctx)
}

// SubmitWith applies edits and translates, unless a translation is already running
func (s *Session) SubmitWith(ctx context.Context, edits Edits) (TranslationResult, error) {
	s.touch()
	return s.requests.SubmitWith(ctx, edits)
}

// SetSource sets the source language
func (s *Session) SetSource(code string) {
	s.touch()
	s.pair.SetSource(code)
}

// SetTarget sets the target language
func (s *Session) SetTarget(code string) {
	s.touch()
	s.pair.SetTarget(code)
}

// Swap exchanges the languages and moves the translation into the input
func (s *Session) Swap() LanguagePair {
	s.touch()
	return s.pair.Swap()
}

// StartListening starts voice input in the source language
func (s *Session) StartListening(ctx context.Context) (<-chan error, error) {
	s.touch()
	return s.voice.StartListening(ctx)
}

// StopListening aborts voice input
func (s *Session) StopListening() {
	s.touch()
	s.voice.StopListening()
}

// ListeningActivation returns the active recognition, or ""
func (s *Session) ListeningActivation() string {
	return s.voice.ActivationID()
}

// SettleRecognition waits until the outcome reported for activationID has been applied
func (s *Session) SettleRecognition(ctx context.Context, activationID string) error {
	return s.voice.Settle(ctx, activationID)
}

// SettlePlayback waits until every synthesizer event queued so far has been applied
func (s *Session) SettlePlayback(ctx context.Context) error {
	return s.playback.Settle(ctx)
}

// Play speaks the primary translation
func (s *Session) Play(ctx context.Context) error {
	s.touch()
	return s.playback.Play(ctx)
}

// Pause pauses speech
func (s *Session) Pause(ctx context.Context) error {
	s.touch()
	return s.playback.Pause(ctx)
}

// Resume resumes paused speech
func (s *Session) Resume(ctx context.Context) error {
	s.touch()
	return s.playback.Resume(ctx)
}

// Stop stops speech
func (s *Session) Stop(ctx context.Context) error {
	s.touch()
	return s.playback.Stop(ctx)
}

// SetRate sets the speech rate for the next Play
func (s *Session) SetRate(rate float64) (float64, error) {
	s.touch()
	return s.playback.SetRate(rate)
}

// VoiceAvailable reports whether voice input can be used
func (s *Session) VoiceAvailable() bool {
	return s.voice.Available()
}

// PlaybackAvailable reports whether speech output can be used
func (s *Session) PlaybackAvailable() bool {
	return s.playback.Available()
}

// Notifications returns and clears the pending notifications
func (s *Session) Notifications() []Notification {
	return s.c.notes.drain()
}

// Snapshot returns a consistent copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	return Snapshot{
		ID:                   s.id,
		Pair:                 s.c.pair,
		Input:                s.c.input,
		Result:               s.c.result.clone(),
		Status:               s.c.status,
		Playback:             s.c.playback,
		Rate:                 s.c.rate,
		Listening:            s.c.activationID != "",
		CatalogSize:          s.c.catalog.Len(),
		PendingNotifications: s.c.notes.pending(),
		Generation:           s.c.generation,
	}
}

// Close stops playback, aborts voice input and stops the event pump. It is safe to call twice.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		ctx := context.Background()
		if err := s.playback.Stop(ctx); err != nil {
			s.c.logger.Warn(ctx, "Failed to stop playback on close", map[string]interface{}{"error": err.Error()})
		}
		s.voice.StopListening()
		close(s.done)
		s.cancel()
		<-s.pumpDone
	})
}

type localeKey struct{}

// WithLocale returns a context carrying the notification locale for sessions created with it
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale stored by WithLocale, or ""
func LocaleFromContext(ctx context.Context) string {
	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}
