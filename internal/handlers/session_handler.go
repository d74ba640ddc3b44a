package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/middleware"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/session"
	"github.com/Prachi290-pr/language-translator/internal/speech"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Capabilities tells the browser which speech features the session can use
type Capabilities struct {
	VoiceInput bool `json:"voice_input"`
	Playback   bool `json:"playback"`
}

// SessionResponse is returned by every session endpoint
type SessionResponse struct {
	Session       session.Snapshot       `json:"session"`
	Notifications []session.Notification `json:"notifications"`
	// Commands are speech engine instructions the browser must carry out in order
	Commands     []speech.Command `json:"commands"`
	Capabilities Capabilities     `json:"capabilities"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type pairRequest struct {
	Source *string `json:"source"`
	Target *string `json:"target"`
}

type translateRequest struct {
	Text   *string `json:"text"`
	Source *string `json:"source"`
	Target *string `json:"target"`
}

type rateRequest struct {
	Rate float64 `json:"rate"`
}

type capabilitiesRequest struct {
	SpeechRecognition bool `json:"speech_recognition"`
}

// SessionHandler handles the translator session API
type SessionHandler struct {
	registry *session.Registry
	cfg      *config.Config
	logger   *observability.Logger
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(registry *session.Registry, cfg *config.Config, logger *observability.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// respond writes the session state together with pending notifications and engine commands
func (h *SessionHandler) respond(c *gin.Context, status int, s *session.Session) {
	response := SessionResponse{
		Session:       s.Snapshot(),
		Notifications: s.Notifications(),
		Capabilities: Capabilities{
			VoiceInput: s.VoiceAvailable(),
			Playback:   s.PlaybackAvailable(),
		},
	}
	if response.Notifications == nil {
		response.Notifications = []session.Notification{}
	}
	if bridge := s.Bridge(); bridge != nil {
		response.Commands = bridge.Outbox.Drain()
	}
	if response.Commands == nil {
		response.Commands = []speech.Command{}
	}
	c.JSON(status, response)
}

// withSession runs fn with the bound session and reports its error, or responds with the session state
func (h *SessionHandler) withSession(c *gin.Context, operation string, status int, fn func(ctx context.Context, s *session.Session) error) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), operation)
	var err error
	defer observability.FinishSpan(span, &err)

	s, ok := middleware.CurrentSession(c)
	if !ok {
		err = contextutils.Derive(contextutils.ErrSessionNotFound, "", nil)
		middleware.HandleAppError(c, err)
		return
	}
	span.SetAttributes(observability.AttributeSessionID(s.ID()))

	if err = fn(ctx, s); err != nil {
		h.logger.Debug(ctx, "Session operation failed", map[string]interface{}{
			"operation":  operation,
			"session_id": s.ID(),
			"error":      err.Error(),
		})
		middleware.HandleAppError(c, err)
		return
	}
	h.respond(c, status, s)
}

// GetLanguages returns the language catalog as a code to name map
func (h *SessionHandler) GetLanguages(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_languages")
	var err error
	defer observability.FinishSpan(span, &err)

	catalog, err := h.registry.Languages(ctx)
	if err != nil {
		middleware.HandleAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog.Map())
}

// GetSession returns the session state
func (h *SessionHandler) GetSession(c *gin.Context) {
	h.withSession(c, "get_session", http.StatusOK, func(context.Context, *session.Session) error {
		return nil
	})
}

// SetInput replaces the input text
func (h *SessionHandler) SetInput(c *gin.Context) {
	var req inputRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSession(c, "set_input", http.StatusOK, func(_ context.Context, s *session.Session) error {
		s.SetInputText(req.Text)
		return nil
	})
}

// SetPair changes the source and/or target language
func (h *SessionHandler) SetPair(c *gin.Context) {
	var req pairRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSession(c, "set_pair", http.StatusOK, func(_ context.Context, s *session.Session) error {
		if req.Source != nil {
			s.SetSource(*req.Source)
		}
		if req.Target != nil {
			s.SetTarget(*req.Target)
		}
		return nil
	})
}

// Swap exchanges the languages and moves the translation into the input
func (h *SessionHandler) Swap(c *gin.Context) {
	h.withSession(c, "swap", http.StatusOK, func(_ context.Context, s *session.Session) error {
		s.Swap()
		return nil
	})
}

// Translate submits the input, optionally replacing text and languages first
func (h *SessionHandler) Translate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSession(c, "translate", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		_, err := s.SubmitWith(ctx, session.Edits{Text: req.Text, Source: req.Source, Target: req.Target})
		return err
	})
}

// SetCapabilities records what speech features the browser supports
func (h *SessionHandler) SetCapabilities(c *gin.Context) {
	var req capabilitiesRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSession(c, "set_capabilities", http.StatusOK, func(_ context.Context, s *session.Session) error {
		bridge := s.Bridge()
		if bridge == nil {
			return contextutils.Derive(contextutils.ErrUnsupportedCapability, "session does not use browser speech engines", nil)
		}
		bridge.Recognizer.SetAvailable(req.SpeechRecognition)
		return nil
	})
}

// StartListening starts voice input. The outcome arrives through later responses.
func (h *SessionHandler) StartListening(c *gin.Context) {
	h.withSession(c, "start_listening", http.StatusAccepted, func(ctx context.Context, s *session.Session) error {
		// Recognition outlives this request
		_, err := s.StartListening(context.WithoutCancel(ctx))
		return err
	})
}

// StopListening aborts voice input
func (h *SessionHandler) StopListening(c *gin.Context) {
	h.withSession(c, "stop_listening", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		activationID := s.ListeningActivation()
		s.StopListening()
		h.settle(ctx, "recognition", func(ctx context.Context) error {
			return s.SettleRecognition(ctx, activationID)
		})
		return nil
	})
}

// ReportRecognition delivers the browser's recognition outcome
func (h *SessionHandler) ReportRecognition(c *gin.Context) {
	var event serviceinterfaces.RecognitionEvent
	if !bindJSON(c, &event) {
		return
	}
	h.withSession(c, "report_recognition", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		bridge := s.Bridge()
		if bridge == nil {
			return contextutils.Derive(contextutils.ErrUnsupportedCapability, "session does not use browser speech engines", nil)
		}
		if err := bridge.Recognizer.Report(event); err != nil {
			return err
		}
		h.settle(ctx, "recognition", func(ctx context.Context) error {
			return s.SettleRecognition(ctx, event.ActivationID)
		})
		return nil
	})
}

// Play speaks the primary translation
func (h *SessionHandler) Play(c *gin.Context) {
	h.withSession(c, "play", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		return s.Play(ctx)
	})
}

// Pause pauses speech
func (h *SessionHandler) Pause(c *gin.Context) {
	h.withSession(c, "pause", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		return s.Pause(ctx)
	})
}

// Resume resumes paused speech
func (h *SessionHandler) Resume(c *gin.Context) {
	h.withSession(c, "resume", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		return s.Resume(ctx)
	})
}

// Stop stops speech
func (h *SessionHandler) Stop(c *gin.Context) {
	h.withSession(c, "stop", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		return s.Stop(ctx)
	})
}

// SetRate sets the speech rate used by the next play
func (h *SessionHandler) SetRate(c *gin.Context) {
	var req rateRequest
	if !bindJSON(c, &req) {
		return
	}
	h.withSession(c, "set_rate", http.StatusOK, func(_ context.Context, s *session.Session) error {
		_, err := s.SetRate(req.Rate)
		return err
	})
}

// ReportSynthesis delivers a browser speech synthesis event
func (h *SessionHandler) ReportSynthesis(c *gin.Context) {
	var event serviceinterfaces.SynthesisEvent
	if !bindJSON(c, &event) {
		return
	}
	h.withSession(c, "report_synthesis", http.StatusOK, func(ctx context.Context, s *session.Session) error {
		bridge := s.Bridge()
		if bridge == nil {
			return contextutils.Derive(contextutils.ErrUnsupportedCapability, "session does not use browser speech engines", nil)
		}
		if err := bridge.Synthesizer.Report(event); err != nil {
			return err
		}
		h.settle(ctx, "synthesis", s.SettlePlayback)
		return nil
	})
}

// settle waits for a reported engine event to reach the session so the response shows its effect.
// On timeout the response carries the earlier state and the change appears in a later one.
func (h *SessionHandler) settle(ctx context.Context, engine string, wait func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, config.EngineEventSettleTimeout)
	defer cancel()
	if err := wait(ctx); err != nil {
		h.logger.Warn(ctx, "Engine event not applied before responding", map[string]interface{}{
			"engine": engine,
			"error":  err.Error(),
		})
	}
}

// DeleteSession closes the session and clears the cookie
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_session")
	defer observability.FinishSpan(span, nil)

	if s, ok := middleware.CurrentSession(c); ok {
		h.registry.Remove(ctx, s.ID())
	}

	cookieSession := sessions.Default(c)
	cookieSession.Clear()
	if err := cookieSession.Save(); err != nil {
		h.logger.Warn(ctx, "Failed to clear session cookie", map[string]interface{}{"error": err.Error()})
	}
	c.Status(http.StatusNoContent)
}

// bindJSON decodes an optional JSON body that the validation middleware already checked
func bindJSON(c *gin.Context, target interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(target); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleAppError(c, contextutils.Derive(contextutils.ErrInvalidFormat, err.Error(), err))
		return false
	}
	return true
}
