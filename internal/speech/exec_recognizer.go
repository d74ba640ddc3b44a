package speech

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// Recognition failure reasons, named after the browser speech recognition error codes
const (
	ReasonNoSpeech = "no-speech"
	ReasonAborted  = "aborted"
	ReasonTimeout  = "timeout"
)

// ExecRecognizer runs an external command per activation and takes its trimmed
// standard output as the transcript
type ExecRecognizer struct {
	command []string
	timeout time.Duration
	logger  *observability.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// NewExecRecognizer creates a recognizer from speech configuration. Without a configured
// command the recognizer is unavailable.
func NewExecRecognizer(cfg *config.SpeechConfig, logger *observability.Logger) *ExecRecognizer {
	timeout := cfg.Recognizer.Timeout
	if timeout <= 0 {
		timeout = config.DefaultRecognitionTimeout
	}
	return &ExecRecognizer{
		command: cfg.Recognizer.Command,
		timeout: timeout,
		logger:  logger,
		running: make(map[string]context.CancelFunc),
	}
}

// Available reports whether a recognizer command is configured and installed
func (r *ExecRecognizer) Available() bool {
	if len(r.command) == 0 {
		return false
	}
	_, err := exec.LookPath(r.command[0])
	return err == nil
}

// Start runs the recognizer command for one utterance
func (r *ExecRecognizer) Start(ctx context.Context, activationID, language string) (result <-chan serviceinterfaces.RecognitionEvent, err error) {
	_, span := observability.TraceSpeechFunction(ctx, "recognize",
		observability.AttributeLanguage(language),
		attribute.String("activation.id", activationID),
	)
	defer observability.FinishSpan(span, &err)

	if len(r.command) == 0 {
		return nil, contextutils.Derive(contextutils.ErrUnsupportedCapability, "no speech recognizer configured", nil)
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	args := expandArgs(r.command, language, 0, "")
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, contextutils.Derive(contextutils.ErrVoiceInput, err.Error(), err)
	}

	r.mu.Lock()
	r.running[activationID] = cancel
	r.mu.Unlock()

	events := make(chan serviceinterfaces.RecognitionEvent, 1)
	go func() {
		defer close(events)
		defer cancel()

		waitErr := cmd.Wait()

		r.mu.Lock()
		_, stillRunning := r.running[activationID]
		delete(r.running, activationID)
		r.mu.Unlock()

		ev := serviceinterfaces.RecognitionEvent{ActivationID: activationID}
		transcript := strings.TrimSpace(stdout.String())
		switch {
		case !stillRunning:
			ev.Type, ev.Reason = serviceinterfaces.RecognitionFailed, ReasonAborted
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			ev.Type, ev.Reason = serviceinterfaces.RecognitionFailed, ReasonTimeout
		case waitErr != nil:
			ev.Type = serviceinterfaces.RecognitionFailed
			ev.Reason = strings.TrimSpace(stderr.String())
			if ev.Reason == "" {
				ev.Reason = waitErr.Error()
			}
		case transcript == "":
			ev.Type, ev.Reason = serviceinterfaces.RecognitionFailed, ReasonNoSpeech
		default:
			ev.Type, ev.Transcript = serviceinterfaces.Recognized, transcript
		}
		events <- ev
	}()

	return events, nil
}

// Abort kills the command of a running activation
func (r *ExecRecognizer) Abort(activationID string) {
	r.mu.Lock()
	cancel, ok := r.running[activationID]
	delete(r.running, activationID)
	r.mu.Unlock()

	if ok {
		cancel()
	}
}
