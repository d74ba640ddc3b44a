package speech

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultSynthesizerCommand speaks through espeak-ng
var DefaultSynthesizerCommand = []string{"espeak-ng", "-v", PlaceholderLanguage, "-s", PlaceholderWPM, PlaceholderText}

// ExecSynthesizer speaks each utterance by running an external command.
// Pause and resume suspend and continue the process.
type ExecSynthesizer struct {
	command []string
	baseWPM int
	logger  *observability.Logger

	mu      sync.Mutex
	current *execUtterance
	events  chan serviceinterfaces.SynthesisEvent
}

type execUtterance struct {
	id        string
	cmd       *exec.Cmd
	stderr    *bytes.Buffer
	paused    bool
	cancelled bool
}

// NewExecSynthesizer creates a synthesizer from speech configuration
func NewExecSynthesizer(cfg *config.SpeechConfig, logger *observability.Logger) *ExecSynthesizer {
	command := cfg.Synthesizer.Command
	if len(command) == 0 {
		command = DefaultSynthesizerCommand
	}
	baseWPM := cfg.WordsPerMinute
	if baseWPM <= 0 {
		baseWPM = config.DefaultWordsPerMinute
	}
	return &ExecSynthesizer{
		command: command,
		baseWPM: baseWPM,
		logger:  logger,
		events:  make(chan serviceinterfaces.SynthesisEvent, eventBuffer),
	}
}

// Available reports whether the synthesizer command can be found
func (s *ExecSynthesizer) Available() bool {
	_, err := exec.LookPath(s.command[0])
	return err == nil
}

// Speak starts the command for u. Any utterance still running is cancelled first.
func (s *ExecSynthesizer) Speak(ctx context.Context, u serviceinterfaces.Utterance) (err error) {
	_, span := observability.TraceSpeechFunction(ctx, "speak",
		observability.AttributeLanguage(u.Language),
		observability.AttributePlaybackRate(u.Rate),
		attribute.String("utterance.id", u.ID),
	)
	defer observability.FinishSpan(span, &err)

	if err := s.Cancel(); err != nil {
		return err
	}

	args := expandArgs(s.command, u.Language, wordsPerMinute(s.baseWPM, u.Rate), u.Text)
	cmd := exec.Command(args[0], args[1:]...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		s.emit(serviceinterfaces.SynthesisEvent{Type: serviceinterfaces.SynthesisFailed, UtteranceID: u.ID, Reason: err.Error()})
		return contextutils.Derive(contextutils.ErrSynthesis, err.Error(), err)
	}

	current := &execUtterance{id: u.ID, cmd: cmd, stderr: stderr}
	s.mu.Lock()
	s.current = current
	s.mu.Unlock()

	s.emit(serviceinterfaces.SynthesisEvent{Type: serviceinterfaces.SynthesisStarted, UtteranceID: u.ID})
	go s.wait(current)

	return nil
}

func (s *ExecSynthesizer) wait(u *execUtterance) {
	err := u.cmd.Wait()

	s.mu.Lock()
	if s.current == u {
		s.current = nil
	}
	cancelled := u.cancelled
	s.mu.Unlock()

	switch {
	case cancelled || err == nil:
		s.emit(serviceinterfaces.SynthesisEvent{Type: serviceinterfaces.SynthesisEnded, UtteranceID: u.id})
	default:
		reason := strings.TrimSpace(u.stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		s.logger.Warn(context.Background(), "Speech command failed", map[string]interface{}{
			"utterance_id": u.id,
			"reason":       reason,
		})
		s.emit(serviceinterfaces.SynthesisEvent{Type: serviceinterfaces.SynthesisFailed, UtteranceID: u.id, Reason: reason})
	}
}

// Pause suspends the running command. It is a no-op when nothing is speaking.
func (s *ExecSynthesizer) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.paused {
		return nil
	}
	if err := suspendProcess(s.current.cmd.Process); err != nil {
		return err
	}
	s.current.paused = true
	return nil
}

// Resume continues a suspended command
func (s *ExecSynthesizer) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || !s.current.paused {
		return nil
	}
	if err := continueProcess(s.current.cmd.Process); err != nil {
		return err
	}
	s.current.paused = false
	return nil
}

// Cancel kills the running command, if any. Its Ended event still follows.
func (s *ExecSynthesizer) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	u := s.current
	u.cancelled = true
	if u.paused {
		// A stopped process only dies once continued on some platforms
		_ = continueProcess(u.cmd.Process)
		u.paused = false
	}
	if err := u.cmd.Process.Kill(); err != nil {
		return contextutils.Derive(contextutils.ErrSynthesis, "failed to cancel speech", err)
	}
	return nil
}

// Speaking reports whether a command is running and not suspended
func (s *ExecSynthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && !s.current.paused
}

// Events returns the lifecycle event channel
func (s *ExecSynthesizer) Events() <-chan serviceinterfaces.SynthesisEvent {
	return s.events
}

// emit never blocks: the consumer may be waiting on a lock held by the caller
func (s *ExecSynthesizer) emit(ev serviceinterfaces.SynthesisEvent) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn(context.Background(), "Dropping speech event, consumer is not keeping up", map[string]interface{}{
			"utterance_id": ev.UtteranceID,
			"type":         string(ev.Type),
		})
	}
}
