// Package commands provides the translator CLI commands
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/session"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"
)

// Runtime holds the shared resources every command runs with
type Runtime struct {
	Config     *config.Config
	Logger     *observability.Logger
	Translator serviceinterfaces.TranslationService
	// Synthesizer and Recognizer are nil when no engine is configured
	Synthesizer serviceinterfaces.Synthesizer
	Recognizer  serviceinterfaces.Recognizer
	Locale      string
	Out         io.Writer
}

// playbackStartTimeout bounds how long a command waits for the engine to start speaking
const playbackStartTimeout = 5 * time.Second

// newSession creates a session on the local speech engines. translator overrides the
// configured translation service when not nil.
func (r *Runtime) newSession(ctx context.Context, translator serviceinterfaces.TranslationService) (*session.Session, error) {
	if translator == nil {
		translator = r.Translator
	}
	return session.New(ctx, session.Options{
		Translator:  translator,
		Synthesizer: r.Synthesizer,
		Recognizer:  r.Recognizer,
		Config:      r.Config,
		Logger:      r.Logger,
		Locale:      r.Locale,
	})
}

// printf writes to the command output, ignoring write errors
func (r *Runtime) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.Out, format, args...)
}

// flushNotifications prints pending session notifications. It returns how many it printed.
func (r *Runtime) flushNotifications(s *session.Session) int {
	notes := s.Notifications()
	for _, n := range notes {
		switch n.Level {
		case session.LevelError, session.LevelWarning:
			r.printf("! %s\n", n.Message)
		default:
			r.printf("* %s\n", n.Message)
		}
	}
	return len(notes)
}

// report prints the notifications an operation posted, falling back to the error itself
func (r *Runtime) report(s *session.Session, err error) {
	if r.flushNotifications(s) == 0 && err != nil {
		r.printf("! %s\n", contextutils.GetErrorLocalizedMessage(err, r.Locale))
	}
}

// printResult prints the primary translation followed by the alternates
func (r *Runtime) printResult(result session.TranslationResult, alternates bool) {
	r.printf("%s\n", result.Primary)
	if !alternates {
		return
	}
	for i, alt := range result.Alternates {
		r.printf("  %d. %s\n", i+1, alt)
	}
}

// waitForPlayback blocks until the current utterance finishes. It gives up when the engine
// does not start speaking within playbackStartTimeout.
func waitForPlayback(ctx context.Context, s *session.Session) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	started := false
	deadline := time.Now().Add(playbackStartTimeout)
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			state := s.Snapshot().Playback
			if state != session.PlaybackStopped {
				started = true
				continue
			}
			if started || now.After(deadline) {
				return
			}
		}
	}
}
