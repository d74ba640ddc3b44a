package session

import (
	"context"
	"strings"

	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/speech"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/google/uuid"
)

// VoiceInput fills the input text from a single speech recognition. At most one
// recognition is active per session.
type VoiceInput struct {
	c          *core
	recognizer serviceinterfaces.Recognizer
	done       <-chan struct{}
	// settled holds one channel per running activation, closed once its outcome is applied.
	// Guarded by c.mu.
	settled map[string]chan struct{}
}

// Available reports whether voice input can be used
func (v *VoiceInput) Available() bool {
	return v.recognizer != nil && v.recognizer.Available()
}

// Listening reports whether a recognition is active
func (v *VoiceInput) Listening() bool {
	v.c.mu.Lock()
	defer v.c.mu.Unlock()
	return v.c.activationID != ""
}

// StartListening starts recognition in the source language. The returned channel yields
// exactly one outcome and is then closed: nil once the transcript replaced the input, or a
// voice input error. Cancelling ctx aborts the recognition.
func (v *VoiceInput) StartListening(ctx context.Context) (<-chan error, error) {
	if !v.Available() {
		err := contextutils.Derive(contextutils.ErrUnsupportedCapability, "speech recognition is not available", nil)
		v.c.notes.postError(err)
		return nil, err
	}

	v.c.mu.Lock()
	if v.c.activationID != "" {
		v.c.mu.Unlock()
		return nil, contextutils.Derive(contextutils.ErrAlreadyInProgress, "already listening", nil)
	}
	activationID := uuid.NewString()
	v.c.activationID = activationID
	language := v.c.pair.Source
	v.c.mu.Unlock()

	events, err := v.recognizer.Start(ctx, activationID, language)
	if err != nil {
		v.release(activationID)
		if !contextutils.IsError(err, contextutils.ErrUnsupportedCapability) {
			err = contextutils.Derive(contextutils.ErrVoiceInput, err.Error(), err)
		}
		v.c.notes.postError(err)
		observability.RecordRecognition(ctx, "error")
		return nil, err
	}

	v.c.logger.Debug(ctx, "Listening", v.c.fields(map[string]interface{}{
		"activation_id": activationID,
		"language":      language,
	}))

	settled := make(chan struct{})
	v.c.mu.Lock()
	if v.settled == nil {
		v.settled = make(map[string]chan struct{})
	}
	v.settled[activationID] = settled
	v.c.mu.Unlock()

	outcome := make(chan error, 1)
	go v.await(ctx, activationID, events, outcome)
	return outcome, nil
}

// Settle returns once the outcome of activationID has been applied to the session.
// It returns at once for an activation that is unknown or already finished.
func (v *VoiceInput) Settle(ctx context.Context, activationID string) error {
	v.c.mu.Lock()
	settled, ok := v.settled[activationID]
	v.c.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActivationID returns the active recognition, or ""
func (v *VoiceInput) ActivationID() string {
	v.c.mu.Lock()
	defer v.c.mu.Unlock()
	return v.c.activationID
}

func (v *VoiceInput) await(ctx context.Context, activationID string, events <-chan serviceinterfaces.RecognitionEvent, outcome chan<- error) {
	defer close(outcome)
	defer v.finish(activationID)

	var (
		event    serviceinterfaces.RecognitionEvent
		received bool
		reason   string
	)
	select {
	case event, received = <-events:
	case <-ctx.Done():
		v.recognizer.Abort(activationID)
		reason = speech.ReasonAborted
	case <-v.done:
		v.recognizer.Abort(activationID)
		reason = speech.ReasonAborted
	}

	// The caller's context may already be gone
	ctx = context.WithoutCancel(ctx)

	transcript := strings.TrimSpace(event.Transcript)
	if received && event.Type == serviceinterfaces.Recognized && transcript != "" {
		v.c.mu.Lock()
		if v.c.activationID == activationID {
			v.c.activationID = ""
		}
		v.c.setInputLocked(transcript)
		v.c.mu.Unlock()

		observability.RecordRecognition(ctx, "recognized")
		v.c.notes.post(LevelSuccess, "", MessageRecognized)
		outcome <- nil
		return
	}

	v.release(activationID)

	switch {
	case reason != "":
	case !received:
		reason = "ended without a result"
	case event.Reason != "":
		reason = event.Reason
	default:
		reason = speech.ReasonNoSpeech
	}
	err := contextutils.Derive(contextutils.ErrVoiceInput, reason, nil)
	observability.RecordRecognition(ctx, reason)
	v.c.logger.Info(ctx, "Voice input failed", v.c.fields(map[string]interface{}{
		"activation_id": activationID,
		"reason":        reason,
	}))
	v.c.notes.postError(err)
	outcome <- err
}

func (v *VoiceInput) finish(activationID string) {
	v.c.mu.Lock()
	settled, ok := v.settled[activationID]
	delete(v.settled, activationID)
	v.c.mu.Unlock()
	if ok {
		close(settled)
	}
}

func (v *VoiceInput) release(activationID string) {
	v.c.mu.Lock()
	defer v.c.mu.Unlock()
	if v.c.activationID == activationID {
		v.c.activationID = ""
	}
}
