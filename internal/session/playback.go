package session

import (
	"context"
	"math"
	"strings"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/google/uuid"
)

// Playback speaks the primary translation and tracks the Stopped, Speaking and Paused states.
// Engine events for anything but the current utterance are ignored.
type Playback struct {
	c     *core
	synth serviceinterfaces.Synthesizer
	// settle carries requests from Settle to the event pump
	settle chan chan struct{}
}

// Available reports whether a synthesizer is configured
func (p *Playback) Available() bool {
	return p.synth != nil
}

// State returns the playback state
func (p *Playback) State() PlaybackState {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.c.playback
}

// Rate returns the rate used by the next Play
func (p *Playback) Rate() float64 {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.c.rate
}

// ClampRate limits rate to the supported range and rounds it to the nearest step
func ClampRate(rate float64) float64 {
	const steps = 1 / config.PlaybackRateStep
	rate = math.Max(config.MinPlaybackRate, math.Min(config.MaxPlaybackRate, rate))
	return math.Round(rate*steps) / steps
}

// SetRate sets the rate for the next Play and returns the value stored
func (p *Playback) SetRate(rate float64) (float64, error) {
	if math.IsNaN(rate) {
		return 0, contextutils.Derive(contextutils.ErrInvalidInput, "rate is not a number", nil)
	}
	rate = ClampRate(rate)

	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.c.rate = rate
	return rate, nil
}

// Play cancels whatever is playing and speaks the primary translation in the target
// language. The state becomes Speaking when the engine reports the utterance started.
func (p *Playback) Play(ctx context.Context) (err error) {
	ctx, span := observability.TraceSpeechFunction(ctx, "play", observability.AttributeSessionID(p.c.id))
	defer observability.FinishSpan(span, &err)

	if p.synth == nil {
		err = contextutils.Derive(contextutils.ErrUnsupportedCapability, "speech synthesis is not available", nil)
		p.c.notes.postError(err)
		return err
	}

	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	if p.c.result == nil || strings.TrimSpace(p.c.result.Primary) == "" {
		err = contextutils.Derive(contextutils.ErrNothingToPlay, "", nil)
		p.c.notes.postError(err)
		return err
	}

	if cancelErr := p.synth.Cancel(); cancelErr != nil {
		p.c.logger.Warn(ctx, "Failed to cancel previous utterance", p.c.fields(map[string]interface{}{"error": cancelErr.Error()}))
	}

	utterance := serviceinterfaces.Utterance{
		ID:       uuid.NewString(),
		Text:     p.c.result.Primary,
		Language: p.c.pair.Target,
		Rate:     p.c.rate,
	}
	span.SetAttributes(observability.AttributeLanguage(utterance.Language), observability.AttributePlaybackRate(utterance.Rate))

	p.c.utteranceID = utterance.ID
	p.c.setPlaybackLocked(ctx, PlaybackStopped)

	if err = p.synth.Speak(ctx, utterance); err != nil {
		p.c.utteranceID = ""
		if !contextutils.IsError(err, contextutils.ErrSynthesis) {
			err = contextutils.Derive(contextutils.ErrSynthesis, err.Error(), err)
		}
		p.c.notes.postError(err)
		return err
	}
	return nil
}

// Pause pauses speech. It does nothing unless the state is Speaking and the engine is speaking.
func (p *Playback) Pause(ctx context.Context) error {
	if p.synth == nil {
		return nil
	}

	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	if p.c.playback != PlaybackSpeaking || !p.synth.Speaking() {
		return nil
	}
	if err := p.synth.Pause(); err != nil {
		return contextutils.Derive(contextutils.ErrSynthesis, err.Error(), err)
	}
	p.c.setPlaybackLocked(ctx, PlaybackPaused)
	return nil
}

// Resume continues paused speech. It does nothing unless the state is Paused.
func (p *Playback) Resume(ctx context.Context) error {
	if p.synth == nil {
		return nil
	}

	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	if p.c.playback != PlaybackPaused {
		return nil
	}
	if err := p.synth.Resume(); err != nil {
		return contextutils.Derive(contextutils.ErrSynthesis, err.Error(), err)
	}
	p.c.setPlaybackLocked(ctx, PlaybackSpeaking)
	return nil
}

// Stop cancels speech from any state
func (p *Playback) Stop(ctx context.Context) error {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	p.c.utteranceID = ""
	p.c.setPlaybackLocked(ctx, PlaybackStopped)
	if p.synth == nil {
		return nil
	}
	if err := p.synth.Cancel(); err != nil {
		return contextutils.Derive(contextutils.ErrSynthesis, err.Error(), err)
	}
	return nil
}

// HandleEvent applies one engine event to the state machine
func (p *Playback) HandleEvent(ctx context.Context, event serviceinterfaces.SynthesisEvent) {
	p.c.mu.Lock()
	if event.UtteranceID == "" || event.UtteranceID != p.c.utteranceID {
		p.c.mu.Unlock()
		return
	}

	var failure error
	switch event.Type {
	case serviceinterfaces.SynthesisStarted:
		if p.c.playback == PlaybackStopped {
			p.c.setPlaybackLocked(ctx, PlaybackSpeaking)
		}
	case serviceinterfaces.SynthesisEnded:
		p.c.utteranceID = ""
		p.c.setPlaybackLocked(ctx, PlaybackStopped)
	case serviceinterfaces.SynthesisFailed:
		p.c.utteranceID = ""
		p.c.setPlaybackLocked(ctx, PlaybackStopped)
		failure = contextutils.Derive(contextutils.ErrSynthesis, event.Reason, nil)
	}
	p.c.mu.Unlock()

	if failure != nil {
		p.c.logger.Warn(ctx, "Speech synthesis failed", p.c.fields(map[string]interface{}{
			"utterance_id": event.UtteranceID,
			"reason":       event.Reason,
		}))
		p.c.notes.postError(failure)
	}
}

// Run consumes engine events until ctx is done or the event channel closes
func (p *Playback) Run(ctx context.Context) {
	if p.synth == nil {
		return
	}
	events := p.synth.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			p.HandleEvent(ctx, event)
		case reply := <-p.settle:
			p.drain(ctx, events)
			close(reply)
		}
	}
}

// drain applies every event already queued by the engine
func (p *Playback) drain(ctx context.Context, events <-chan serviceinterfaces.SynthesisEvent) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			p.HandleEvent(ctx, event)
		default:
			return
		}
	}
}

// Settle returns once every engine event queued before the call has been applied.
// It requires Run to be consuming events.
func (p *Playback) Settle(ctx context.Context) error {
	if p.synth == nil || p.settle == nil {
		return nil
	}
	reply := make(chan struct{})
	select {
	case p.settle <- reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
