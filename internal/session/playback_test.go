package session

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newPlaybackFixture returns a playback controller without the event pump so tests
// can feed events synchronously
func newPlaybackFixture(t *testing.T, primary string) (*Playback, *fakeSynthesizer) {
	t.Helper()
	synth := newFakeSynthesizer()
	c := newCore("playback-test", LanguagePair{Source: "en", Target: "fr"}, 1.0, newNotifier(10, "en"), testLogger())
	if primary != "" {
		c.result = &TranslationResult{Primary: primary}
	}
	return &Playback{c: c, synth: synth}, synth
}

func event(kind serviceinterfaces.SynthesisEventType, id string) serviceinterfaces.SynthesisEvent {
	return serviceinterfaces.SynthesisEvent{Type: kind, UtteranceID: id}
}

func TestPlayback_NothingToPlay(t *testing.T) {
	p, synth := newPlaybackFixture(t, "")

	err := p.Play(context.Background())
	assert.ErrorIs(t, err, contextutils.ErrNothingToPlay)
	assert.Equal(t, PlaybackStopped, p.State())
	assert.Empty(t, synth.spoken)
	assert.Equal(t, 0, synth.cancels)
	assert.Equal(t, []string{string(contextutils.ErrorCodeNothingToPlay)}, notificationCodes(p.c.notes.drain()))
}

func TestPlayback_NoSynthesizer(t *testing.T) {
	p, _ := newPlaybackFixture(t, "bonjour")
	p.synth = nil

	assert.ErrorIs(t, p.Play(context.Background()), contextutils.ErrUnsupportedCapability)
	assert.NoError(t, p.Pause(context.Background()))
	assert.NoError(t, p.Resume(context.Background()))
	assert.NoError(t, p.Stop(context.Background()))
	assert.False(t, p.Available())
}

func TestPlayback_FullCycle(t *testing.T) {
	ctx := context.Background()
	p, synth := newPlaybackFixture(t, "bonjour")
	_, err := p.SetRate(1.5)
	require.NoError(t, err)

	require.NoError(t, p.Play(ctx))
	u := synth.lastUtterance(t)
	assert.Equal(t, "bonjour", u.Text)
	assert.Equal(t, "fr", u.Language)
	assert.Equal(t, 1.5, u.Rate)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, 1, synth.cancels)
	assert.Equal(t, PlaybackStopped, p.State())

	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, u.ID))
	assert.Equal(t, PlaybackSpeaking, p.State())

	require.NoError(t, p.Pause(ctx))
	assert.Equal(t, PlaybackPaused, p.State())
	assert.Equal(t, 1, synth.pauses)

	require.NoError(t, p.Resume(ctx))
	assert.Equal(t, PlaybackSpeaking, p.State())
	assert.Equal(t, 1, synth.resumes)

	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisEnded, u.ID))
	assert.Equal(t, PlaybackStopped, p.State())
}

func TestPlayback_GuardsAreNoOps(t *testing.T) {
	ctx := context.Background()
	p, synth := newPlaybackFixture(t, "bonjour")

	require.NoError(t, p.Pause(ctx))
	require.NoError(t, p.Resume(ctx))
	assert.Equal(t, PlaybackStopped, p.State())
	assert.Equal(t, 0, synth.pauses)
	assert.Equal(t, 0, synth.resumes)

	require.NoError(t, p.Play(ctx))
	u := synth.lastUtterance(t)
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, u.ID))

	// Resume only applies to Paused
	require.NoError(t, p.Resume(ctx))
	assert.Equal(t, 0, synth.resumes)

	// Pause requires the engine to be speaking too
	synth.mu.Lock()
	synth.speaking = false
	synth.mu.Unlock()
	require.NoError(t, p.Pause(ctx))
	assert.Equal(t, PlaybackSpeaking, p.State())
	assert.Equal(t, 0, synth.pauses)
}

func TestPlayback_StopFromAnyState(t *testing.T) {
	ctx := context.Background()
	p, synth := newPlaybackFixture(t, "bonjour")

	require.NoError(t, p.Stop(ctx))
	assert.Equal(t, PlaybackStopped, p.State())

	require.NoError(t, p.Play(ctx))
	u := synth.lastUtterance(t)
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, u.ID))
	require.NoError(t, p.Pause(ctx))
	require.Equal(t, PlaybackPaused, p.State())

	require.NoError(t, p.Stop(ctx))
	assert.Equal(t, PlaybackStopped, p.State())

	// Late events for the cancelled utterance change nothing
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, u.ID))
	assert.Equal(t, PlaybackStopped, p.State())
}

func TestPlayback_EventsFromOldUtteranceAreIgnored(t *testing.T) {
	ctx := context.Background()
	p, synth := newPlaybackFixture(t, "bonjour")

	require.NoError(t, p.Play(ctx))
	first := synth.lastUtterance(t)
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, first.ID))

	require.NoError(t, p.Play(ctx))
	second := synth.lastUtterance(t)
	require.NotEqual(t, first.ID, second.ID)
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, second.ID))

	// The cancel inside Play ends the first utterance
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisEnded, first.ID))
	assert.Equal(t, PlaybackSpeaking, p.State())

	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisEnded, ""))
	assert.Equal(t, PlaybackSpeaking, p.State())
}

func TestPlayback_SynthesisFailureStops(t *testing.T) {
	ctx := context.Background()
	p, synth := newPlaybackFixture(t, "bonjour")

	require.NoError(t, p.Play(ctx))
	u := synth.lastUtterance(t)
	p.HandleEvent(ctx, event(serviceinterfaces.SynthesisStarted, u.ID))
	p.HandleEvent(ctx, serviceinterfaces.SynthesisEvent{Type: serviceinterfaces.SynthesisFailed, UtteranceID: u.ID, Reason: "audio device busy"})

	assert.Equal(t, PlaybackStopped, p.State())
	notes := p.c.notes.drain()
	require.Len(t, notes, 1)
	assert.Equal(t, contextutils.ErrorCodeSynthesis, notes[0].Code)
	assert.Equal(t, LevelError, notes[0].Level)
}

func TestPlayback_SpeakError(t *testing.T) {
	p, synth := newPlaybackFixture(t, "bonjour")
	synth.speakErr = errors.New("no audio output")

	err := p.Play(context.Background())
	assert.ErrorIs(t, err, contextutils.ErrSynthesis)
	assert.Equal(t, PlaybackStopped, p.State())
	assert.Empty(t, p.c.utteranceID)
}

func TestPlayback_SetRate(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.0, 1.0},
		{0.5, 0.5},
		{2.0, 2.0},
		{0.1, 0.5},
		{3.7, 2.0},
		{-1, 0.5},
		{1.24, 1.2},
		{1.26, 1.3},
		{math.Inf(1), 2.0},
	}
	p, _ := newPlaybackFixture(t, "")
	for _, tt := range tests {
		got, err := p.SetRate(tt.in)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "rate %v", tt.in)
		assert.InDelta(t, tt.want, p.Rate(), 1e-9)
	}

	_, err := p.SetRate(math.NaN())
	assert.ErrorIs(t, err, contextutils.ErrInvalidInput)
	assert.InDelta(t, 2.0, p.Rate(), 1e-9)
}

func TestPlayback_EventPump(t *testing.T) {
	translator := newMockTranslator()
	translator.On("Translate", mock.Anything, mock.Anything).Return(translated("bonjour"), nil)
	synth := newFakeSynthesizer()

	s := newTestSession(t, translator, withSynthesizer(synth))
	s.SetInputText("hello")
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Play(context.Background()))
	u := synth.lastUtterance(t)

	synth.events <- event(serviceinterfaces.SynthesisStarted, u.ID)
	assert.Eventually(t, func() bool { return s.Snapshot().Playback == PlaybackSpeaking }, time.Second, 5*time.Millisecond)

	synth.events <- event(serviceinterfaces.SynthesisEnded, u.ID)
	assert.Eventually(t, func() bool { return s.Snapshot().Playback == PlaybackStopped }, time.Second, 5*time.Millisecond)
}

func TestPlayback_SettleAppliesQueuedEvents(t *testing.T) {
	ctx := context.Background()
	translator := newMockTranslator()
	translator.On("Translate", mock.Anything, mock.Anything).Return(translated("bonjour"), nil)
	synth := newFakeSynthesizer()
	s := newTestSession(t, translator, withSynthesizer(synth))

	s.SetInputText("hello")
	_, err := s.Submit(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Play(ctx))
	u := synth.lastUtterance(t)

	synth.events <- event(serviceinterfaces.SynthesisStarted, u.ID)
	require.NoError(t, s.SettlePlayback(ctx))
	assert.Equal(t, PlaybackSpeaking, s.Snapshot().Playback)

	synth.events <- event(serviceinterfaces.SynthesisStarted, "stale")
	synth.events <- event(serviceinterfaces.SynthesisEnded, u.ID)
	require.NoError(t, s.SettlePlayback(ctx))
	assert.Equal(t, PlaybackStopped, s.Snapshot().Playback)
}

func TestPlayback_SettleWithoutPump(t *testing.T) {
	p, _ := newPlaybackFixture(t, "bonjour")
	assert.NoError(t, p.Settle(context.Background()))

	// A pump that is not running cannot answer
	p.settle = make(chan chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Settle(ctx), context.DeadlineExceeded)
}
