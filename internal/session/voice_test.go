package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitOutcome(t *testing.T, outcome <-chan error) error {
	t.Helper()
	select {
	case err, ok := <-outcome:
		require.True(t, ok, "outcome channel closed without a value")
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for voice input outcome")
		return nil
	}
}

func TestVoice_Unsupported(t *testing.T) {
	t.Run("no recognizer", func(t *testing.T) {
		s := newTestSession(t, newMockTranslator())
		_, err := s.StartListening(context.Background())
		assert.ErrorIs(t, err, contextutils.ErrUnsupportedCapability)
		assert.False(t, s.VoiceAvailable())
		assert.Equal(t, []string{string(contextutils.ErrorCodeUnsupportedCapability)}, notificationCodes(s.Notifications()))
	})

	t.Run("recognizer unavailable", func(t *testing.T) {
		recognizer := newFakeRecognizer()
		recognizer.available = false
		s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))
		_, err := s.StartListening(context.Background())
		assert.ErrorIs(t, err, contextutils.ErrUnsupportedCapability)
		assert.Empty(t, recognizer.activations)
	})
}

func TestVoice_RecognizedTextReplacesInput(t *testing.T) {
	recognizer := newFakeRecognizer()
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))
	s.SetInputText("old text")
	s.SetSource("es")

	outcome, err := s.StartListening(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Listening)
	assert.Equal(t, []string{"es"}, recognizer.languages)

	recognizer.deliver(t, serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.Recognized, Transcript: " hola mundo "})

	require.NoError(t, waitOutcome(t, outcome))
	_, open := <-outcome
	assert.False(t, open)

	snap := s.Snapshot()
	assert.Equal(t, "hola mundo", snap.Input)
	assert.False(t, snap.Listening)
}

func TestVoice_FailureLeavesInputUntouched(t *testing.T) {
	tests := []struct {
		name       string
		event      serviceinterfaces.RecognitionEvent
		wantReason string
	}{
		{"engine error", serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.RecognitionFailed, Reason: "not-allowed"}, "not-allowed"},
		{"failure without reason", serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.RecognitionFailed}, "no-speech"},
		{"empty transcript", serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.Recognized, Transcript: "  "}, "no-speech"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recognizer := newFakeRecognizer()
			s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))
			s.SetInputText("keep me")

			outcome, err := s.StartListening(context.Background())
			require.NoError(t, err)
			recognizer.deliver(t, tt.event)

			err = waitOutcome(t, outcome)
			require.Error(t, err)
			assert.ErrorIs(t, err, contextutils.ErrVoiceInput)

			var appErr *contextutils.AppError
			require.True(t, contextutils.AsError(err, &appErr))
			assert.Equal(t, tt.wantReason, appErr.Details)

			snap := s.Snapshot()
			assert.Equal(t, "keep me", snap.Input)
			assert.False(t, snap.Listening)
			assert.Contains(t, notificationCodes(s.Notifications()), string(contextutils.ErrorCodeVoiceInput))
		})
	}
}

func TestVoice_AtMostOneActiveRecognition(t *testing.T) {
	recognizer := newFakeRecognizer()
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))

	outcome, err := s.StartListening(context.Background())
	require.NoError(t, err)

	_, err = s.StartListening(context.Background())
	assert.ErrorIs(t, err, contextutils.ErrAlreadyInProgress)
	assert.Len(t, recognizer.activations, 1)

	recognizer.deliver(t, serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.Recognized, Transcript: "bonjour"})
	require.NoError(t, waitOutcome(t, outcome))

	// A finished recognition frees the slot
	_, err = s.StartListening(context.Background())
	require.NoError(t, err)
}

func TestVoice_StopListening(t *testing.T) {
	recognizer := newFakeRecognizer()
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))

	outcome, err := s.StartListening(context.Background())
	require.NoError(t, err)
	s.StopListening()

	err = waitOutcome(t, outcome)
	assert.ErrorIs(t, err, contextutils.ErrVoiceInput)
	assert.Len(t, recognizer.aborted, 1)
	assert.False(t, s.Snapshot().Listening)
}

func TestVoice_ContextCancellationAborts(t *testing.T) {
	recognizer := newFakeRecognizer()
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))
	s.SetInputText("unchanged")

	ctx, cancel := context.WithCancel(context.Background())
	outcome, err := s.StartListening(ctx)
	require.NoError(t, err)
	cancel()

	err = waitOutcome(t, outcome)
	assert.ErrorIs(t, err, contextutils.ErrVoiceInput)
	assert.Equal(t, "unchanged", s.Snapshot().Input)
	assert.Eventually(t, func() bool {
		recognizer.mu.Lock()
		defer recognizer.mu.Unlock()
		return len(recognizer.aborted) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestVoice_StartFailure(t *testing.T) {
	recognizer := newFakeRecognizer()
	recognizer.startErr = errors.New("microphone busy")
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))

	_, err := s.StartListening(context.Background())
	assert.ErrorIs(t, err, contextutils.ErrVoiceInput)
	assert.False(t, s.Snapshot().Listening)
}

func TestVoice_SettleRecognition(t *testing.T) {
	recognizer := newFakeRecognizer()
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))
	ctx := context.Background()

	_, err := s.StartListening(ctx)
	require.NoError(t, err)
	activationID := s.ListeningActivation()
	require.NotEmpty(t, activationID)

	recognizer.deliver(t, serviceinterfaces.RecognitionEvent{Type: serviceinterfaces.Recognized, Transcript: "bonjour"})
	require.NoError(t, s.SettleRecognition(ctx, activationID))

	snap := s.Snapshot()
	assert.False(t, snap.Listening)
	assert.Equal(t, "bonjour", snap.Input)
	assert.Empty(t, s.ListeningActivation())

	// Finished and unknown activations return at once
	assert.NoError(t, s.SettleRecognition(ctx, activationID))
	assert.NoError(t, s.SettleRecognition(ctx, "unknown"))
}

func TestVoice_SettleWaitsForRunningActivation(t *testing.T) {
	recognizer := newFakeRecognizer()
	s := newTestSession(t, newMockTranslator(), withRecognizer(recognizer))

	_, err := s.StartListening(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.SettleRecognition(ctx, s.ListeningActivation()), context.DeadlineExceeded)
	assert.True(t, s.Snapshot().Listening)
}
