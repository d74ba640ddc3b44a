package serviceinterfaces

import "context"

// Utterance is one piece of text handed to a speech synthesizer
type Utterance struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Language string  `json:"lang"`
	Rate     float64 `json:"rate"`
}

// SynthesisEventType is the lifecycle event kind reported by a synthesizer
type SynthesisEventType string

const (
	// SynthesisStarted is emitted once the engine starts producing audio for an utterance
	SynthesisStarted SynthesisEventType = "started"
	// SynthesisEnded is emitted when an utterance finishes or is cancelled
	SynthesisEnded SynthesisEventType = "ended"
	// SynthesisFailed is emitted when the engine cannot speak an utterance
	SynthesisFailed SynthesisEventType = "failed"
)

// SynthesisEvent is a lifecycle notification for one utterance
type SynthesisEvent struct {
	Type        SynthesisEventType `json:"type"`
	UtteranceID string             `json:"utterance_id"`
	Reason      string             `json:"reason,omitempty"`
}

// Synthesizer is a text-to-speech engine owned outside the session.
// Speak returns once the utterance is queued; progress is reported on Events.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
	Pause() error
	Resume() error
	Cancel() error
	// Speaking reports whether the engine is actively producing audio
	Speaking() bool
	// Events is consumed by exactly one reader
	Events() <-chan SynthesisEvent
}

// RecognitionEventType is the outcome kind of one recognition activation
type RecognitionEventType string

const (
	// Recognized carries a transcript
	Recognized RecognitionEventType = "recognized"
	// RecognitionFailed carries the engine's reason, e.g. "no-speech" or "not-allowed"
	RecognitionFailed RecognitionEventType = "failed"
)

// RecognitionEvent is the single outcome of a recognition activation
type RecognitionEvent struct {
	Type         RecognitionEventType `json:"type"`
	ActivationID string               `json:"activation_id"`
	Transcript   string               `json:"transcript,omitempty"`
	Reason       string               `json:"reason,omitempty"`
}

// Recognizer is a speech-to-text engine owned outside the session
type Recognizer interface {
	// Available reports whether the host can recognize speech at all
	Available() bool
	// Start begins a single-shot recognition in the given language. The returned channel
	// yields at most one event and is then closed.
	Start(ctx context.Context, activationID, language string) (<-chan RecognitionEvent, error)
	// Abort stops the activation if it is still running
	Abort(activationID string)
}
