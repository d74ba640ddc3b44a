package speech

import (
	"context"
	"sync"

	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"
)

// CommandType names an instruction for the browser speech engines
type CommandType string

// Commands queued for the browser
const (
	CommandSpeak  CommandType = "speak"
	CommandPause  CommandType = "pause"
	CommandResume CommandType = "resume"
	CommandCancel CommandType = "cancel"
	CommandListen CommandType = "listen"
	CommandAbort  CommandType = "abort"
)

// Command is one instruction for the browser, delivered with the next API response
type Command struct {
	Type         CommandType                  `json:"type"`
	Utterance    *serviceinterfaces.Utterance `json:"utterance,omitempty"`
	ActivationID string                       `json:"activation_id,omitempty"`
	Language     string                       `json:"lang,omitempty"`
}

// defaultOutboxSize bounds the queued commands when the browser stops polling
const defaultOutboxSize = 64

// Outbox queues commands until the browser collects them. When full, the oldest
// command is dropped.
type Outbox struct {
	mu       sync.Mutex
	commands []Command
	max      int
}

// NewOutbox creates an outbox holding at most max commands
func NewOutbox(max int) *Outbox {
	if max <= 0 {
		max = defaultOutboxSize
	}
	return &Outbox{max: max}
}

func (o *Outbox) push(c Command) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.commands) >= o.max {
		o.commands = o.commands[1:]
	}
	o.commands = append(o.commands, c)
}

// Drain returns and removes every queued command in order
func (o *Outbox) Drain() []Command {
	o.mu.Lock()
	defer o.mu.Unlock()

	commands := o.commands
	o.commands = nil
	return commands
}

// Len returns the number of queued commands
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.commands)
}

// Bridge pairs the browser speech engines of one session with their shared outbox
type Bridge struct {
	Outbox      *Outbox
	Synthesizer *BridgeSynthesizer
	Recognizer  *BridgeRecognizer
}

// NewBridge creates bridge engines sharing one outbox
func NewBridge(recognitionAvailable bool) *Bridge {
	outbox := NewOutbox(defaultOutboxSize)
	return &Bridge{
		Outbox:      outbox,
		Synthesizer: NewBridgeSynthesizer(outbox),
		Recognizer:  NewBridgeRecognizer(outbox, recognitionAvailable),
	}
}

// BridgeSynthesizer forwards synthesis commands to a browser and receives its
// lifecycle events through Report
type BridgeSynthesizer struct {
	outbox *Outbox

	mu       sync.Mutex
	current  string
	speaking bool
	paused   bool
	events   chan serviceinterfaces.SynthesisEvent
}

// NewBridgeSynthesizer creates a synthesizer that queues its commands in outbox
func NewBridgeSynthesizer(outbox *Outbox) *BridgeSynthesizer {
	return &BridgeSynthesizer{
		outbox: outbox,
		events: make(chan serviceinterfaces.SynthesisEvent, eventBuffer),
	}
}

// Speak queues a cancel followed by the utterance
func (s *BridgeSynthesizer) Speak(ctx context.Context, u serviceinterfaces.Utterance) (err error) {
	_, span := observability.TraceSpeechFunction(ctx, "bridge_speak", observability.AttributeLanguage(u.Language))
	defer observability.FinishSpan(span, &err)

	s.mu.Lock()
	s.current = u.ID
	s.speaking = false
	s.paused = false
	s.mu.Unlock()

	utterance := u
	s.outbox.push(Command{Type: CommandCancel})
	s.outbox.push(Command{Type: CommandSpeak, Utterance: &utterance})
	return nil
}

// Pause queues a pause command
func (s *BridgeSynthesizer) Pause() error {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()

	s.outbox.push(Command{Type: CommandPause})
	return nil
}

// Resume queues a resume command
func (s *BridgeSynthesizer) Resume() error {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()

	s.outbox.push(Command{Type: CommandResume})
	return nil
}

// Cancel queues a cancel command
func (s *BridgeSynthesizer) Cancel() error {
	s.mu.Lock()
	s.current = ""
	s.speaking = false
	s.paused = false
	s.mu.Unlock()

	s.outbox.push(Command{Type: CommandCancel})
	return nil
}

// Speaking reports what the browser last told us: started and not paused
func (s *BridgeSynthesizer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking && !s.paused
}

// Events returns the lifecycle event channel
func (s *BridgeSynthesizer) Events() <-chan serviceinterfaces.SynthesisEvent {
	return s.events
}

// Report delivers a browser lifecycle event
func (s *BridgeSynthesizer) Report(ev serviceinterfaces.SynthesisEvent) error {
	switch ev.Type {
	case serviceinterfaces.SynthesisStarted, serviceinterfaces.SynthesisEnded, serviceinterfaces.SynthesisFailed:
	default:
		return contextutils.Derive(contextutils.ErrInvalidInput, "unknown synthesis event type: "+string(ev.Type), nil)
	}

	s.mu.Lock()
	if ev.UtteranceID == s.current {
		s.speaking = ev.Type == serviceinterfaces.SynthesisStarted
	}
	s.mu.Unlock()

	select {
	case s.events <- ev:
		return nil
	default:
		return contextutils.Derive(contextutils.ErrServiceUnavailable, "speech event queue is full", nil)
	}
}

// BridgeRecognizer forwards recognition requests to a browser and receives the
// outcome through Report
type BridgeRecognizer struct {
	outbox *Outbox

	mu        sync.Mutex
	available bool
	pending   map[string]chan serviceinterfaces.RecognitionEvent
}

// NewBridgeRecognizer creates a recognizer that queues its commands in outbox.
// available is what the browser reported about its speech recognition support.
func NewBridgeRecognizer(outbox *Outbox, available bool) *BridgeRecognizer {
	return &BridgeRecognizer{
		outbox:    outbox,
		available: available,
		pending:   make(map[string]chan serviceinterfaces.RecognitionEvent),
	}
}

// SetAvailable records whether the browser supports speech recognition
func (r *BridgeRecognizer) SetAvailable(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = available
}

// Available reports the browser's last known capability
func (r *BridgeRecognizer) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.available
}

// Start queues a listen command for the activation
func (r *BridgeRecognizer) Start(ctx context.Context, activationID, language string) (result <-chan serviceinterfaces.RecognitionEvent, err error) {
	_, span := observability.TraceSpeechFunction(ctx, "bridge_listen", observability.AttributeLanguage(language))
	defer observability.FinishSpan(span, &err)

	r.mu.Lock()
	if !r.available {
		r.mu.Unlock()
		return nil, contextutils.Derive(contextutils.ErrUnsupportedCapability, "browser has no speech recognition", nil)
	}
	events := make(chan serviceinterfaces.RecognitionEvent, 1)
	r.pending[activationID] = events
	r.mu.Unlock()

	r.outbox.push(Command{Type: CommandListen, ActivationID: activationID, Language: language})
	return events, nil
}

// Abort queues an abort command and closes the activation without an outcome
func (r *BridgeRecognizer) Abort(activationID string) {
	r.mu.Lock()
	events, ok := r.pending[activationID]
	delete(r.pending, activationID)
	r.mu.Unlock()

	if ok {
		close(events)
		r.outbox.push(Command{Type: CommandAbort, ActivationID: activationID})
	}
}

// Report delivers the browser's outcome for an activation
func (r *BridgeRecognizer) Report(ev serviceinterfaces.RecognitionEvent) error {
	switch ev.Type {
	case serviceinterfaces.Recognized, serviceinterfaces.RecognitionFailed:
	default:
		return contextutils.Derive(contextutils.ErrInvalidInput, "unknown recognition event type: "+string(ev.Type), nil)
	}

	r.mu.Lock()
	events, ok := r.pending[ev.ActivationID]
	delete(r.pending, ev.ActivationID)
	r.mu.Unlock()

	if !ok {
		return contextutils.Derive(contextutils.ErrInvalidInput, "no active recognition "+ev.ActivationID, nil)
	}

	events <- ev
	close(events)
	return nil
}
