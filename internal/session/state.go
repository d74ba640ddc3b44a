// Package session holds the per-user translation and speech state: the language catalog,
// the current input and result, the language pair, voice input and playback.
package session

import (
	"context"
	"sync"

	"github.com/Prachi290-pr/language-translator/internal/observability"
)

// Status is whether a translation request is in flight
type Status string

// Session statuses
const (
	StatusIdle        Status = "idle"
	StatusTranslating Status = "translating"
)

// PlaybackState is the state of speech playback for the current result
type PlaybackState string

// Playback states
const (
	PlaybackStopped  PlaybackState = "stopped"
	PlaybackSpeaking PlaybackState = "speaking"
	PlaybackPaused   PlaybackState = "paused"
)

// LanguagePair is the source and target language codes. Source and target may be equal.
type LanguagePair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// TranslationResult is the outcome of the last successful translation
type TranslationResult struct {
	Primary    string   `json:"primary"`
	Alternates []string `json:"alternates"`
}

func (r *TranslationResult) clone() *TranslationResult {
	if r == nil {
		return nil
	}
	alternates := make([]string, len(r.Alternates))
	copy(alternates, r.Alternates)
	return &TranslationResult{Primary: r.Primary, Alternates: alternates}
}

// core is the state shared by the session components. Every field below mu is guarded by it.
type core struct {
	id     string
	logger *observability.Logger
	notes  *notifier

	mu           sync.Mutex
	catalog      Catalog
	pair         LanguagePair
	input        string
	result       *TranslationResult
	status       Status
	generation   uint64
	playback     PlaybackState
	rate         float64
	utteranceID  string
	activationID string
}

func newCore(id string, pair LanguagePair, rate float64, notes *notifier, logger *observability.Logger) *core {
	return &core{
		id:       id,
		logger:   logger,
		notes:    notes,
		pair:     pair,
		status:   StatusIdle,
		playback: PlaybackStopped,
		rate:     rate,
	}
}

// setInputLocked replaces the input text. Any in-flight request becomes stale when the text changes.
func (c *core) setInputLocked(text string) {
	if c.input == text {
		return
	}
	c.input = text
	c.generation++
}

func (c *core) setSourceLocked(code string) {
	if c.pair.Source != code {
		c.pair.Source = code
		c.generation++
	}
}

func (c *core) setTargetLocked(code string) {
	if c.pair.Target != code {
		c.pair.Target = code
		c.generation++
	}
}

func (c *core) fields(extra map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{"session_id": c.id}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// setPlaybackLocked moves the playback state machine and records the transition
func (c *core) setPlaybackLocked(ctx context.Context, next PlaybackState) {
	if c.playback == next {
		return
	}
	prev := c.playback
	c.playback = next
	observability.RecordPlaybackTransition(ctx, string(prev), string(next))
	c.logger.Debug(ctx, "Playback state changed", c.fields(map[string]interface{}{
		"from": string(prev),
		"to":   string(next),
	}))
}
