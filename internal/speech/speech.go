// Package speech provides the speech engines a translation session drives: external
// command engines for terminal use and bridge engines whose real implementation lives
// in a browser.
package speech

import (
	"strconv"
	"strings"

	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
)

// Placeholders recognized in engine command arguments
const (
	PlaceholderLanguage = "{lang}"
	PlaceholderWPM      = "{wpm}"
	PlaceholderText     = "{text}"
)

// eventBuffer is the capacity of engine event channels
const eventBuffer = 32

var (
	_ serviceinterfaces.Synthesizer = (*ExecSynthesizer)(nil)
	_ serviceinterfaces.Synthesizer = (*BridgeSynthesizer)(nil)
	_ serviceinterfaces.Recognizer  = (*ExecRecognizer)(nil)
	_ serviceinterfaces.Recognizer  = (*BridgeRecognizer)(nil)
)

// expandArgs substitutes placeholders in a command template. When the template has no
// {text} placeholder and text is non-empty, text is appended as the last argument.
func expandArgs(template []string, language string, wpm int, text string) []string {
	args := make([]string, 0, len(template)+1)
	hasText := false
	for _, arg := range template {
		if strings.Contains(arg, PlaceholderText) {
			hasText = true
		}
		arg = strings.ReplaceAll(arg, PlaceholderLanguage, language)
		arg = strings.ReplaceAll(arg, PlaceholderWPM, strconv.Itoa(wpm))
		arg = strings.ReplaceAll(arg, PlaceholderText, text)
		args = append(args, arg)
	}
	if !hasText && text != "" {
		args = append(args, text)
	}
	return args
}

// wordsPerMinute scales the engine's base speed by a playback rate
func wordsPerMinute(base int, rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	wpm := int(float64(base)*rate + 0.5)
	if wpm < 1 {
		wpm = 1
	}
	return wpm
}
