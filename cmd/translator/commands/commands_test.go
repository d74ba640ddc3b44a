package commands

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Prachi290-pr/language-translator/internal/config"
	"github.com/Prachi290-pr/language-translator/internal/observability"
	"github.com/Prachi290-pr/language-translator/internal/serviceinterfaces"
	"github.com/Prachi290-pr/language-translator/internal/services"
	contextutils "github.com/Prachi290-pr/language-translator/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTranslator returns fixed translations
type stubTranslator struct {
	texts []string
	err   error
	last  serviceinterfaces.TranslateRequest
}

func (s *stubTranslator) Name() string { return "stub" }

func (s *stubTranslator) Languages(context.Context) (map[string]string, error) {
	return map[string]string{"en": "English", "fr": "French", "de": "German"}, nil
}

func (s *stubTranslator) Translate(_ context.Context, req serviceinterfaces.TranslateRequest) (*serviceinterfaces.TranslateResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &serviceinterfaces.TranslateResponse{TranslatedTexts: s.texts}, nil
}

// stubRecognizer hears the same phrase every time
type stubRecognizer struct {
	transcript string
	language   string
}

func (s *stubRecognizer) Available() bool { return true }

func (s *stubRecognizer) Start(_ context.Context, activationID, language string) (<-chan serviceinterfaces.RecognitionEvent, error) {
	s.language = language
	events := make(chan serviceinterfaces.RecognitionEvent, 1)
	events <- serviceinterfaces.RecognitionEvent{
		Type:         serviceinterfaces.Recognized,
		ActivationID: activationID,
		Transcript:   s.transcript,
	}
	close(events)
	return events, nil
}

func (s *stubRecognizer) Abort(string) {}

func newTestRuntime(translator serviceinterfaces.TranslationService) (*Runtime, *bytes.Buffer) {
	cfg := config.Default()
	cfg.Translation.DefaultSource = "en"
	cfg.Translation.DefaultTarget = "fr"

	out := &bytes.Buffer{}
	return &Runtime{
		Config:     cfg,
		Logger:     observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false}),
		Translator: translator,
		Out:        out,
	}, out
}

func newTestRepl(t *testing.T, r *Runtime) *repl {
	t.Helper()
	s, err := r.newSession(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &repl{r: r, s: s}
}

func TestRunLanguages(t *testing.T) {
	r, out := newTestRuntime(&stubTranslator{})

	require.NoError(t, runLanguages(context.Background(), r))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "de  German", lines[0])
	assert.Equal(t, "en  English", lines[1])
	assert.Equal(t, "fr  French", lines[2])
}

func TestRunTranslate(t *testing.T) {
	translator := &stubTranslator{texts: []string{"bonjour", "salut"}}
	r, out := newTestRuntime(translator)

	err := runTranslate(context.Background(), r, translateOptions{to: "de", text: "hello", alternates: true})
	require.NoError(t, err)

	assert.Equal(t, "bonjour\n  1. salut\n", out.String())
	assert.Equal(t, "en", translator.last.SourceLanguage)
	assert.Equal(t, "de", translator.last.TargetLanguage)
	assert.Equal(t, config.DefaultNumResults, translator.last.NumResults)
}

func TestRunTranslate_Failure(t *testing.T) {
	translator := &stubTranslator{err: contextutils.Derive(contextutils.ErrRemoteTranslation, "unsupported language", nil)}
	r, out := newTestRuntime(translator)

	err := runTranslate(context.Background(), r, translateOptions{text: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, contextutils.ErrRemoteTranslation)
	assert.True(t, strings.HasPrefix(out.String(), "! "))
	assert.Contains(t, out.String(), "unsupported language")
}

func TestRunSpeak_WithoutEngine(t *testing.T) {
	r, out := newTestRuntime(services.NewNoopTranslationService())

	err := runSpeak(context.Background(), r, "fr", 1.2, "bonjour")
	require.Error(t, err)
	assert.ErrorIs(t, err, contextutils.ErrUnsupportedCapability)
	assert.Contains(t, out.String(), "! ")
}

func TestRepl_PlainLineTranslates(t *testing.T) {
	r, out := newTestRuntime(&stubTranslator{texts: []string{"bonjour", "salut", "coucou"}})
	p := newTestRepl(t, r)

	assert.False(t, p.execute(context.Background(), "  hello  "))
	assert.Equal(t, "bonjour\n", out.String())

	out.Reset()
	p.execute(context.Background(), ":alt")
	assert.Equal(t, "  1. salut\n  2. coucou\n", out.String())
}

func TestRepl_Commands(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		quit  bool
		wants string
	}{
		{"blank line", "   ", false, ""},
		{"help", ":help", false, ":listen"},
		{"from", ":from de", false, "Translating German (de) to French (fr)."},
		{"from without code", ":from", false, "Usage: :from CODE"},
		{"unknown language", ":to xx", false, "! xx is not in the language list"},
		{"rate", ":rate 1.26", false, "Rate is 1.3"},
		{"rate clamped", ":rate 9", false, "Rate is 2.0"},
		{"rate not a number", ":rate fast", false, "! fast is not a number"},
		{"alt before translating", ":alt", false, "Nothing translated yet."},
		{"play without engine", ":play", false, "! "},
		{"listen without engine", ":listen", false, "! "},
		{"unknown command", ":bogus", false, "Unknown command :bogus"},
		{"quit", ":quit", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out := newTestRuntime(&stubTranslator{texts: []string{"bonjour"}})
			p := newTestRepl(t, r)
			out.Reset()

			assert.Equal(t, tt.quit, p.execute(context.Background(), tt.line))
			if tt.wants == "" {
				assert.Empty(t, out.String())
			} else {
				assert.Contains(t, out.String(), tt.wants)
			}
		})
	}
}

func TestRepl_Swap(t *testing.T) {
	r, out := newTestRuntime(&stubTranslator{texts: []string{"bonjour"}})
	p := newTestRepl(t, r)

	p.execute(context.Background(), "hello")
	out.Reset()
	p.execute(context.Background(), ":swap")

	assert.Equal(t, "Translating French (fr) to English (en).\nInput: bonjour\n", out.String())
}

func TestRepl_ListenTranslatesTranscript(t *testing.T) {
	translator := &stubTranslator{texts: []string{"où est la gare"}}
	recognizer := &stubRecognizer{transcript: "where is the station"}
	r, out := newTestRuntime(translator)
	r.Recognizer = recognizer
	p := newTestRepl(t, r)

	p.execute(context.Background(), ":listen")

	assert.Equal(t, "Listening...\nHeard: where is the station\noù est la gare\n", out.String())
	assert.Equal(t, "en", recognizer.language)
	assert.Equal(t, "where is the station", translator.last.Text)
}

func TestRepl_LoopStopsAtQuit(t *testing.T) {
	r, out := newTestRuntime(&stubTranslator{texts: []string{"bonjour"}})
	p := newTestRepl(t, r)

	reader := &lineQueue{lines: []string{"hello", ":quit", "never read"}}
	require.NoError(t, p.loop(context.Background(), reader))
	assert.Equal(t, "bonjour\n", out.String())
	assert.Equal(t, 2, reader.read)
}

func TestRepl_LoopStopsAtEOF(t *testing.T) {
	r, _ := newTestRuntime(&stubTranslator{texts: []string{"bonjour"}})
	p := newTestRepl(t, r)

	reader := &lineQueue{lines: []string{"hello"}}
	require.NoError(t, p.loop(context.Background(), reader))
	assert.Equal(t, 1, reader.read)
}

func TestScannerReader(t *testing.T) {
	reader := &scannerReader{scanner: bufio.NewScanner(strings.NewReader("one\ntwo\n"))}

	line, err := reader.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = reader.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = reader.ReadLine()
	assert.Equal(t, io.EOF, err)
}

// lineQueue feeds fixed lines to the loop
type lineQueue struct {
	lines []string
	read  int
}

func (q *lineQueue) ReadLine() (string, error) {
	if q.read >= len(q.lines) {
		return "", io.EOF
	}
	q.read++
	return q.lines[q.read-1], nil
}
