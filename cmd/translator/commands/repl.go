package commands

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Prachi290-pr/language-translator/internal/session"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const replHelp = `Type text to translate it. Commands:
  :from CODE   set the source language
  :to CODE     set the target language
  :swap        swap languages and move the translation into the input
  :listen      speak into the microphone, then translate what was heard
  :play        speak the translation
  :pause       pause speech
  :resume      resume speech
  :stop        stop speech
  :rate N      set the speech rate (0.5 to 2.0)
  :alt         show alternative translations
  :langs       list languages
  :status      show the session state
  :help        show this help
  :quit        exit
`

// ReplCommand returns the interactive session command
func ReplCommand(r *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive translation session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd.Context(), r, os.Stdin, os.Stdout)
		},
	}
}

// lineReader reads one line of user input
type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
}

func (s *scannerReader) ReadLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func runRepl(ctx context.Context, r *Runtime, in *os.File, out *os.File) error {
	var reader lineReader
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer func() { _ = term.Restore(fd, oldState) }()

		terminal := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, "> ")
		reader = terminal
		r.Out = terminal
	} else {
		reader = &scannerReader{scanner: bufio.NewScanner(in)}
		r.Out = out
	}

	s, err := r.newSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	repl := &repl{r: r, s: s}
	repl.banner()
	return repl.loop(ctx, reader)
}

// repl executes interactive commands against one session
type repl struct {
	r *Runtime
	s *session.Session
}

func (p *repl) banner() {
	pair := p.s.Snapshot().Pair
	p.r.printf("Translating %s to %s. Type :help for commands.\n", p.describe(pair.Source), p.describe(pair.Target))
	p.r.flushNotifications(p.s)
}

func (p *repl) loop(ctx context.Context, reader lineReader) error {
	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := p.execute(ctx, line); quit {
			return nil
		}
	}
}

func (p *repl) describe(code string) string {
	return p.s.Catalog().DisplayName(code) + " (" + code + ")"
}

// execute runs one line of input and reports whether the session should end
func (p *repl) execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		p.s.SetInputText(line)
		p.translate(ctx)
		return false
	}

	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]
	switch command {
	case ":quit", ":q", ":exit":
		_ = p.s.Stop(ctx)
		return true
	case ":help":
		p.r.printf("%s", replHelp)
	case ":from", ":to":
		p.setLanguage(command, args)
	case ":swap":
		pair := p.s.Swap()
		p.r.printf("Translating %s to %s.\n", p.describe(pair.Source), p.describe(pair.Target))
		if input := p.s.Snapshot().Input; input != "" {
			p.r.printf("Input: %s\n", input)
		}
	case ":listen":
		p.listen(ctx)
	case ":play":
		p.r.report(p.s, p.s.Play(ctx))
	case ":pause":
		p.r.report(p.s, p.s.Pause(ctx))
	case ":resume":
		p.r.report(p.s, p.s.Resume(ctx))
	case ":stop":
		p.r.report(p.s, p.s.Stop(ctx))
	case ":rate":
		p.setRate(args)
	case ":alt":
		p.alternates()
	case ":langs":
		if err := runLanguages(ctx, p.r); err != nil {
			p.r.report(p.s, err)
		}
	case ":status":
		p.status()
	default:
		p.r.printf("Unknown command %s. Type :help for commands.\n", command)
	}
	return false
}

func (p *repl) translate(ctx context.Context) {
	result, err := p.s.Submit(ctx)
	if err != nil {
		p.r.report(p.s, err)
		return
	}
	// The printed translation is the success message
	_ = p.s.Notifications()
	p.r.printResult(result, false)
}

func (p *repl) setLanguage(command string, args []string) {
	if len(args) != 1 {
		p.r.printf("Usage: %s CODE\n", command)
		return
	}
	code := args[0]
	if catalog := p.s.Catalog(); catalog.Len() > 0 && !catalog.Has(code) {
		p.r.printf("! %s is not in the language list\n", code)
	}
	if command == ":from" {
		p.s.SetSource(code)
	} else {
		p.s.SetTarget(code)
	}
	pair := p.s.Snapshot().Pair
	p.r.printf("Translating %s to %s.\n", p.describe(pair.Source), p.describe(pair.Target))
}

func (p *repl) listen(ctx context.Context) {
	outcome, err := p.s.StartListening(ctx)
	if err != nil {
		p.r.report(p.s, err)
		return
	}
	p.r.printf("Listening...\n")

	select {
	case err = <-outcome:
	case <-ctx.Done():
		p.s.StopListening()
		return
	}
	if err != nil {
		p.r.report(p.s, err)
		return
	}
	_ = p.s.Notifications()
	p.r.printf("Heard: %s\n", p.s.Snapshot().Input)
	p.translate(ctx)
}

func (p *repl) setRate(args []string) {
	if len(args) != 1 {
		p.r.printf("Rate is %.1f\n", p.s.Snapshot().Rate)
		return
	}
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		p.r.printf("! %s is not a number\n", args[0])
		return
	}
	rate, err := p.s.SetRate(value)
	if err != nil {
		p.r.report(p.s, err)
		return
	}
	p.r.printf("Rate is %.1f\n", rate)
}

func (p *repl) alternates() {
	result := p.s.Snapshot().Result
	if result == nil {
		p.r.printf("Nothing translated yet.\n")
		return
	}
	if len(result.Alternates) == 0 {
		p.r.printf("No alternatives.\n")
		return
	}
	for i, alt := range result.Alternates {
		p.r.printf("  %d. %s\n", i+1, alt)
	}
}

func (p *repl) status() {
	snapshot := p.s.Snapshot()
	p.r.printf("%s to %s, playback %s, rate %.1f\n", snapshot.Pair.Source, snapshot.Pair.Target, snapshot.Playback, snapshot.Rate)
	if snapshot.Input != "" {
		p.r.printf("Input: %s\n", snapshot.Input)
	}
	if snapshot.Result != nil {
		p.r.printf("Translation: %s\n", snapshot.Result.Primary)
	}
	p.r.flushNotifications(p.s)
}
