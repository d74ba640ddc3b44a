package commands

import (
	"context"
	"strings"

	"github.com/Prachi290-pr/language-translator/internal/services"

	"github.com/spf13/cobra"
)

// SpeakCommand returns the command that reads text aloud without translating it
func SpeakCommand(r *Runtime) *cobra.Command {
	var lang string
	var rate float64

	cmd := &cobra.Command{
		Use:   "speak TEXT...",
		Short: "Speak text with the configured speech engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeak(cmd.Context(), r, lang, rate, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Language of the text (default: configured target language)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Speech rate between 0.5 and 2.0 (default from configuration)")

	return cmd
}

// runSpeak plays text through a session whose translator passes text through unchanged
func runSpeak(ctx context.Context, r *Runtime, lang string, rate float64, text string) error {
	s, err := r.newSession(ctx, services.NewNoopTranslationService())
	if err != nil {
		return err
	}
	defer s.Close()

	if lang != "" {
		s.SetSource(lang)
		s.SetTarget(lang)
	}
	if rate != 0 {
		if _, err := s.SetRate(rate); err != nil {
			return err
		}
	}
	s.SetInputText(text)
	if _, err := s.Submit(ctx); err != nil {
		r.report(s, err)
		return err
	}
	_ = s.Notifications()

	if err := s.Play(ctx); err != nil {
		r.report(s, err)
		return err
	}
	waitForPlayback(ctx, s)
	r.flushNotifications(s)
	return nil
}
