package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// TranslateCommand returns the one-shot translation command
func TranslateCommand(r *Runtime) *cobra.Command {
	var from, to string
	var speak, alternates bool

	cmd := &cobra.Command{
		Use:   "translate TEXT...",
		Short: "Translate text",
		Long: `Translate text from one language to another.

The primary translation is printed first. Use --alternates to also print
the alternative translations, and --speak to read the translation aloud.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), r, translateOptions{
				from:       from,
				to:         to,
				text:       strings.Join(args, " "),
				speak:      speak,
				alternates: alternates,
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source language code (default from configuration)")
	cmd.Flags().StringVar(&to, "to", "", "Target language code (default from configuration)")
	cmd.Flags().BoolVar(&speak, "speak", false, "Speak the translation")
	cmd.Flags().BoolVar(&alternates, "alternates", false, "Print alternative translations")

	return cmd
}

type translateOptions struct {
	from, to   string
	text       string
	speak      bool
	alternates bool
}

func runTranslate(ctx context.Context, r *Runtime, opts translateOptions) error {
	s, err := r.newSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.from != "" {
		s.SetSource(opts.from)
	}
	if opts.to != "" {
		s.SetTarget(opts.to)
	}
	s.SetInputText(opts.text)

	result, err := s.Submit(ctx)
	if err != nil {
		r.report(s, err)
		return err
	}
	r.printResult(result, opts.alternates)
	// The success notice is for interactive use
	_ = s.Notifications()

	if opts.speak {
		if err := s.Play(ctx); err != nil {
			r.report(s, err)
			return err
		}
		waitForPlayback(ctx, s)
		r.flushNotifications(s)
	}
	return nil
}
