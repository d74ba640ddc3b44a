package commands

import (
	"context"
	"text/tabwriter"

	"github.com/Prachi290-pr/language-translator/internal/session"

	"github.com/spf13/cobra"
)

// LanguagesCommand returns the command that lists the supported languages
func LanguagesCommand(r *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages the translation service supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLanguages(cmd.Context(), r)
		},
	}
}

func runLanguages(ctx context.Context, r *Runtime) error {
	catalog, err := session.NewCatalogLoader(r.Translator, r.Logger).Load(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(r.Out, 0, 4, 2, ' ', 0)
	for _, code := range catalog.Codes() {
		name, _ := catalog.Name(code)
		_, _ = w.Write([]byte(code + "\t" + name + "\n"))
	}
	return w.Flush()
}
