package commands

import (
	"github.com/Prachi290-pr/language-translator/internal/version"

	"github.com/spf13/cobra"
)

// VersionCommand returns the command that prints build information
func VersionCommand(r *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			r.printf("%s\n", version.Get("translator"))
		},
	}
}
