package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "painel",
		Short:   "Financial dashboard over the exported spreadsheet data",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			LoadEnvFile()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSummaryCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newOAuthInitCommand())

	return rootCmd
}
