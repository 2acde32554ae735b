package cli

import (
	"github.com/spf13/cobra"
)

// SetupRootCmd configures the root command with all subcommands.
func SetupRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "autoapply",
		Short: "Replay configured browser automation flows",
		Long: `autoapply runs declarative browser automation jobs from a YAML file.

Each job targets one URL and replays an ordered list of steps (fill, click,
select, upload, ...) with profile data rendered into every step.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(ValidateCmd())

	return rootCmd
}
