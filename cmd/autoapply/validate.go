package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoapply/autoapply/internal/config"
)

// ValidateCmd creates the validate command.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Check a configuration file without touching the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return &ParamError{Err: fmt.Errorf("invalid configuration: %w", err)}
			}

			steps := 0
			for _, job := range cfg.Jobs {
				steps += len(job.Steps)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d job(s), %d step(s)\n", args[0], len(cfg.Jobs), steps)
			return nil
		},
	}
}
