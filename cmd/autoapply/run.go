package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autoapply/autoapply/internal/config"
	"github.com/autoapply/autoapply/internal/runner"
)

// RunCmd creates the run command.
func RunCmd() *cobra.Command {
	var (
		headless   bool
		noHeadless bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Execute every job defined in a configuration file",
		Long: `Execute every job defined in the configuration file, in order.

Examples:
  autoapply run jobs.yaml                 # run all jobs
  autoapply run jobs.yaml --dry-run       # render and print steps only
  autoapply run jobs.yaml --no-headless   # watch the browser work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if headless && noHeadless {
				return &ParamError{Err: fmt.Errorf("--headless and --no-headless are mutually exclusive")}
			}

			cfg, err := config.Load(args[0])
			if err != nil {
				return &ParamError{Err: fmt.Errorf("invalid configuration: %w", err)}
			}

			var opts []runner.Option
			if headless {
				opts = append(opts, runner.WithHeadless(true))
			}
			if noHeadless {
				opts = append(opts, runner.WithHeadless(false))
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runner.New(cfg, opts...).Run(ctx, dryRun)
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "force headless mode regardless of the configuration")
	cmd.Flags().BoolVar(&noHeadless, "no-headless", false, "force a visible browser regardless of the configuration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render and print the steps without running the browser")

	return cmd
}
