package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Ctrl-C cancels the root context; the engine stops between matches,
	// finishes the report and exits with the interrupted status.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "casemover",
		Short: "Case folder migration utility",
		Long: `casemover migrates case folders into a destination directory by matching
folder names against a list of CaseIDs from a spreadsheet or text file.
Collisions, duplicate CaseIDs and re-runs are handled by explicit policies,
and every decision is recorded in a CSV report.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", cli.Version, cli.Commit, cli.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cli.AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(cli.NewMoveCommand())
	rootCmd.AddCommand(cli.NewMatchCommand())
	rootCmd.AddCommand(cli.NewQuarantineCommand())
	rootCmd.AddCommand(cli.NewHistoryCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())
	rootCmd.AddCommand(cli.NewTUICommand())

	return rootCmd.ExecuteContext(ctx)
}
