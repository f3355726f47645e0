package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/pkg/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var limit int
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent migration runs",
		Long:  `List the most recent migration runs recorded in the history ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			path := dbPath
			if path == "" {
				cfg, err := loadConfig()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				path = cfg.History.Path
			}
			if path == "" {
				var err error
				path, err = history.DefaultPath()
				if err != nil {
					return err
				}
			}

			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}

			printHistory(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path (default from config)")

	return cmd
}

func printHistory(cmd *cobra.Command, runs []*history.Run) {
	w := cmd.OutOrStdout()

	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-8s  %-21s  %5s  %5s  %5s  %5s\n",
		"STARTED", "RUN", "STATUS", "MOVED", "QUAR", "SKIP", "ERR")
	for _, run := range runs {
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		status := run.Status
		if run.DryRun {
			status += " (dry)"
		}
		fmt.Fprintf(w, "%-16s  %-8s  %-21s  %5d  %5d  %5d  %5d\n",
			run.StartedAt.Format("2006-01-02 15:04"), id, status,
			run.Moved, run.Quarantined, run.Skipped, run.Errors)
		fmt.Fprintf(w, "    %s -> %s\n", run.Source, run.Dest)
	}
}
