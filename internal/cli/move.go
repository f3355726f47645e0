package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/pkg/config"
	"github.com/sdejongh/casemover/pkg/history"
	"github.com/sdejongh/casemover/pkg/logging"
	"github.com/sdejongh/casemover/pkg/migrate"
	"github.com/sdejongh/casemover/pkg/models"
	"github.com/sdejongh/casemover/pkg/output"
	"github.com/sdejongh/casemover/pkg/runlock"
)

// MoveFlags holds move command flags
type MoveFlags struct {
	Source        string
	Dest          string
	CaseIDFile    string
	Column        string
	DryRun        bool
	CreateDest    bool
	Yes           bool
	MaxMoves      int
	MaxFolders    int
	CaseIDLimit   int
	Exclude       []string
	OnDestExists  string
	Duplicates    string
	ResumeReport  string
	CaseSensitive bool
	Strategy      string
	Report        string
	Bandwidth     string
	Output        string
	NoProgress    bool
	NoHistory     bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var moveFlags MoveFlags

// NewMoveCommand creates the move command
func NewMoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move matching case folders to a destination",
		Long: `Move every folder under the source directory whose name contains one of
the CaseIDs to the destination directory. Folders of a CaseID with several
matches are handled by the duplicates policy, name collisions by the
collision policy, and a CSV report records every decision.`,
		RunE: runMove,
	}

	// Required flags
	cmd.Flags().StringVarP(&moveFlags.Source, "source", "s", "", "source directory path (required)")
	cmd.Flags().StringVarP(&moveFlags.Dest, "dest", "d", "", "destination directory path (required)")
	cmd.Flags().StringVarP(&moveFlags.CaseIDFile, "caseids", "i", "", "CaseID list: .txt, .csv or .xlsx file (required)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("dest")
	cmd.MarkFlagRequired("caseids")

	// Optional flags
	cmd.Flags().StringVar(&moveFlags.Column, "column", "", "column holding CaseIDs in tabular files (name or letter)")
	cmd.Flags().BoolVar(&moveFlags.DryRun, "dry-run", false, "simulate only, move nothing")
	cmd.Flags().BoolVar(&moveFlags.CreateDest, "create-dest", false, "create destination directory if it doesn't exist")
	cmd.Flags().BoolVarP(&moveFlags.Yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().IntVar(&moveFlags.MaxMoves, "max-moves", 0, "stop after this many move operations (0 = unlimited)")
	cmd.Flags().IntVar(&moveFlags.MaxFolders, "max-folders", 0, "scan at most this many folders (0 = unlimited)")
	cmd.Flags().IntVar(&moveFlags.CaseIDLimit, "caseid-limit", 0, "load at most this many CaseIDs (0 = unlimited)")
	cmd.Flags().StringSliceVar(&moveFlags.Exclude, "exclude", []string{}, "glob or substring patterns to exclude")
	cmd.Flags().StringVar(&moveFlags.OnDestExists, "on-dest-exists", "", "collision policy: rename, skip (default from config: rename)")
	cmd.Flags().StringVar(&moveFlags.Duplicates, "duplicates", "", "multi-match policy: quarantine, skip, move-all (default from config: quarantine)")
	cmd.Flags().StringVar(&moveFlags.ResumeReport, "resume-from-report", "", "skip folders already moved per a previous report")
	cmd.Flags().BoolVar(&moveFlags.CaseSensitive, "case-sensitive", false, "match CaseIDs case-sensitively")
	cmd.Flags().StringVar(&moveFlags.Strategy, "strategy", "", "matching strategy: auto, bucket, automaton (default from config: auto)")
	cmd.Flags().StringVar(&moveFlags.Report, "report", "", "report file path (default: casemover_report_<timestamp>.csv)")
	cmd.Flags().StringVarP(&moveFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit for copy fallbacks (e.g. \"10M\", \"1G\")")
	cmd.Flags().StringVarP(&moveFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().BoolVar(&moveFlags.NoProgress, "no-progress", false, "disable the progress bar")
	cmd.Flags().BoolVar(&moveFlags.NoHistory, "no-history", false, "don't record this run in the history ledger")

	// Logging flags
	cmd.Flags().StringVar(&moveFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&moveFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&moveFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	code, err := executeMove(cmd)
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}

// executeMove runs the move command and returns the process exit code. It
// returns an error only for validation failures, which cobra reports on the
// usual error path; everything past the confirmation maps to an exit code.
func executeMove(cmd *cobra.Command) (int, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateMoveFlags(); err != nil {
		return 0, err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cfg, cmd); err != nil {
		return 0, err
	}

	// Create the migration operation
	op, err := createOperation(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration operation: %w", err)
	}

	quiet := cfg.Output.Quiet && cfg.Output.Format != "json"
	if !quiet && cfg.Output.Format != "json" {
		printBanner(cmd.OutOrStdout(), op)
	}

	// Confirmation prompt. Dry runs touch nothing, so they never ask.
	if !moveFlags.Yes && !op.DryRun {
		ok, err := confirmProceed(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return 0, err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing moved.")
			return 0, nil
		}
	}

	// One live migration per destination at a time.
	if !op.DryRun {
		lock, err := runlock.Acquire(op.DestPath)
		if err != nil {
			return 0, err
		}
		defer lock.Release()
	}

	// Create logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return 0, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Open the run ledger, best-effort
	var store *history.Store
	if cfg.History.Enabled && !moveFlags.NoHistory {
		store, err = openHistory(cfg)
		if err != nil {
			logger.Warn(ctx, "history ledger unavailable", logging.Fields{
				"reason": err.Error(),
			})
		} else {
			defer store.Close()
		}
	}

	// Create output formatter
	formatter := createFormatter(cfg)

	events := migrate.Events{
		Started: func(folders, ids, matches int) {
			if quiet {
				return
			}
			formatter.Start(os.Stdout, output.StartInfo{
				SourcePath:     op.SourcePath,
				DestPath:       op.DestPath,
				DryRun:         op.DryRun,
				FoldersScanned: folders,
				CaseIDsLoaded:  ids,
				Matches:        matches,
			})
		},
		Outcome: func(current, total int, outcome models.MoveOutcome) {
			if quiet {
				return
			}
			formatter.Outcome(outcome, current, total)
		},
	}

	// Run the migration
	runner := migrate.NewRunner(logger, store, events)
	summary, err := runner.Run(ctx, op)
	if err != nil {
		formatter.Error(err)
		return models.RunFailed.ExitCode(), nil
	}

	if !quiet {
		formatter.Complete(summary)
	}
	return summary.Status.ExitCode(), nil
}

// printBanner echoes the run parameters before the confirmation prompt.
func printBanner(w io.Writer, op *models.MigrationOperation) {
	mode := "LIVE"
	if op.DryRun {
		mode = "DRY RUN"
	}

	fmt.Fprintf(w, "Case folder migration (%s)\n", mode)
	fmt.Fprintf(w, "  Source:       %s\n", op.SourcePath)
	fmt.Fprintf(w, "  Destination:  %s\n", op.DestPath)
	if op.CaseIDColumn != "" {
		fmt.Fprintf(w, "  CaseID file:  %s (column %s)\n", op.CaseIDFile, op.CaseIDColumn)
	} else {
		fmt.Fprintf(w, "  CaseID file:  %s\n", op.CaseIDFile)
	}
	fmt.Fprintf(w, "  On collision: %s\n", op.OnDestExists)
	fmt.Fprintf(w, "  Duplicates:   %s\n", op.DuplicatesAction)
	if len(op.ExcludePatterns) > 0 {
		fmt.Fprintf(w, "  Exclude:      %s\n", strings.Join(op.ExcludePatterns, ", "))
	}
	if op.ResumeReport != "" {
		fmt.Fprintf(w, "  Resume from:  %s\n", op.ResumeReport)
	}
	if op.MaxOperations > 0 {
		fmt.Fprintf(w, "  Budget:       %d operations\n", op.MaxOperations)
	}
	if op.ReportPath != "" {
		fmt.Fprintf(w, "  Report:       %s\n", op.ReportPath)
	}
	fmt.Fprintln(w)
}

// confirmProceed asks for confirmation and treats anything but y/yes as no.
func confirmProceed(r io.Reader, w io.Writer) (bool, error) {
	fmt.Fprint(w, "Proceed? [y/N]: ")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// createFormatter selects the output formatter from configuration
func createFormatter(cfg *config.Config) output.Formatter {
	switch cfg.Output.Format {
	case "json":
		return output.NewJSONFormatter()
	default:
		if cfg.Output.Progress {
			return output.NewProgressFormatter()
		}
		return output.NewHumanFormatter()
	}
}

// createLogger creates a logger based on configuration
func createLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	// Without a log file there is nothing to write to
	if cfg.File == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch cfg.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Level),
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}

// openHistory opens the run ledger at the configured or default location.
func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}
