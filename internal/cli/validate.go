package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/casemover/internal/platform"
	"github.com/sdejongh/casemover/pkg/config"
	"github.com/sdejongh/casemover/pkg/models"
)

// normalizeInputPaths expands tildes and cleans the user-supplied paths,
// keeping UNC prefixes intact on Windows shares.
func normalizeInputPaths() {
	for _, p := range []*string{&moveFlags.Source, &moveFlags.Dest, &moveFlags.CaseIDFile} {
		if *p != "" {
			*p = platform.NormalizePath(platform.ExpandUser(*p))
		}
	}
}

// validateMoveFlags validates the move command flags
func validateMoveFlags() error {
	normalizeInputPaths()

	// Validate source exists
	sourceInfo, err := os.Stat(moveFlags.Source)
	if os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", moveFlags.Source)
	} else if err != nil {
		return fmt.Errorf("failed to access source path: %w", err)
	} else if !sourceInfo.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", moveFlags.Source)
	}

	// Check destination
	destInfo, err := os.Stat(moveFlags.Dest)
	if os.IsNotExist(err) {
		// Destination doesn't exist
		if moveFlags.CreateDest {
			// Create destination directory with parents
			if err := os.MkdirAll(moveFlags.Dest, 0755); err != nil {
				return fmt.Errorf("failed to create destination directory: %w", err)
			}
		} else {
			return fmt.Errorf("destination path does not exist: %s (use --create-dest to create it)", moveFlags.Dest)
		}
	} else if err != nil {
		return fmt.Errorf("failed to access destination path: %w", err)
	} else if !destInfo.IsDir() {
		return fmt.Errorf("destination path exists but is not a directory: %s", moveFlags.Dest)
	}

	// Validate CaseID file exists
	if _, err := os.Stat(moveFlags.CaseIDFile); os.IsNotExist(err) {
		return fmt.Errorf("CaseID file does not exist: %s", moveFlags.CaseIDFile)
	}

	// Validate paths are not identical
	sourceAbs, err := filepath.Abs(moveFlags.Source)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}

	destAbs, err := filepath.Abs(moveFlags.Dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	if sourceAbs == destAbs {
		return fmt.Errorf("source and destination cannot be the same: %s", sourceAbs)
	}

	// Validate paths are not nested: moving into a subtree of the source
	// would migrate folders into themselves
	if strings.HasPrefix(destAbs, sourceAbs+string(filepath.Separator)) {
		return fmt.Errorf("destination cannot be inside source directory")
	}
	if strings.HasPrefix(sourceAbs, destAbs+string(filepath.Separator)) {
		return fmt.Errorf("source cannot be inside destination directory")
	}

	// Validate collision policy
	validExists := map[string]bool{
		"":       true,
		"rename": true,
		"skip":   true,
	}
	if !validExists[moveFlags.OnDestExists] {
		return fmt.Errorf("invalid collision policy: %s (valid: rename, skip)", moveFlags.OnDestExists)
	}

	// Validate duplicates policy
	validDuplicates := map[string]bool{
		"":           true,
		"quarantine": true,
		"skip":       true,
		"move-all":   true,
	}
	if !validDuplicates[moveFlags.Duplicates] {
		return fmt.Errorf("invalid duplicates policy: %s (valid: quarantine, skip, move-all)", moveFlags.Duplicates)
	}

	// Validate matching strategy
	validStrategies := map[string]bool{
		"":          true,
		"auto":      true,
		"bucket":    true,
		"automaton": true,
	}
	if !validStrategies[moveFlags.Strategy] {
		return fmt.Errorf("invalid matching strategy: %s (valid: auto, bucket, automaton)", moveFlags.Strategy)
	}

	// Validate output format
	validOutputs := map[string]bool{
		"":      true,
		"human": true,
		"json":  true,
	}
	if !validOutputs[moveFlags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", moveFlags.Output)
	}

	return nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config, cmd *cobra.Command) error {
	// Collision policy
	if moveFlags.OnDestExists != "" {
		cfg.Move.OnDestExists = models.ExistsPolicy(moveFlags.OnDestExists)
	}

	// Duplicates policy
	if moveFlags.Duplicates != "" {
		cfg.Move.DuplicatesAction = models.DuplicatesPolicy(moveFlags.Duplicates)
	}

	// Matching strategy
	if moveFlags.Strategy != "" {
		cfg.Move.Strategy = models.MatcherStrategy(moveFlags.Strategy)
	}

	// Case sensitivity only when given, so the config default survives
	if cmd.Flags().Changed("case-sensitive") {
		cfg.Move.CaseSensitive = moveFlags.CaseSensitive
	}

	// Operation budget; an explicit 0 lifts a configured budget
	if cmd.Flags().Changed("max-moves") {
		cfg.Move.MaxOperations = moveFlags.MaxMoves
	}

	// Exclude patterns
	if len(moveFlags.Exclude) > 0 {
		cfg.Exclude = moveFlags.Exclude
	}

	// Bandwidth limit
	if moveFlags.Bandwidth != "" {
		limit, err := parseByteSize(moveFlags.Bandwidth)
		if err != nil {
			return fmt.Errorf("invalid bandwidth limit: %w", err)
		}
		cfg.Performance.BandwidthLimit = limit
	}

	// Output format
	if moveFlags.Output != "" {
		cfg.Output.Format = moveFlags.Output
	}

	// Progress bar
	if moveFlags.NoProgress {
		cfg.Output.Progress = false
	}

	// Logging overrides
	if moveFlags.LogFile != "" {
		cfg.Logging.File = moveFlags.LogFile
		cfg.Logging.Enabled = true
	}
	if moveFlags.LogFormat != "" {
		cfg.Logging.Format = moveFlags.LogFormat
	}
	if moveFlags.LogLevel != "" {
		cfg.Logging.Level = moveFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Verbose mode logs to stderr-level detail via the log level
	if globalFlags.Verbose && cfg.Logging.Level != "debug" {
		cfg.Logging.Level = "debug"
	}

	return nil
}

// createOperation creates a migration operation from configuration
func createOperation(cfg *config.Config) (*models.MigrationOperation, error) {
	reportPath := moveFlags.Report
	if reportPath == "" {
		reportPath = fmt.Sprintf("casemover_report_%s.csv", time.Now().Format("20060102_150405"))
	}

	operation := &models.MigrationOperation{
		ID:               uuid.New().String(),
		SourcePath:       moveFlags.Source,
		DestPath:         moveFlags.Dest,
		CaseIDFile:       moveFlags.CaseIDFile,
		CaseIDColumn:     moveFlags.Column,
		ReportPath:       reportPath,
		ResumeReport:     moveFlags.ResumeReport,
		DryRun:           moveFlags.DryRun,
		MaxOperations:    cfg.Move.MaxOperations,
		MaxFolders:       moveFlags.MaxFolders,
		CaseIDLimit:      moveFlags.CaseIDLimit,
		ExcludePatterns:  cfg.Exclude,
		OnDestExists:     cfg.Move.OnDestExists,
		DuplicatesAction: cfg.Move.DuplicatesAction,
		CaseSensitive:    cfg.Move.CaseSensitive,
		Strategy:         cfg.Move.Strategy,
		BandwidthLimit:   cfg.Performance.BandwidthLimit,
		BufferSize:       cfg.Performance.BufferSize,
		CreatedAt:        time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// parseByteSize parses a human byte-rate value such as "500K", "10M" or
// "1G". A bare number means bytes per second.
func parseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}

	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a byte size", s)
	}
	if value < 0 {
		return 0, fmt.Errorf("byte size cannot be negative")
	}

	return value * multiplier, nil
}
