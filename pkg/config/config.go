package config

import (
	"github.com/sdejongh/casemover/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Move        MoveConfig        `yaml:"move"`
	Exclude     []string          `yaml:"exclude"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	History     HistoryConfig     `yaml:"history"`
}

// MoveConfig holds the default move policies
type MoveConfig struct {
	OnDestExists     models.ExistsPolicy     `yaml:"on_dest_exists"`
	DuplicatesAction models.DuplicatesPolicy `yaml:"duplicates_action"`
	Strategy         models.MatcherStrategy  `yaml:"strategy"`
	CaseSensitive    bool                    `yaml:"case_sensitive"`
	MaxOperations    int                     `yaml:"max_operations"` // 0 = unlimited
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize     int   `yaml:"buffer_size"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"` // bytes/sec, 0 = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = disabled)
}

// HistoryConfig holds run-ledger settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Database path (empty = default location)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Move: MoveConfig{
			OnDestExists:     models.ExistsRename,
			DuplicatesAction: models.DuplicatesQuarantine,
			Strategy:         models.StrategyAuto,
			CaseSensitive:    false,
			MaxOperations:    0,
		},
		Exclude: []string{},
		Performance: PerformanceConfig{
			BufferSize:     65536,
			BandwidthLimit: 0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: false,
			Format:  "text",
			Level:   "info",
			File:    "",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validExists := map[models.ExistsPolicy]bool{models.ExistsRename: true, models.ExistsSkip: true}
	if !validExists[c.Move.OnDestExists] {
		return &models.ValidationError{
			Field:   "move.on_dest_exists",
			Message: "must be 'rename' or 'skip'",
		}
	}

	validDuplicates := map[models.DuplicatesPolicy]bool{
		models.DuplicatesQuarantine: true,
		models.DuplicatesSkip:       true,
		models.DuplicatesMoveAll:    true,
	}
	if !validDuplicates[c.Move.DuplicatesAction] {
		return &models.ValidationError{
			Field:   "move.duplicates_action",
			Message: "must be 'quarantine', 'skip', or 'move-all'",
		}
	}

	validStrategies := map[models.MatcherStrategy]bool{
		models.StrategyAuto:      true,
		models.StrategyBucket:    true,
		models.StrategyAutomaton: true,
	}
	if !validStrategies[c.Move.Strategy] {
		return &models.ValidationError{
			Field:   "move.strategy",
			Message: "must be 'auto', 'bucket', or 'automaton'",
		}
	}

	if c.Move.MaxOperations < 0 {
		return &models.ValidationError{
			Field:   "move.max_operations",
			Message: "must not be negative",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}
