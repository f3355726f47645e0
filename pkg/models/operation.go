package models

import (
	"time"
)

// ExistsPolicy defines what happens when the destination name is already taken
type ExistsPolicy string

const (
	// ExistsRename probes name_1, name_2, ... until a free name is found
	ExistsRename ExistsPolicy = "rename"
	// ExistsSkip leaves the folder in place and records SKIPPED_EXISTS
	ExistsSkip ExistsPolicy = "skip"
)

// DuplicatesPolicy defines how folders of a multi-match CaseID are handled
type DuplicatesPolicy string

const (
	// DuplicatesQuarantine moves them under dest/_DUPLICATES/<case_id>/
	DuplicatesQuarantine DuplicatesPolicy = "quarantine"
	// DuplicatesSkip leaves them in place and records SKIPPED_DUPLICATE
	DuplicatesSkip DuplicatesPolicy = "skip"
	// DuplicatesMoveAll moves every match into the destination root
	DuplicatesMoveAll DuplicatesPolicy = "move-all"
)

// MatcherStrategy selects the substring-matching algorithm
type MatcherStrategy string

const (
	// StrategyAuto prefers the automaton and falls back to bucket
	StrategyAuto MatcherStrategy = "auto"
	// StrategyBucket forces the length-bucket scan
	StrategyBucket MatcherStrategy = "bucket"
	// StrategyAutomaton requests the Aho-Corasick automaton (falls back, never fails)
	StrategyAutomaton MatcherStrategy = "automaton"
)

// MigrationOperation represents one migration run's configuration
type MigrationOperation struct {
	ID               string
	SourcePath       string
	DestPath         string
	CaseIDFile       string
	CaseIDColumn     string
	ReportPath       string
	ResumeReport     string
	DryRun           bool
	MaxOperations    int // 0 = unlimited
	MaxFolders       int // 0 = unlimited, caps the scan
	CaseIDLimit      int // 0 = unlimited, caps the identifier list
	ExcludePatterns  []string
	OnDestExists     ExistsPolicy
	DuplicatesAction DuplicatesPolicy
	CaseSensitive    bool
	Strategy         MatcherStrategy
	BandwidthLimit   int64 // bytes per second for the copy fallback, 0 = unlimited
	BufferSize       int
	CreatedAt        time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
}

// Validate checks if the operation configuration is valid
func (op *MigrationOperation) Validate() error {
	if op.SourcePath == "" {
		return &ValidationError{Field: "SourcePath", Message: "source path is required"}
	}
	if op.DestPath == "" {
		return &ValidationError{Field: "DestPath", Message: "destination path is required"}
	}
	if op.MaxOperations < 0 {
		return &ValidationError{Field: "MaxOperations", Message: "operation budget cannot be negative"}
	}
	if op.MaxFolders < 0 {
		return &ValidationError{Field: "MaxFolders", Message: "folder cap cannot be negative"}
	}
	if op.CaseIDLimit < 0 {
		return &ValidationError{Field: "CaseIDLimit", Message: "CaseID limit cannot be negative"}
	}
	switch op.OnDestExists {
	case ExistsRename, ExistsSkip:
	default:
		return &ValidationError{Field: "OnDestExists", Message: "must be 'rename' or 'skip'"}
	}
	switch op.DuplicatesAction {
	case DuplicatesQuarantine, DuplicatesSkip, DuplicatesMoveAll:
	default:
		return &ValidationError{Field: "DuplicatesAction", Message: "must be 'quarantine', 'skip', or 'move-all'"}
	}
	switch op.Strategy {
	case StrategyAuto, StrategyBucket, StrategyAutomaton:
	default:
		return &ValidationError{Field: "Strategy", Message: "must be 'auto', 'bucket', or 'automaton'"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
