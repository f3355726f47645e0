package output

import (
	"io"

	"github.com/sdejongh/casemover/pkg/models"
)

// StartInfo describes the batch about to be processed
type StartInfo struct {
	SourcePath     string
	DestPath       string
	DryRun         bool
	FoldersScanned int
	CaseIDsLoaded  int
	Matches        int
}

// Formatter defines the interface for run output
// Implementations include human-readable, progress bar, and JSON formatters
type Formatter interface {
	// Start announces the run once matching is done, before the first move
	Start(writer io.Writer, info StartInfo) error

	// Outcome reports one processed match
	Outcome(outcome models.MoveOutcome, current, total int) error

	// Complete finalizes output and displays the run summary
	Complete(summary *models.RunSummary) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
