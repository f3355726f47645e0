package models

import (
	"time"
)

// Statistics maps each StatusCode to the number of outcomes that reached it.
// Every status is present from the start so display code never probes for keys.
type Statistics map[StatusCode]int

// NewStatistics returns a Statistics with every status at zero
func NewStatistics() Statistics {
	stats := make(Statistics, len(AllStatuses()))
	for _, s := range AllStatuses() {
		stats[s] = 0
	}
	return stats
}

// Record increments the counter for one produced outcome
func (st Statistics) Record(s StatusCode) {
	st[s]++
}

// Operations returns the number of outcomes that consumed budget
func (st Statistics) Operations() int {
	n := 0
	for s, c := range st {
		if s.IsOperation() {
			n += c
		}
	}
	return n
}

// Moved returns the number of folders placed (or simulated) in the destination root
func (st Statistics) Moved() int {
	return st[StatusSuccess] + st[StatusSuccessRenamed] + st[StatusDryRun] + st[StatusDryRunRenamed]
}

// Quarantined returns the number of folders routed (or simulated) into the duplicates area
func (st Statistics) Quarantined() int {
	return st[StatusQuarantined] + st[StatusQuarantinedRenamed] +
		st[StatusDryRunQuarantine] + st[StatusDryRunQuarantineRenamed]
}

// Skipped returns the number of outcomes with a skip reason
func (st Statistics) Skipped() int {
	n := 0
	for s, c := range st {
		if s.IsSkip() {
			n += c
		}
	}
	return n
}

// Errors returns the number of failed moves
func (st Statistics) Errors() int {
	return st[StatusError]
}

// Total returns the number of outcomes produced
func (st Statistics) Total() int {
	n := 0
	for _, c := range st {
		n += c
	}
	return n
}

// Clone returns an independent copy, for reporting across goroutine boundaries
func (st Statistics) Clone() Statistics {
	out := make(Statistics, len(st))
	for s, c := range st {
		out[s] = c
	}
	return out
}

// RunStatus represents the overall result of a migration run
type RunStatus string

const (
	// RunCompleted indicates the batch finished without move errors
	RunCompleted RunStatus = "completed"
	// RunCompletedWithErrors indicates the batch finished but some moves failed
	RunCompletedWithErrors RunStatus = "completed-with-errors"
	// RunInterrupted indicates the run was cancelled between matches
	RunInterrupted RunStatus = "interrupted"
	// RunFailed indicates a precondition failure before any move
	RunFailed RunStatus = "failed"
)

// ExitCode returns the process exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case RunCompleted:
		return 0
	case RunCompletedWithErrors:
		return 2
	case RunInterrupted:
		return 130
	case RunFailed:
		return 1
	default:
		return 1
	}
}

// RunSummary represents the results of one migration run
type RunSummary struct {
	// Operation details
	RunID            string
	SourcePath       string
	DestPath         string
	DryRun           bool
	DuplicatesAction DuplicatesPolicy
	OnDestExists     ExistsPolicy

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Volume
	FoldersScanned int
	CaseIDsLoaded  int
	MatchesFound   int
	UnmatchedIDs   []string

	// Outcome counters
	Stats Statistics

	// True when the operation budget stopped the batch early
	EarlyStop bool

	// Where the CSV report was written ("" for analysis-only runs)
	ReportPath string

	// Overall status
	Status RunStatus
}
