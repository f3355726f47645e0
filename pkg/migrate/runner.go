// Package migrate wires the loading, scanning, matching, moving and
// reporting stages into one migration run.
//
// The Runner owns the run lifecycle: analysis first (read-only), then the
// move batch with streamed report rows, then the summary. Interfaces to the
// outside world are narrow: a logger, an optional history ledger and two
// optional event hooks for live display.
package migrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sdejongh/casemover/pkg/caseids"
	"github.com/sdejongh/casemover/pkg/history"
	"github.com/sdejongh/casemover/pkg/logging"
	"github.com/sdejongh/casemover/pkg/match"
	"github.com/sdejongh/casemover/pkg/models"
	"github.com/sdejongh/casemover/pkg/move"
	"github.com/sdejongh/casemover/pkg/ratelimit"
	"github.com/sdejongh/casemover/pkg/report"
	"github.com/sdejongh/casemover/pkg/scan"
)

// Events carries optional hooks invoked while a run progresses. Both hooks
// run on the Runner's goroutine, so they must not block for long.
type Events struct {
	// Started fires once analysis is complete, just before the first move.
	Started func(foldersScanned, caseIDsLoaded, matches int)

	// Outcome fires for each produced outcome in batch order.
	Outcome func(current, total int, outcome models.MoveOutcome)
}

// Analysis is the read-only first half of a run: everything needed to know
// what would move, before anything moves.
type Analysis struct {
	// CaseIDs is the load result, identifiers deduplicated in input order.
	CaseIDs *caseids.LoadResult

	// FoldersScanned counts the folders found below the source root.
	FoldersScanned int

	// Truncated reports that the folder cap stopped the scan early.
	Truncated bool

	// Warnings lists the subtrees the scan had to skip.
	Warnings []scan.Warning

	// ByID maps every identifier to its matched folders, in scan order.
	ByID map[string][]models.FolderRecord

	// Matches is the flattened engine input: identifier input order first,
	// folder order within each identifier.
	Matches []models.Match

	// DuplicateIDs flags identifiers that matched more than one folder.
	DuplicateIDs map[string]bool

	// UnmatchedIDs lists identifiers with no match, in input order.
	UnmatchedIDs []string

	// Strategy is the matcher implementation actually used.
	Strategy models.MatcherStrategy
}

// Runner executes migration operations end to end.
type Runner struct {
	logger  logging.Logger
	history *history.Store
	events  Events
}

// NewRunner creates a Runner. logger may be nil for silent operation and
// hist may be nil to skip the run ledger.
func NewRunner(logger logging.Logger, hist *history.Store, events Events) *Runner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{
		logger:  logger,
		history: hist,
		events:  events,
	}
}

// Analyze performs the read-only half of a run: it loads the identifiers,
// scans the source tree and matches folder names, touching nothing. Only the
// input and matching fields of op are consulted, so analysis-only callers
// need no destination or move policies.
func (r *Runner) Analyze(ctx context.Context, op *models.MigrationOperation) (*Analysis, error) {
	loaded, err := caseids.Load(op.CaseIDFile, op.CaseIDColumn, op.CaseIDLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load CaseIDs from %s: %w", op.CaseIDFile, err)
	}

	r.logger.Info(ctx, "loaded CaseIDs", logging.Fields{
		"file":   loaded.Source,
		"format": loaded.Format,
		"count":  len(loaded.IDs),
	})
	if len(loaded.Duplicated) > 0 {
		r.logger.Info(ctx, "input contains duplicate CaseIDs, keeping first occurrence", logging.Fields{
			"count": len(loaded.Duplicated),
		})
		r.logger.Debug(ctx, "duplicated CaseIDs", logging.Fields{
			"ids": strings.Join(loaded.Duplicated, ", "),
		})
	}

	scanned, err := scan.Scan(ctx, op.SourcePath, scan.Options{MaxFolders: op.MaxFolders})
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	for _, w := range scanned.Warnings {
		r.logger.Warn(ctx, "skipping unreadable subtree", logging.Fields{
			"path":   w.Path,
			"reason": w.Err.Error(),
		})
	}
	if scanned.Truncated {
		r.logger.Info(ctx, "folder cap reached, scan stopped early", logging.Fields{
			"max_folders": op.MaxFolders,
		})
	}
	r.logger.Info(ctx, "scanned source directory", logging.Fields{
		"path":    op.SourcePath,
		"folders": len(scanned.Folders),
	})

	matcher := match.New(loaded.IDs, match.Options{
		CaseSensitive: op.CaseSensitive,
		Strategy:      op.Strategy,
		Logger:        r.logger,
	})
	byID := matcher.Match(scanned.Folders)

	an := &Analysis{
		CaseIDs:        loaded,
		FoldersScanned: len(scanned.Folders),
		Truncated:      scanned.Truncated,
		Warnings:       scanned.Warnings,
		ByID:           byID,
		DuplicateIDs:   make(map[string]bool),
		Strategy:       matcher.Strategy(),
	}

	for _, id := range loaded.IDs {
		folders := byID[id]
		switch {
		case len(folders) == 0:
			an.UnmatchedIDs = append(an.UnmatchedIDs, id)
			continue
		case len(folders) > 1:
			an.DuplicateIDs[id] = true
		}
		for _, f := range folders {
			an.Matches = append(an.Matches, models.Match{
				CaseID:     id,
				SourcePath: f.Path,
				FolderName: f.Name,
			})
		}
	}

	r.logger.Info(ctx, "matched folders against CaseIDs", logging.Fields{
		"matches":    len(an.Matches),
		"unmatched":  len(an.UnmatchedIDs),
		"duplicates": len(an.DuplicateIDs),
		"strategy":   string(an.Strategy),
	})

	return an, nil
}

// Run executes the operation and returns its summary.
//
// A non-nil error means a precondition failed and no folder was touched.
// Cancellation is not an error: the batch stops between matches, the report
// is completed for the work done and the summary status is RunInterrupted.
func (r *Runner) Run(ctx context.Context, op *models.MigrationOperation) (*models.RunSummary, error) {
	if err := op.Validate(); err != nil {
		return nil, fmt.Errorf("invalid operation: %w", err)
	}

	startTime := time.Now()
	op.StartedAt = &startTime

	an, err := r.Analyze(ctx, op)
	if err != nil {
		return nil, err
	}

	var resumeSet map[string]bool
	if op.ResumeReport != "" {
		resumeSet, err = report.LoadResumeSet(op.ResumeReport)
		if err != nil {
			return nil, fmt.Errorf("failed to load resume report %s: %w", op.ResumeReport, err)
		}
		r.logger.Info(ctx, "loaded resume report", logging.Fields{
			"path":          op.ResumeReport,
			"already_moved": len(resumeSet),
		})
	}

	var reportWriter *report.Writer
	if op.ReportPath != "" {
		reportWriter, err = report.NewWriter(op.ReportPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open report %s: %w", op.ReportPath, err)
		}
		if err := reportWriter.WriteParameters(op); err != nil {
			reportWriter.Close()
			return nil, fmt.Errorf("failed to write report parameters: %w", err)
		}
	}

	if r.history != nil {
		run := &history.Run{
			ID:               op.ID,
			StartedAt:        startTime,
			Source:           op.SourcePath,
			Dest:             op.DestPath,
			DryRun:           op.DryRun,
			DuplicatesAction: string(op.DuplicatesAction),
			OnDestExists:     string(op.OnDestExists),
			ReportPath:       op.ReportPath,
		}
		if err := r.history.RecordStart(ctx, run); err != nil {
			r.logger.Warn(ctx, "failed to record run start in history", logging.Fields{
				"reason": err.Error(),
			})
		}
	}

	if r.events.Started != nil {
		r.events.Started(an.FoldersScanned, len(an.CaseIDs.IDs), len(an.Matches))
	}

	engine := move.NewEngine(op, move.Deps{
		Logger:       r.logger,
		ResumeSet:    resumeSet,
		DuplicateIDs: an.DuplicateIDs,
		Limiter:      ratelimit.NewLimiter(op.BandwidthLimit),
		Progress: func(current, total int, outcome models.MoveOutcome) {
			if reportWriter != nil {
				if err := reportWriter.WriteOutcome(outcome, an.DuplicateIDs[outcome.CaseID]); err != nil {
					r.logger.Error(ctx, "failed to write report row", err, logging.Fields{
						"case_id": outcome.CaseID,
					})
				}
			}
			if r.events.Outcome != nil {
				r.events.Outcome(current, total, outcome)
			}
		},
	})

	_, runErr := engine.MoveAll(ctx, an.Matches)
	interrupted := runErr != nil

	if reportWriter != nil {
		for _, id := range an.UnmatchedIDs {
			if err := reportWriter.WriteNotFound(id); err != nil {
				r.logger.Error(ctx, "failed to write report row", err, logging.Fields{
					"case_id": id,
				})
			}
		}
		if err := reportWriter.Close(); err != nil {
			r.logger.Error(ctx, "failed to close report", err, nil)
		}
	}

	endTime := time.Now()
	op.CompletedAt = &endTime
	stats := engine.Stats()

	status := models.RunCompleted
	switch {
	case interrupted:
		status = models.RunInterrupted
	case stats.Errors() > 0:
		status = models.RunCompletedWithErrors
	}

	summary := &models.RunSummary{
		RunID:            op.ID,
		SourcePath:       op.SourcePath,
		DestPath:         op.DestPath,
		DryRun:           op.DryRun,
		DuplicatesAction: op.DuplicatesAction,
		OnDestExists:     op.OnDestExists,
		StartTime:        startTime,
		EndTime:          endTime,
		Duration:         endTime.Sub(startTime),
		FoldersScanned:   an.FoldersScanned,
		CaseIDsLoaded:    len(an.CaseIDs.IDs),
		MatchesFound:     len(an.Matches),
		UnmatchedIDs:     an.UnmatchedIDs,
		Stats:            stats,
		EarlyStop:        engine.EarlyStop(),
		ReportPath:       op.ReportPath,
		Status:           status,
	}

	if r.history != nil {
		// The finish record must land even when the run was cancelled.
		hctx := context.WithoutCancel(ctx)
		run := &history.Run{
			ID:          op.ID,
			FinishedAt:  &endTime,
			Status:      string(status),
			Moved:       stats.Moved(),
			Quarantined: stats.Quarantined(),
			Skipped:     stats.Skipped(),
			Errors:      stats.Errors(),
			ReportPath:  op.ReportPath,
		}
		if err := r.history.RecordFinish(hctx, run); err != nil {
			r.logger.Warn(ctx, "failed to record run finish in history", logging.Fields{
				"reason": err.Error(),
			})
		}
	}

	r.logger.Info(ctx, "run finished", logging.Fields{
		"run_id":   op.ID,
		"status":   string(status),
		"moved":    stats.Moved(),
		"skipped":  stats.Skipped(),
		"errors":   stats.Errors(),
		"duration": summary.Duration.String(),
	})

	return summary, nil
}
