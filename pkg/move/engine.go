// Package move decides and performs the relocation of matched folders.
//
// The Engine runs a fixed state machine per match: exclusion beats resume
// beats missing-source beats duplicate policy, then the main or quarantine
// branch resolves a collision-free destination name and either previews the
// move (dry run) or performs it. Batches are strictly sequential, the
// claimed-name bookkeeping and the operation budget depend on that.
package move

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sdejongh/casemover/pkg/logging"
	"github.com/sdejongh/casemover/pkg/models"
	"github.com/sdejongh/casemover/pkg/ratelimit"
)

// Deps carries the collaborators an Engine needs for one run.
type Deps struct {
	// Logger receives per-outcome debug events and the early-stop notice.
	Logger logging.Logger

	// ResumeSet holds source paths already handled by a previous run.
	ResumeSet map[string]bool

	// DuplicateIDs flags CaseIDs that matched more than one folder.
	DuplicateIDs map[string]bool

	// Limiter throttles copy fallbacks. Nil disables limiting.
	Limiter *ratelimit.Limiter

	// Progress, when set, receives each produced outcome in batch order.
	Progress func(current, total int, outcome models.MoveOutcome)
}

// Engine executes the per-match state machine over a batch of matches.
// An Engine instance must not be shared across concurrent batches; use a
// fresh instance or Reset between runs.
type Engine struct {
	op         *models.MigrationOperation
	logger     logging.Logger
	resume     map[string]bool
	duplicates map[string]bool
	mover      *Mover
	progress   func(current, total int, outcome models.MoveOutcome)

	stats            models.Statistics
	destClaims       ClaimSet
	quarantineClaims map[string]ClaimSet
	earlyStop        bool
}

// NewEngine creates an engine for one migration operation.
func NewEngine(op *models.MigrationOperation, deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	return &Engine{
		op:               op,
		logger:           logger,
		resume:           deps.ResumeSet,
		duplicates:       deps.DuplicateIDs,
		mover:            NewMover(deps.Limiter, op.BufferSize),
		progress:         deps.Progress,
		stats:            models.NewStatistics(),
		destClaims:       NewClaimSet(),
		quarantineClaims: make(map[string]ClaimSet),
	}
}

// Reset clears claimed names, counters and the early-stop flag so the engine
// can run another batch.
func (e *Engine) Reset() {
	e.stats = models.NewStatistics()
	e.destClaims = NewClaimSet()
	e.quarantineClaims = make(map[string]ClaimSet)
	e.earlyStop = false
}

// Stats returns a copy of the per-status counters.
func (e *Engine) Stats() models.Statistics {
	return e.stats.Clone()
}

// EarlyStop reports whether the last batch halted on the operation budget.
func (e *Engine) EarlyStop() bool {
	return e.earlyStop
}

// MoveAll processes the matches in order, producing exactly one outcome per
// processed match. The batch halts early when the operation budget is
// exhausted (remaining matches produce no outcome) and stops between matches
// when the context is cancelled, returning the outcomes produced so far
// together with ctx.Err().
func (e *Engine) MoveAll(ctx context.Context, matches []models.Match) ([]models.MoveOutcome, error) {
	total := len(matches)
	outcomes := make([]models.MoveOutcome, 0, total)

	for i, m := range matches {
		select {
		case <-ctx.Done():
			return outcomes, ctx.Err()
		default:
		}

		if e.op.MaxOperations > 0 && e.stats.Operations() >= e.op.MaxOperations {
			e.earlyStop = true
			e.logger.Info(ctx, "operation budget reached, stopping early", logging.Fields{
				"max_operations": e.op.MaxOperations,
				"processed":      i,
				"remaining":      total - i,
			})
			break
		}

		outcome := e.processMatch(ctx, m)
		outcomes = append(outcomes, outcome)
		e.stats.Record(outcome.Status)

		e.logger.Debug(ctx, "processed match", logging.Fields{
			"case_id": m.CaseID,
			"status":  string(outcome.Status),
			"source":  m.SourcePath,
			"dest":    outcome.DestPath,
		})

		if e.progress != nil {
			e.progress(i+1, total, outcome)
		}
	}

	return outcomes, nil
}

// processMatch runs the state machine for a single match. Check order is
// fixed: exclusion, resume, missing source, duplicate policy, then the
// main or quarantine branch.
func (e *Engine) processMatch(ctx context.Context, m models.Match) models.MoveOutcome {
	outcome := models.MoveOutcome{CaseID: m.CaseID, SourcePath: m.SourcePath}

	if excluded, pattern := Excluded(m.FolderName, e.op.ExcludePatterns); excluded {
		outcome.Status = models.StatusSkippedExcluded
		outcome.Message = "Excluded by pattern: " + pattern
		return outcome
	}

	if e.resume[m.SourcePath] {
		outcome.Status = models.StatusSkippedResume
		outcome.Message = "Already processed in previous run (resumed)"
		return outcome
	}

	if _, err := os.Lstat(m.SourcePath); err != nil {
		if os.IsNotExist(err) {
			outcome.Status = models.StatusSkippedMissing
			outcome.Message = "Source folder no longer exists (may have been moved already)"
		} else {
			outcome.Status = models.StatusError
			outcome.Message = err.Error()
		}
		return outcome
	}

	if e.duplicates[m.CaseID] {
		switch e.op.DuplicatesAction {
		case models.DuplicatesSkip:
			outcome.Status = models.StatusSkippedDuplicate
			outcome.Message = "Duplicate CaseID skipped"
			return outcome
		case models.DuplicatesQuarantine:
			return e.quarantineBranch(ctx, m)
		}
		// move-all continues into the main branch
	}

	return e.mainBranch(ctx, m)
}

// mainBranch moves the folder under the destination root.
func (e *Engine) mainBranch(ctx context.Context, m models.Match) models.MoveOutcome {
	outcome := models.MoveOutcome{CaseID: m.CaseID, SourcePath: m.SourcePath}

	direct := filepath.Join(e.op.DestPath, m.FolderName)
	taken, err := entryExists(direct)
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}
	taken = taken || e.destClaims.Claimed(m.FolderName)

	if taken && e.op.OnDestExists == models.ExistsSkip {
		outcome.Status = models.StatusSkippedExists
		outcome.Message = "Destination already exists"
		return outcome
	}

	destPath, err := Resolve(e.op.DestPath, m.FolderName, e.destClaims)
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}

	basename := filepath.Base(destPath)
	renamed := basename != m.FolderName
	e.destClaims.Claim(basename)
	outcome.DestPath = destPath

	if e.op.DryRun {
		if renamed {
			outcome.Status = models.StatusDryRunRenamed
			outcome.Message = "Would move renamed to " + basename
		} else {
			outcome.Status = models.StatusDryRun
			outcome.Message = "Would move"
		}
		return outcome
	}

	if err := e.mover.Move(ctx, m.SourcePath, destPath); err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}

	if renamed {
		outcome.Status = models.StatusSuccessRenamed
		outcome.Message = "Renamed to avoid collision: " + basename
	} else {
		outcome.Status = models.StatusSuccess
	}
	return outcome
}

// quarantineBranch moves a duplicate's folder under the per-CaseID
// quarantine directory, which keeps its own claimed-name set.
func (e *Engine) quarantineBranch(ctx context.Context, m models.Match) models.MoveOutcome {
	outcome := models.MoveOutcome{CaseID: m.CaseID, SourcePath: m.SourcePath}

	quarantineDir := filepath.Join(e.op.DestPath, DuplicatesDirName, m.CaseID)
	claims, ok := e.quarantineClaims[m.CaseID]
	if !ok {
		claims = NewClaimSet()
		e.quarantineClaims[m.CaseID] = claims
	}

	destPath, err := Resolve(quarantineDir, m.FolderName, claims)
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}

	basename := filepath.Base(destPath)
	renamed := basename != m.FolderName
	claims.Claim(basename)
	outcome.DestPath = destPath

	if e.op.DryRun {
		if renamed {
			outcome.Status = models.StatusDryRunQuarantineRenamed
			outcome.Message = "[Multiple matches] Would quarantine renamed to " + basename
		} else {
			outcome.Status = models.StatusDryRunQuarantine
			outcome.Message = "[Multiple matches] Would quarantine"
		}
		return outcome
	}

	if err := e.mover.Move(ctx, m.SourcePath, destPath); err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}

	if renamed {
		outcome.Status = models.StatusQuarantinedRenamed
		outcome.Message = "[Multiple matches] Duplicate CaseID quarantined as " + basename
	} else {
		outcome.Status = models.StatusQuarantined
		outcome.Message = "[Multiple matches] Duplicate CaseID quarantined"
	}
	return outcome
}
