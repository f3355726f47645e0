package tui

import (
	"github.com/sdejongh/casemover/pkg/models"
)

// Messages crossing the worker/UI boundary. The worker goroutine posts
// progress onto a channel; a pump command turns channel reads into these
// messages so all state changes happen inside Update.

// startRunMsg is sent by the form view once its inputs validate.
type startRunMsg struct {
	Op *models.MigrationOperation
}

// runStartedMsg is sent when analysis is complete and moving begins.
type runStartedMsg struct {
	FoldersScanned int
	CaseIDsLoaded  int
	Matches        int
}

// outcomeMsg is sent for each processed match, in batch order.
type outcomeMsg struct {
	Current int
	Total   int
	Outcome models.MoveOutcome
}

// runDoneMsg is sent when the run finished, however it ended.
type runDoneMsg struct {
	Summary *models.RunSummary
}

// runFailedMsg is sent when a precondition failed before any move.
type runFailedMsg struct {
	Err error
}

// newRunMsg is sent by the summary view to return to the form.
type newRunMsg struct{}

// clipboardMsg reports the result of copying the report path.
type clipboardMsg struct {
	Err error
}
