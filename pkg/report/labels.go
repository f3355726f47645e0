package report

import "github.com/sdejongh/casemover/pkg/models"

// Report labels that differ from the internal status name.
const (
	LabelMoved             = "MOVED"
	LabelMovedRenamed      = "MOVED_RENAMED"
	LabelFoundDryRun       = "FOUND_DRYRUN"
	LabelFoundDryRunRename = "FOUND_DRYRUN_RENAMED"
	LabelMultipleMatches   = "MULTIPLE_MATCHES"
	LabelNotFound          = "NOT_FOUND"
	LabelParameter         = "PARAMETER"
)

// Label maps an internal status to its report label. multiMatch marks
// outcomes whose CaseID matched more than one folder: every non-quarantine
// label collapses to MULTIPLE_MATCHES then, skips and errors included, so
// multi-match rows stand out when scanning a report. Quarantine labels are
// action-based and never overridden.
func Label(status models.StatusCode, multiMatch bool) string {
	if multiMatch && !status.IsQuarantine() {
		return LabelMultipleMatches
	}

	switch status {
	case models.StatusSuccess:
		return LabelMoved
	case models.StatusSuccessRenamed:
		return LabelMovedRenamed
	case models.StatusDryRun:
		return LabelFoundDryRun
	case models.StatusDryRunRenamed:
		return LabelFoundDryRunRename
	default:
		return string(status)
	}
}
