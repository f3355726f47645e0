package models

// StatusCode is the closed set of terminal states a Match can reach.
// The report writer maps these to external labels; the engine and its
// counters only ever see StatusCode values.
type StatusCode string

const (
	// StatusSuccess means the folder was moved to the destination under its original name
	StatusSuccess StatusCode = "SUCCESS"
	// StatusSuccessRenamed means the folder was moved under a collision-resolved name
	StatusSuccessRenamed StatusCode = "SUCCESS_RENAMED"
	// StatusQuarantined means a duplicate-CaseID folder was moved into the quarantine area
	StatusQuarantined StatusCode = "QUARANTINED"
	// StatusQuarantinedRenamed means a quarantined folder needed a collision-resolved name
	StatusQuarantinedRenamed StatusCode = "QUARANTINED_RENAMED"
	// StatusDryRun means a live run would have moved the folder under its original name
	StatusDryRun StatusCode = "DRY_RUN"
	// StatusDryRunRenamed means a live run would have moved the folder under a resolved name
	StatusDryRunRenamed StatusCode = "DRY_RUN_RENAMED"
	// StatusDryRunQuarantine means a live run would have quarantined the folder
	StatusDryRunQuarantine StatusCode = "DRY_RUN_QUARANTINE"
	// StatusDryRunQuarantineRenamed means a live run would have quarantined under a resolved name
	StatusDryRunQuarantineRenamed StatusCode = "DRY_RUN_QUARANTINE_RENAMED"
	// StatusSkippedMissing means the source folder vanished before it could be moved
	StatusSkippedMissing StatusCode = "SKIPPED_MISSING"
	// StatusSkippedExists means the destination name was taken and the policy forbids renaming
	StatusSkippedExists StatusCode = "SKIPPED_EXISTS"
	// StatusSkippedExcluded means an exclusion pattern matched the folder name
	StatusSkippedExcluded StatusCode = "SKIPPED_EXCLUDED"
	// StatusSkippedResume means the source path was already handled in a previous run
	StatusSkippedResume StatusCode = "SKIPPED_RESUME"
	// StatusSkippedDuplicate means a duplicate-CaseID folder was skipped by policy
	StatusSkippedDuplicate StatusCode = "SKIPPED_DUPLICATE"
	// StatusError means the move itself failed with an I/O error
	StatusError StatusCode = "ERROR"
)

// operationStatuses is the set of statuses that consume the operation
// budget. Skips and errors never count against it.
var operationStatuses = map[StatusCode]bool{
	StatusSuccess:                 true,
	StatusSuccessRenamed:          true,
	StatusQuarantined:             true,
	StatusQuarantinedRenamed:      true,
	StatusDryRun:                  true,
	StatusDryRunRenamed:           true,
	StatusDryRunQuarantine:        true,
	StatusDryRunQuarantineRenamed: true,
}

// IsOperation reports whether the status counts against the operation budget.
func (s StatusCode) IsOperation() bool {
	return operationStatuses[s]
}

// IsQuarantine reports whether the status belongs to the quarantine branch.
func (s StatusCode) IsQuarantine() bool {
	switch s {
	case StatusQuarantined, StatusQuarantinedRenamed,
		StatusDryRunQuarantine, StatusDryRunQuarantineRenamed:
		return true
	}
	return false
}

// IsSkip reports whether the status is one of the skip reasons.
func (s StatusCode) IsSkip() bool {
	switch s {
	case StatusSkippedMissing, StatusSkippedExists, StatusSkippedExcluded,
		StatusSkippedResume, StatusSkippedDuplicate:
		return true
	}
	return false
}

// AllStatuses returns every StatusCode in a fixed display order.
func AllStatuses() []StatusCode {
	return []StatusCode{
		StatusSuccess,
		StatusSuccessRenamed,
		StatusQuarantined,
		StatusQuarantinedRenamed,
		StatusDryRun,
		StatusDryRunRenamed,
		StatusDryRunQuarantine,
		StatusDryRunQuarantineRenamed,
		StatusSkippedMissing,
		StatusSkippedExists,
		StatusSkippedExcluded,
		StatusSkippedResume,
		StatusSkippedDuplicate,
		StatusError,
	}
}
