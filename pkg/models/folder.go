package models

// FolderRecord is a directory discovered by the scanner.
// Identity is defined by Path alone; Name is the basename kept
// separate so matching never re-derives it.
type FolderRecord struct {
	Name string
	Path string
}

// Match pairs a CaseID with one folder whose name contains it.
// The matcher produces one Match per (CaseID, folder) pair.
type Match struct {
	CaseID     string
	SourcePath string
	FolderName string
}

// MoveOutcome is the terminal result for a single Match.
// DestPath is empty when no destination was decided (skips, errors).
// The engine produces exactly one outcome per consumed Match.
type MoveOutcome struct {
	CaseID     string
	SourcePath string
	DestPath   string
	Status     StatusCode
	Message    string
}
