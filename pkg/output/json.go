package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/casemover/pkg/models"
)

// JSONFormatter emits one machine-readable document at the end of the run,
// for automation and scripting
type JSONFormatter struct {
	writer   io.Writer
	outcomes []JSONOutcomeData
}

// JSONOutcomeData represents one processed match
type JSONOutcomeData struct {
	CaseID     string `json:"case_id"`
	Status     string `json:"status"`
	SourcePath string `json:"source_path"`
	DestPath   string `json:"dest_path,omitempty"`
	Message    string `json:"message,omitempty"`
}

// JSONStatsData represents the outcome counters
type JSONStatsData struct {
	FoldersScanned int            `json:"folders_scanned"`
	CaseIDsLoaded  int            `json:"caseids_loaded"`
	Matches        int            `json:"matches"`
	Moved          int            `json:"moved"`
	Quarantined    int            `json:"quarantined"`
	Skipped        int            `json:"skipped"`
	Errors         int            `json:"errors"`
	ByStatus       map[string]int `json:"by_status"`
}

// JSONReportData represents the final run document
type JSONReportData struct {
	Status     string            `json:"status"`
	DryRun     bool              `json:"dry_run"`
	Duration   string            `json:"duration"`
	DurationMs int64             `json:"duration_ms"`
	Source     string            `json:"source"`
	Dest       string            `json:"dest"`
	ReportPath string            `json:"report_path,omitempty"`
	EarlyStop  bool              `json:"early_stop,omitempty"`
	Stats      JSONStatsData     `json:"stats"`
	Unmatched  []string          `json:"unmatched_caseids,omitempty"`
	Outcomes   []JSONOutcomeData `json:"outcomes"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		outcomes: make([]JSONOutcomeData, 0),
	}
}

// Start initializes the formatter. Nothing is written until Complete so
// the output stays a single parseable document.
func (f *JSONFormatter) Start(writer io.Writer, info StartInfo) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Outcome accumulates one processed match for the final document
func (f *JSONFormatter) Outcome(outcome models.MoveOutcome, current, total int) error {
	f.outcomes = append(f.outcomes, JSONOutcomeData{
		CaseID:     outcome.CaseID,
		Status:     string(outcome.Status),
		SourcePath: outcome.SourcePath,
		DestPath:   outcome.DestPath,
		Message:    outcome.Message,
	})
	return nil
}

// Complete emits the run document as indented JSON
func (f *JSONFormatter) Complete(summary *models.RunSummary) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	byStatus := make(map[string]int, len(summary.Stats))
	for _, status := range models.AllStatuses() {
		if count := summary.Stats[status]; count > 0 {
			byStatus[string(status)] = count
		}
	}

	doc := JSONReportData{
		Status:     string(summary.Status),
		DryRun:     summary.DryRun,
		Duration:   summary.Duration.Round(time.Millisecond).String(),
		DurationMs: summary.Duration.Milliseconds(),
		Source:     summary.SourcePath,
		Dest:       summary.DestPath,
		ReportPath: summary.ReportPath,
		EarlyStop:  summary.EarlyStop,
		Stats: JSONStatsData{
			FoldersScanned: summary.FoldersScanned,
			CaseIDsLoaded:  summary.CaseIDsLoaded,
			Matches:        summary.MatchesFound,
			Moved:          summary.Stats.Moved(),
			Quarantined:    summary.Stats.Quarantined(),
			Skipped:        summary.Stats.Skipped(),
			Errors:         summary.Stats.Errors(),
			ByStatus:       byStatus,
		},
		Unmatched: summary.UnmatchedIDs,
		Outcomes:  f.outcomes,
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// Error emits a single JSON error object
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stderr
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
