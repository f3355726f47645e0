// Package report writes and reads the per-run CSV migration report.
//
// The report doubles as the resume source for interrupted runs: rows whose
// label marks a completed move feed the next run's resume set.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sdejongh/casemover/pkg/models"
)

// timestampLayout is the wall-clock format used in report rows.
const timestampLayout = "2006-01-02 15:04:05"

// flushEvery bounds how much report data an interrupted run can lose.
const flushEvery = 100

// endParametersSentinel closes the parameter block at the top of a report.
const endParametersSentinel = "--- END PARAMETERS ---"

var header = []string{"timestamp", "case_id", "status", "source_path", "dest_path", "message"}

// Writer emits report rows to a CSV file, flushing periodically so a crash
// loses at most a bounded tail.
type Writer struct {
	path string
	file *os.File
	csv  *csv.Writer
	rows int

	now func() time.Time
}

// NewWriter creates the report file (and its parent directory) and writes
// the column header.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	w := &Writer{
		path: path,
		file: file,
		csv:  csv.NewWriter(file),
		now:  time.Now,
	}

	if err := w.csv.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	return w, nil
}

// Path returns the report file location.
func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) writeRow(caseID, status, sourcePath, destPath, message string) error {
	row := []string{
		w.now().Format(timestampLayout),
		caseID,
		status,
		sourcePath,
		destPath,
		message,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write report row: %w", err)
	}

	w.rows++
	if w.rows%flushEvery == 0 {
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			return fmt.Errorf("failed to flush report: %w", err)
		}
	}

	return nil
}

// WriteParameters records the run configuration as PARAMETER rows followed
// by a sentinel row, so a report is self-describing.
func (w *Writer) WriteParameters(op *models.MigrationOperation) error {
	params := []struct {
		name  string
		value string
	}{
		{"run_id", op.ID},
		{"source", op.SourcePath},
		{"dest", op.DestPath},
		{"caseid_file", op.CaseIDFile},
		{"caseid_column", op.CaseIDColumn},
		{"dry_run", strconv.FormatBool(op.DryRun)},
		{"duplicates_action", string(op.DuplicatesAction)},
		{"on_dest_exists", string(op.OnDestExists)},
		{"max_operations", strconv.Itoa(op.MaxOperations)},
		{"case_sensitive", strconv.FormatBool(op.CaseSensitive)},
		{"strategy", string(op.Strategy)},
		{"resume_report", op.ResumeReport},
	}

	for _, p := range params {
		if err := w.writeRow("", LabelParameter, "", "", p.name+"="+p.value); err != nil {
			return err
		}
	}
	for _, pattern := range op.ExcludePatterns {
		if err := w.writeRow("", LabelParameter, "", "", "exclude="+pattern); err != nil {
			return err
		}
	}

	return w.writeRow("", LabelParameter, "", "", endParametersSentinel)
}

// WriteOutcome records one engine outcome. multiMatch marks outcomes whose
// CaseID matched more than one folder.
func (w *Writer) WriteOutcome(o models.MoveOutcome, multiMatch bool) error {
	return w.writeRow(o.CaseID, Label(o.Status, multiMatch), o.SourcePath, o.DestPath, o.Message)
}

// WriteNotFound records a CaseID that matched no folder at all.
func (w *Writer) WriteNotFound(caseID string) error {
	return w.writeRow(caseID, LabelNotFound, "", "", "No matching folder found")
}

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush report: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}
