package migrate

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/casemover/pkg/history"
	"github.com/sdejongh/casemover/pkg/models"
)

type runFixture struct {
	root string
	src  string
	dest string
	op   *models.MigrationOperation
}

// newRunFixture builds a source/dest pair, writes the CaseID file and
// returns a ready-to-run operation reporting into the fixture root.
func newRunFixture(t *testing.T, caseIDs ...string) *runFixture {
	t.Helper()

	root, err := os.MkdirTemp("", "migrate-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(root) })

	src := filepath.Join(root, "source")
	dest := filepath.Join(root, "dest")
	for _, dir := range []string{src, dest} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	idFile := filepath.Join(root, "caseids.txt")
	if err := os.WriteFile(idFile, []byte(strings.Join(caseIDs, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write CaseID file: %v", err)
	}

	return &runFixture{
		root: root,
		src:  src,
		dest: dest,
		op: &models.MigrationOperation{
			ID:               "run-test",
			SourcePath:       src,
			DestPath:         dest,
			CaseIDFile:       idFile,
			ReportPath:       filepath.Join(root, "report.csv"),
			OnDestExists:     models.ExistsRename,
			DuplicatesAction: models.DuplicatesQuarantine,
			Strategy:         models.StrategyAuto,
			BufferSize:       65536,
		},
	}
}

func (f *runFixture) addFolder(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(f.src, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "marker.txt"), []byte(name), 0644); err != nil {
		t.Fatalf("Failed to create marker file: %v", err)
	}
	return path
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("Failed to stat %s: %v", path, err)
	return false
}

// readReport returns the data rows of a report, parameter block excluded.
func readReport(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open report: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	inParameters := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read report: %v", err)
		}
		if row[1] == "case_id" {
			continue
		}
		if row[2] == "PARAMETER" {
			if strings.Contains(row[5], "END PARAMETERS") {
				inParameters = false
			}
			continue
		}
		if inParameters {
			t.Fatalf("data row %v before end of parameter block", row)
		}
		rows = append(rows, row)
	}
	return rows
}

func openMemoryHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open history store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunner_LiveRun(t *testing.T) {
	f := newRunFixture(t, "00123", "00456", "99999")
	f.addFolder(t, "CASE_00123")
	f.addFolder(t, "CASE_00456")

	store := openMemoryHistory(t)

	var startedFolders, startedIDs, startedMatches int
	var ticks []int
	var statuses []models.StatusCode
	runner := NewRunner(nil, store, Events{
		Started: func(folders, ids, matches int) {
			startedFolders, startedIDs, startedMatches = folders, ids, matches
		},
		Outcome: func(current, total int, outcome models.MoveOutcome) {
			ticks = append(ticks, current)
			statuses = append(statuses, outcome.Status)
		},
	})

	summary, err := runner.Run(context.Background(), f.op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Status != models.RunCompleted {
		t.Errorf("Status = %s, want %s", summary.Status, models.RunCompleted)
	}
	if summary.FoldersScanned != 2 || summary.CaseIDsLoaded != 3 || summary.MatchesFound != 2 {
		t.Errorf("counters = %d/%d/%d, want 2/3/2",
			summary.FoldersScanned, summary.CaseIDsLoaded, summary.MatchesFound)
	}
	if got := summary.Stats.Moved(); got != 2 {
		t.Errorf("Moved() = %d, want 2", got)
	}
	if len(summary.UnmatchedIDs) != 1 || summary.UnmatchedIDs[0] != "99999" {
		t.Errorf("UnmatchedIDs = %v, want [99999]", summary.UnmatchedIDs)
	}
	if summary.ReportPath != f.op.ReportPath {
		t.Errorf("ReportPath = %s, want %s", summary.ReportPath, f.op.ReportPath)
	}

	// Folders physically relocated.
	for _, name := range []string{"CASE_00123", "CASE_00456"} {
		if exists(t, filepath.Join(f.src, name)) {
			t.Errorf("%s still in source", name)
		}
		if !exists(t, filepath.Join(f.dest, name)) {
			t.Errorf("%s not in destination", name)
		}
	}

	// Event hooks saw the full run.
	if startedFolders != 2 || startedIDs != 3 || startedMatches != 2 {
		t.Errorf("Started hook = %d/%d/%d, want 2/3/2", startedFolders, startedIDs, startedMatches)
	}
	if len(ticks) != 2 || ticks[0] != 1 || ticks[1] != 2 {
		t.Errorf("Outcome ticks = %v, want [1 2]", ticks)
	}
	for _, s := range statuses {
		if s != models.StatusSuccess {
			t.Errorf("outcome status = %s, want %s", s, models.StatusSuccess)
		}
	}

	// Report carries the moves then the unmatched identifier.
	rows := readReport(t, f.op.ReportPath)
	if len(rows) != 3 {
		t.Fatalf("got %d data rows, want 3", len(rows))
	}
	if rows[0][1] != "00123" || rows[0][2] != "MOVED" {
		t.Errorf("row 0 = %v, want 00123 MOVED", rows[0])
	}
	if rows[1][1] != "00456" || rows[1][2] != "MOVED" {
		t.Errorf("row 1 = %v, want 00456 MOVED", rows[1])
	}
	if rows[2][1] != "99999" || rows[2][2] != "NOT_FOUND" {
		t.Errorf("row 2 = %v, want 99999 NOT_FOUND", rows[2])
	}

	// Run ledger closed out.
	runs, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d history runs, want 1", len(runs))
	}
	if runs[0].ID != "run-test" || runs[0].Status != "completed" || runs[0].Moved != 2 {
		t.Errorf("history run = %s/%s/moved=%d, want run-test/completed/2",
			runs[0].ID, runs[0].Status, runs[0].Moved)
	}
	if runs[0].FinishedAt == nil {
		t.Error("history run has no finish time")
	}
}

func TestRunner_DryRunTouchesNothing(t *testing.T) {
	f := newRunFixture(t, "00123", "00456")
	f.addFolder(t, "CASE_00123")
	f.addFolder(t, "CASE_00456")
	f.op.DryRun = true

	runner := NewRunner(nil, nil, Events{})
	summary, err := runner.Run(context.Background(), f.op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Status != models.RunCompleted {
		t.Errorf("Status = %s, want %s", summary.Status, models.RunCompleted)
	}
	if !summary.DryRun {
		t.Error("summary not flagged as dry run")
	}
	if got := summary.Stats.Moved(); got != 2 {
		t.Errorf("Moved() = %d, want 2", got)
	}

	// Source untouched, destination empty.
	for _, name := range []string{"CASE_00123", "CASE_00456"} {
		if !exists(t, filepath.Join(f.src, name)) {
			t.Errorf("%s missing from source after dry run", name)
		}
	}
	entries, err := os.ReadDir(f.dest)
	if err != nil {
		t.Fatalf("Failed to read dest: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("destination has %d entries after dry run, want 0", len(entries))
	}

	// Report uses the preview labels.
	rows := readReport(t, f.op.ReportPath)
	if len(rows) != 2 {
		t.Fatalf("got %d data rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row[2] != "FOUND_DRYRUN" {
			t.Errorf("row label = %s, want FOUND_DRYRUN", row[2])
		}
	}
}

func TestRunner_Analyze(t *testing.T) {
	f := newRunFixture(t, "201", "100", "999")
	f.addFolder(t, "case_201_a")
	f.addFolder(t, "case_201_b")
	f.addFolder(t, "client_100")

	runner := NewRunner(nil, nil, Events{})
	an, err := runner.Analyze(context.Background(), f.op)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if an.FoldersScanned != 3 {
		t.Errorf("FoldersScanned = %d, want 3", an.FoldersScanned)
	}

	// Flattened batch: identifier input order, then folder order within one.
	wantOrder := []string{"case_201_a", "case_201_b", "client_100"}
	if len(an.Matches) != len(wantOrder) {
		t.Fatalf("got %d matches, want %d", len(an.Matches), len(wantOrder))
	}
	for i, want := range wantOrder {
		if an.Matches[i].FolderName != want {
			t.Errorf("match %d = %s, want %s", i, an.Matches[i].FolderName, want)
		}
	}
	if an.Matches[0].CaseID != "201" || an.Matches[2].CaseID != "100" {
		t.Errorf("match CaseIDs = %s/%s, want 201/100", an.Matches[0].CaseID, an.Matches[2].CaseID)
	}

	if !an.DuplicateIDs["201"] || an.DuplicateIDs["100"] {
		t.Errorf("DuplicateIDs = %v, want only 201", an.DuplicateIDs)
	}
	if len(an.UnmatchedIDs) != 1 || an.UnmatchedIDs[0] != "999" {
		t.Errorf("UnmatchedIDs = %v, want [999]", an.UnmatchedIDs)
	}

	// Analysis must not touch the filesystem.
	if !exists(t, filepath.Join(f.src, "case_201_a")) {
		t.Error("analysis moved a folder")
	}
}

func TestRunner_PreconditionFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *testing.T, f *runFixture)
		wantMsg string
	}{
		{
			name: "MissingCaseIDFile",
			mutate: func(t *testing.T, f *runFixture) {
				f.op.CaseIDFile = filepath.Join(f.root, "nope.txt")
			},
			wantMsg: "failed to load CaseIDs",
		},
		{
			name: "MissingSource",
			mutate: func(t *testing.T, f *runFixture) {
				if err := os.RemoveAll(f.src); err != nil {
					t.Fatalf("Failed to remove source: %v", err)
				}
			},
			wantMsg: "failed to scan source",
		},
		{
			name: "InvalidOperation",
			mutate: func(t *testing.T, f *runFixture) {
				f.op.OnDestExists = "bogus"
			},
			wantMsg: "invalid operation",
		},
		{
			name: "UnreadableResumeReport",
			mutate: func(t *testing.T, f *runFixture) {
				f.op.ResumeReport = filepath.Join(f.root, "missing_report.csv")
			},
			wantMsg: "failed to load resume report",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRunFixture(t, "00123")
			f.addFolder(t, "CASE_00123")
			tt.mutate(t, f)

			runner := NewRunner(nil, nil, Events{})
			summary, err := runner.Run(context.Background(), f.op)
			if err == nil {
				t.Fatal("Run() succeeded, want error")
			}
			if summary != nil {
				t.Errorf("got summary %+v, want nil", summary)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err, tt.wantMsg)
			}
			if exists(t, f.op.ReportPath) {
				t.Error("report file created despite precondition failure")
			}
		})
	}
}

func TestRunner_ResumeSkipsPriorMoves(t *testing.T) {
	f := newRunFixture(t, "00123", "00456")
	f.addFolder(t, "CASE_00123")
	f.addFolder(t, "CASE_00456")

	runner := NewRunner(nil, nil, Events{})
	if _, err := runner.Run(context.Background(), f.op); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	// Second run resumes from the first report. The folders are gone from
	// the source, but the resume check fires before the missing check.
	f.op.ResumeReport = f.op.ReportPath
	f.op.ReportPath = filepath.Join(f.root, "report2.csv")

	summary, err := runner.Run(context.Background(), f.op)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if summary.Status != models.RunCompleted {
		t.Errorf("Status = %s, want %s", summary.Status, models.RunCompleted)
	}
	if got := summary.Stats[models.StatusSkippedResume]; got != 2 {
		t.Errorf("SKIPPED_RESUME count = %d, want 2", got)
	}
	if got := summary.Stats.Moved(); got != 0 {
		t.Errorf("Moved() = %d, want 0", got)
	}

	rows := readReport(t, f.op.ReportPath)
	for _, row := range rows {
		if row[2] != "SKIPPED_RESUME" {
			t.Errorf("row label = %s, want SKIPPED_RESUME", row[2])
		}
	}
}

func TestRunner_Interrupted(t *testing.T) {
	f := newRunFixture(t, "00123", "00456")
	f.addFolder(t, "CASE_00123")
	f.addFolder(t, "CASE_00456")

	store := openMemoryHistory(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(nil, store, Events{
		Outcome: func(current, total int, outcome models.MoveOutcome) {
			if current == 1 {
				cancel()
			}
		},
	})

	summary, err := runner.Run(ctx, f.op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Status != models.RunInterrupted {
		t.Errorf("Status = %s, want %s", summary.Status, models.RunInterrupted)
	}
	if got := summary.Stats.Total(); got != 1 {
		t.Errorf("Total() = %d, want 1", got)
	}
	if !exists(t, filepath.Join(f.src, "CASE_00456")) {
		t.Error("second folder moved despite cancellation")
	}

	// The finish record lands even though the context was cancelled.
	runs, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "interrupted" {
		t.Fatalf("history runs = %+v, want one interrupted run", runs)
	}
}

func TestRunner_CompletedWithErrors(t *testing.T) {
	f := newRunFixture(t, "00123")
	f.addFolder(t, "CASE_00123_v1")
	f.addFolder(t, "CASE_00123_v2")

	// A file where the quarantine directory must go forces move errors.
	blocker := filepath.Join(f.dest, "_DUPLICATES")
	if err := os.WriteFile(blocker, []byte("in the way"), 0644); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	runner := NewRunner(nil, nil, Events{})
	summary, err := runner.Run(context.Background(), f.op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Status != models.RunCompletedWithErrors {
		t.Errorf("Status = %s, want %s", summary.Status, models.RunCompletedWithErrors)
	}
	if got := summary.Stats.Errors(); got != 2 {
		t.Errorf("Errors() = %d, want 2", got)
	}

	rows := readReport(t, f.op.ReportPath)
	if len(rows) != 2 {
		t.Fatalf("got %d data rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row[2] != "ERROR" {
			t.Errorf("row label = %s, want ERROR", row[2])
		}
	}
}

func TestRunner_OperationBudget(t *testing.T) {
	f := newRunFixture(t, "00111", "00222", "00333")
	f.addFolder(t, "CASE_00111")
	f.addFolder(t, "CASE_00222")
	f.addFolder(t, "CASE_00333")
	f.op.MaxOperations = 2

	runner := NewRunner(nil, nil, Events{})
	summary, err := runner.Run(context.Background(), f.op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !summary.EarlyStop {
		t.Error("EarlyStop = false, want true")
	}
	if got := summary.Stats.Total(); got != 2 {
		t.Errorf("Total() = %d, want 2", got)
	}
	if !exists(t, filepath.Join(f.src, "CASE_00333")) {
		t.Error("third folder moved despite exhausted budget")
	}
}

func TestRunner_NoReportPath(t *testing.T) {
	f := newRunFixture(t, "00123")
	f.addFolder(t, "CASE_00123")
	f.op.ReportPath = ""

	runner := NewRunner(nil, nil, Events{})
	summary, err := runner.Run(context.Background(), f.op)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.ReportPath != "" {
		t.Errorf("ReportPath = %s, want empty", summary.ReportPath)
	}
	if got := summary.Stats.Moved(); got != 1 {
		t.Errorf("Moved() = %d, want 1", got)
	}
}
