package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/casemover/pkg/models"
)

func sampleSummary() *models.RunSummary {
	stats := models.NewStatistics()
	stats.Record(models.StatusSuccess)
	stats.Record(models.StatusSuccess)
	stats.Record(models.StatusSuccessRenamed)
	stats.Record(models.StatusQuarantined)
	stats.Record(models.StatusSkippedExcluded)
	stats.Record(models.StatusError)

	return &models.RunSummary{
		RunID:            "run-test",
		SourcePath:       "/data/archive",
		DestPath:         "/data/moved",
		DuplicatesAction: models.DuplicatesQuarantine,
		OnDestExists:     models.ExistsRename,
		Duration:         1500 * time.Millisecond,
		FoldersScanned:   20,
		CaseIDsLoaded:    8,
		MatchesFound:     6,
		UnmatchedIDs:     []string{"00999", "00888"},
		Stats:            stats,
		ReportPath:       "/data/report.csv",
		Status:           models.RunCompletedWithErrors,
	}
}

func sampleStartInfo() StartInfo {
	return StartInfo{
		SourcePath:     "/data/archive",
		DestPath:       "/data/moved",
		FoldersScanned: 20,
		CaseIDsLoaded:  8,
		Matches:        6,
	}
}

func TestHumanFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()

	if err := f.Start(&buf, sampleStartInfo()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	outcome := models.MoveOutcome{
		CaseID:     "00123",
		SourcePath: "/data/archive/Case_00123_Smith",
		DestPath:   "/data/moved/Case_00123_Smith",
		Status:     models.StatusSuccess,
	}
	if err := f.Outcome(outcome, 1, 6); err != nil {
		t.Fatalf("Outcome() error = %v", err)
	}
	if err := f.Complete(sampleSummary()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got := buf.String()
	wantFragments := []string{
		"Migrating 6 matched folders",
		"Source:      /data/archive (20 folders scanned)",
		"[1/6]",
		"SUCCESS",
		"Case_00123_Smith -> /data/moved/Case_00123_Smith",
		"Migration finished in 1.5s",
		"Folders scanned: 20",
		"Moved: 3  Quarantined: 1  Skipped: 1  Errors: 1",
		"CaseIDs without a matching folder: 2",
		"Report: /data/report.csv",
		"Status: completed-with-errors",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(got, fragment) {
			t.Errorf("output missing %q\n%s", fragment, got)
		}
	}

	// A buffer is not a terminal, so no escape codes.
	if strings.Contains(got, "\033[") {
		t.Error("output should be plain text when not writing to a terminal")
	}
}

func TestHumanFormatter_DryRunBanner(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()

	info := sampleStartInfo()
	info.DryRun = true
	if err := f.Start(&buf, info); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if !strings.Contains(buf.String(), "Dry run: simulating migration of 6 matched folders") {
		t.Errorf("banner = %q", buf.String())
	}
}

func TestHumanFormatter_SkipLineCarriesMessage(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()
	if err := f.Start(&buf, sampleStartInfo()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	outcome := models.MoveOutcome{
		CaseID:     "00456",
		SourcePath: "/data/archive/Case_00456_bak",
		Status:     models.StatusSkippedExcluded,
		Message:    "Excluded by pattern: *_bak",
	}
	if err := f.Outcome(outcome, 2, 6); err != nil {
		t.Fatalf("Outcome() error = %v", err)
	}

	if !strings.Contains(buf.String(), "(Excluded by pattern: *_bak)") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()

	if err := f.Start(&buf, sampleStartInfo()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.Outcome(models.MoveOutcome{
		CaseID:     "00123",
		SourcePath: "/data/archive/Case_00123_Smith",
		DestPath:   "/data/moved/Case_00123_Smith",
		Status:     models.StatusSuccess,
	}, 1, 6); err != nil {
		t.Fatalf("Outcome() error = %v", err)
	}
	if err := f.Complete(sampleSummary()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var doc JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if doc.Status != "completed-with-errors" {
		t.Errorf("Status = %q", doc.Status)
	}
	if doc.Stats.Moved != 3 || doc.Stats.Quarantined != 1 || doc.Stats.Errors != 1 {
		t.Errorf("Stats = %+v", doc.Stats)
	}
	if doc.Stats.ByStatus["SUCCESS"] != 2 {
		t.Errorf("ByStatus[SUCCESS] = %d, want 2", doc.Stats.ByStatus["SUCCESS"])
	}
	if len(doc.Outcomes) != 1 || doc.Outcomes[0].CaseID != "00123" {
		t.Errorf("Outcomes = %+v", doc.Outcomes)
	}
	if len(doc.Unmatched) != 2 {
		t.Errorf("Unmatched = %v", doc.Unmatched)
	}
	if doc.DurationMs != 1500 {
		t.Errorf("DurationMs = %d", doc.DurationMs)
	}
}

func TestJSONFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	if err := f.Start(&buf, StartInfo{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := f.Error(bytes.ErrTooLarge); err != nil {
		t.Fatalf("Error() error = %v", err)
	}

	var doc map[string]string
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("error output is not valid JSON: %v", err)
	}
	if doc["error"] == "" {
		t.Error("error document should carry the message")
	}
}

func TestProgressFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewProgressFormatter()

	if err := f.Start(&buf, sampleStartInfo()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i := 1; i <= 6; i++ {
		outcome := models.MoveOutcome{CaseID: "00123", Status: models.StatusSuccess}
		if err := f.Outcome(outcome, i, 6); err != nil {
			t.Fatalf("Outcome() error = %v", err)
		}
	}
	if err := f.Complete(sampleSummary()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "Migrating 6 matched folders") {
		t.Errorf("banner missing:\n%s", got)
	}
	if !strings.Contains(got, "Status: completed-with-errors") {
		t.Errorf("summary missing:\n%s", got)
	}
}

func TestFormatterNames(t *testing.T) {
	if got := NewHumanFormatter().Name(); got != "human" {
		t.Errorf("human Name() = %q", got)
	}
	if got := NewProgressFormatter().Name(); got != "progress" {
		t.Errorf("progress Name() = %q", got)
	}
	if got := NewJSONFormatter().Name(); got != "json" {
		t.Errorf("json Name() = %q", got)
	}
}
