package history

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir, err := os.MkdirTemp("", "history-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "nested", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file should exist: %v", err)
	}
	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	first := &Run{
		ID:               "run-1",
		StartedAt:        base,
		Source:           "/data/archive",
		Dest:             "/data/moved",
		DryRun:           false,
		DuplicatesAction: "quarantine",
		OnDestExists:     "rename",
	}
	second := &Run{
		ID:               "run-2",
		StartedAt:        base.Add(time.Hour),
		Source:           "/data/archive",
		Dest:             "/data/moved",
		DryRun:           true,
		DuplicatesAction: "skip",
		OnDestExists:     "skip",
	}

	if err := store.RecordStart(ctx, first); err != nil {
		t.Fatalf("RecordStart(first) error = %v", err)
	}
	if err := store.RecordStart(ctx, second); err != nil {
		t.Fatalf("RecordStart(second) error = %v", err)
	}

	finished := base.Add(30 * time.Minute)
	first.FinishedAt = &finished
	first.Status = "completed"
	first.Moved = 40
	first.Quarantined = 3
	first.Skipped = 5
	first.Errors = 1
	first.ReportPath = "/data/report.csv"
	if err := store.RecordFinish(ctx, first); err != nil {
		t.Fatalf("RecordFinish() error = %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Recent() returned %d runs, want 2", len(runs))
	}

	// Newest first.
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Errorf("order = [%s, %s], want [run-2, run-1]", runs[0].ID, runs[1].ID)
	}

	// Still running, nothing finished.
	if runs[0].Status != "running" {
		t.Errorf("run-2 status = %q, want running", runs[0].Status)
	}
	if runs[0].FinishedAt != nil {
		t.Errorf("run-2 FinishedAt = %v, want nil", runs[0].FinishedAt)
	}
	if !runs[0].DryRun {
		t.Error("run-2 should be a dry run")
	}

	got := runs[1]
	if got.Status != "completed" {
		t.Errorf("run-1 status = %q, want completed", got.Status)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("run-1 FinishedAt = %v, want %v", got.FinishedAt, finished)
	}
	if got.Moved != 40 || got.Quarantined != 3 || got.Skipped != 5 || got.Errors != 1 {
		t.Errorf("counters = %d/%d/%d/%d, want 40/3/5/1",
			got.Moved, got.Quarantined, got.Skipped, got.Errors)
	}
	if got.ReportPath != "/data/report.csv" {
		t.Errorf("ReportPath = %q", got.ReportPath)
	}
	if got.DuplicatesAction != "quarantine" || got.OnDestExists != "rename" {
		t.Errorf("policies = %q/%q", got.DuplicatesAction, got.OnDestExists)
	}
}

func TestStore_RecordFinish_UnknownRun(t *testing.T) {
	store := openMemory(t)

	err := store.RecordFinish(context.Background(), &Run{ID: "no-such-run", Status: "completed"})
	if err == nil {
		t.Fatal("RecordFinish() should fail for an unknown run")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want 'not found'", err)
	}
}

func TestStore_Recent_Limit(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := &Run{
			ID:        string(rune('a' + i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Source:    "/src",
			Dest:      "/dest",
		}
		if err := store.RecordStart(ctx, run); err != nil {
			t.Fatalf("RecordStart() error = %v", err)
		}
	}

	runs, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Recent(3) returned %d runs", len(runs))
	}
	if runs[0].ID != "e" {
		t.Errorf("newest run = %q, want e", runs[0].ID)
	}
}

func TestStore_Recent_Empty(t *testing.T) {
	store := openMemory(t)

	runs, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Recent() on empty ledger returned %d runs", len(runs))
	}
}

func TestStore_ReopenPersists(t *testing.T) {
	dir, err := os.MkdirTemp("", "history-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "history.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	run := &Run{
		ID:        "persisted",
		StartedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Source:    "/src",
		Dest:      "/dest",
	}
	if err := store.RecordStart(ctx, run); err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "persisted" {
		t.Errorf("reopened ledger runs = %+v", runs)
	}
}
