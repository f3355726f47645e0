package move

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScanQuarantined(t *testing.T) {
	dest, err := os.MkdirTemp("", "quarantine-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dest)

	mk := func(caseID, name string, age time.Duration) {
		t.Helper()
		path := filepath.Join(dest, DuplicatesDirName, caseID, name)
		if err := os.MkdirAll(path, 0755); err != nil {
			t.Fatalf("Failed to create quarantined folder: %v", err)
		}
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(path, stamp, stamp); err != nil {
			t.Fatalf("Failed to set times: %v", err)
		}
	}

	mk("00123", "CASE_00123_v1", 48*time.Hour)
	mk("00123", "CASE_00123_v2", 1*time.Hour)
	mk("00456", "CASE_00456", 24*time.Hour)

	// Stray files at either level are not quarantined folders.
	if err := os.WriteFile(filepath.Join(dest, DuplicatesDirName, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	folders, err := ScanQuarantined(dest)
	if err != nil {
		t.Fatalf("ScanQuarantined() error = %v", err)
	}
	if len(folders) != 3 {
		t.Fatalf("got %d folders, want 3", len(folders))
	}

	// Oldest first.
	wantOrder := []string{"CASE_00123_v1", "CASE_00456", "CASE_00123_v2"}
	for i, want := range wantOrder {
		if folders[i].Name != want {
			t.Errorf("folders[%d].Name = %s, want %s", i, folders[i].Name, want)
		}
	}

	if folders[0].CaseID != "00123" {
		t.Errorf("CaseID = %s, want 00123", folders[0].CaseID)
	}
	if folders[1].Path != filepath.Join(dest, DuplicatesDirName, "00456", "CASE_00456") {
		t.Errorf("Path = %s", folders[1].Path)
	}
}

func TestScanQuarantined_NoQuarantine(t *testing.T) {
	dest, err := os.MkdirTemp("", "quarantine-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dest)

	folders, err := ScanQuarantined(dest)
	if err != nil {
		t.Fatalf("ScanQuarantined() error = %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("got %d folders, want 0 for a destination without quarantine", len(folders))
	}
}
