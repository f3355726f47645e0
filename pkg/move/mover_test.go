package move

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/casemover/pkg/ratelimit"
)

func TestMover_Move(t *testing.T) {
	base, err := os.MkdirTemp("", "mover-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(base)

	source := filepath.Join(base, "src", "CASE_00123")
	if err := os.MkdirAll(filepath.Join(source, "nested"), 0755); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "nested", "doc.txt"), []byte("evidence"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	dest := filepath.Join(base, "dst", "CASE_00123")

	mover := NewMover(nil, 0)
	if err := mover.Move(context.Background(), source, dest); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	if _, err := os.Lstat(source); !os.IsNotExist(err) {
		t.Error("source should be gone after the move")
	}
	content, err := os.ReadFile(filepath.Join(dest, "nested", "doc.txt"))
	if err != nil {
		t.Fatalf("Failed to read moved file: %v", err)
	}
	if string(content) != "evidence" {
		t.Errorf("moved content = %q, want 'evidence'", content)
	}
}

func TestMover_Move_SourceMissing(t *testing.T) {
	base, err := os.MkdirTemp("", "mover-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(base)

	mover := NewMover(nil, 0)
	err = mover.Move(context.Background(), filepath.Join(base, "gone"), filepath.Join(base, "dest"))
	if err == nil {
		t.Fatal("Move() should fail when the source vanished")
	}
}

func TestMover_Move_DestinationTaken(t *testing.T) {
	base, err := os.MkdirTemp("", "mover-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(base)

	source := filepath.Join(base, "CASE_00123")
	dest := filepath.Join(base, "taken")
	for _, dir := range []string{source, dest} {
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
	}

	mover := NewMover(nil, 0)
	err = mover.Move(context.Background(), source, dest)
	if err == nil {
		t.Fatal("Move() should refuse an occupied destination")
	}
	if _, statErr := os.Lstat(source); statErr != nil {
		t.Error("source must be untouched after a refused move")
	}
}

func TestMover_CopyTree(t *testing.T) {
	base, err := os.MkdirTemp("", "mover-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(base)

	source := filepath.Join(base, "src")
	if err := os.MkdirAll(filepath.Join(source, "sub"), 0755); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "a.txt"), []byte("aaa"), 0640); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "sub", "b.txt"), []byte("bbb"), 0600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	stamp := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(source, "a.txt"), stamp, stamp); err != nil {
		t.Fatalf("Failed to set times: %v", err)
	}

	// A generous limit exercises the throttled reader without slowing the
	// test down.
	mover := NewMover(ratelimit.NewLimiter(100*1024*1024), 4096)

	dest := filepath.Join(base, "dst")
	if err := mover.copyTree(context.Background(), source, dest); err != nil {
		t.Fatalf("copyTree() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("Failed to read copied file: %v", err)
	}
	if string(content) != "bbb" {
		t.Errorf("copied content = %q, want 'bbb'", content)
	}

	info, err := os.Stat(filepath.Join(dest, "a.txt"))
	if err != nil {
		t.Fatalf("Failed to stat copy: %v", err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("copied mode = %v, want 0640", info.Mode().Perm())
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("copied mtime = %v, want %v", info.ModTime(), stamp)
	}

	// Source is left alone; deletion is Move's job.
	if _, err := os.Lstat(filepath.Join(source, "a.txt")); err != nil {
		t.Error("copyTree must not remove the source")
	}
}

func TestMover_CopyTree_Symlink(t *testing.T) {
	base, err := os.MkdirTemp("", "mover-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(base)

	source := filepath.Join(base, "src")
	if err := os.Mkdir(source, 0755); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "real.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := os.Symlink("real.txt", filepath.Join(source, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	mover := NewMover(nil, 0)
	dest := filepath.Join(base, "dst")
	if err := mover.copyTree(context.Background(), source, dest); err != nil {
		t.Fatalf("copyTree() error = %v", err)
	}

	target, err := os.Readlink(filepath.Join(dest, "link"))
	if err != nil {
		t.Fatalf("copied entry is not a symlink: %v", err)
	}
	if target != "real.txt" {
		t.Errorf("link target = %q, want real.txt", target)
	}
}

func TestMover_CopyTree_Cancelled(t *testing.T) {
	base, err := os.MkdirTemp("", "mover-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(base)

	source := filepath.Join(base, "src")
	if err := os.Mkdir(source, 0755); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mover := NewMover(nil, 0)
	err = mover.copyTree(ctx, source, filepath.Join(base, "dst"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("copyTree() error = %v, want context.Canceled", err)
	}
}
