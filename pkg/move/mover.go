package move

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sdejongh/casemover/pkg/ratelimit"
)

// defaultBufferSize is used for copy fallbacks when no size is configured.
const defaultBufferSize = 1024 * 1024

// Mover performs the physical relocation of one folder. Rename is tried
// first; when source and destination are on different volumes the rename
// fails and the folder is copied then deleted instead.
type Mover struct {
	limiter    *ratelimit.Limiter
	bufferSize int
}

// NewMover creates a mover. A nil limiter disables bandwidth limiting.
func NewMover(limiter *ratelimit.Limiter, bufferSize int) *Mover {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Mover{limiter: limiter, bufferSize: bufferSize}
}

// Move relocates the folder at source to dest. Both paths are re-verified
// first: the source must still exist and the destination must still be free,
// the batch may have been running for a while since they were last checked.
func (m *Mover) Move(ctx context.Context, source, dest string) error {
	if _, err := os.Lstat(source); err != nil {
		return fmt.Errorf("failed to access source folder: %w", err)
	}

	taken, err := entryExists(dest)
	if err != nil {
		return fmt.Errorf("failed to check destination: %w", err)
	}
	if taken {
		return fmt.Errorf("destination already exists: %s", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination parent: %w", err)
	}

	if err := os.Rename(source, dest); err == nil {
		return nil
	}

	// Rename failed, typically a cross-volume move. Copy everything over,
	// then remove the source.
	if err := m.copyTree(ctx, source, dest); err != nil {
		return err
	}
	if err := os.RemoveAll(source); err != nil {
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}

	return nil
}

// copyTree recursively copies a directory, preserving permissions and
// modification times. Directory times are restored deepest-first after their
// contents are in place, later writes would clobber them otherwise.
func (m *Mover) copyTree(ctx context.Context, source, dest string) error {
	type dirStamp struct {
		path    string
		modTime time.Time
	}
	var dirs []dirStamp

	err := filepath.WalkDir(source, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(source, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			dirs = append(dirs, dirStamp{path: target, modTime: info.ModTime()})
		case d.Type()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(p)
			if err != nil {
				return fmt.Errorf("failed to read symlink: %w", err)
			}
			if err := os.Symlink(linkTarget, target); err != nil {
				return fmt.Errorf("failed to recreate symlink: %w", err)
			}
		default:
			if err := m.copyFile(ctx, p, target, info); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chtimes(dirs[i].path, dirs[i].modTime, dirs[i].modTime); err != nil {
			return fmt.Errorf("failed to set directory times: %w", err)
		}
	}

	return nil
}

// copyFile copies one regular file, preserving its mode and mtime.
func (m *Mover) copyFile(ctx context.Context, source, dest string, info fs.FileInfo) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	reader := ratelimit.NewReadCloser(ctx, in, m.limiter)
	defer reader.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	buf := make([]byte, m.bufferSize)
	// The writer is wrapped so io.CopyBuffer cannot promote it to
	// ReaderFrom and bypass the configured buffer.
	if _, err := io.CopyBuffer(struct{ io.Writer }{out}, reader, buf); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize destination file: %w", err)
	}

	if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time: %w", err)
	}

	return nil
}
