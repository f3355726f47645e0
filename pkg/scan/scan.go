// Package scan enumerates candidate folders below a source root.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/casemover/pkg/models"
)

// Options controls a scan.
type Options struct {
	// MaxFolders stops the traversal once that many folders have been
	// collected. Zero means unlimited.
	MaxFolders int
}

// Warning records a non-fatal access failure encountered during traversal.
// The affected subtree is skipped and the scan continues.
type Warning struct {
	Path string
	Err  error
}

// Result holds the folders found below the root.
type Result struct {
	Folders   []models.FolderRecord
	Warnings  []Warning
	Truncated bool
}

// NotFoundError indicates the source root does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source directory does not exist: %s", e.Path)
}

// NotADirectoryError indicates the source root is not a directory.
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("source path is not a directory: %s", e.Path)
}

// Scan walks the tree below root and returns every directory strictly below
// it. The root itself is not part of the result. Symbolic links are reported
// where they physically are but never followed. Per-subtree access failures
// are collected as warnings and do not abort the scan.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: root}
		}
		return nil, fmt.Errorf("failed to access source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: root}
	}

	result := &Result{}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtree: record and keep going with siblings.
			result.Warnings = append(result.Warnings, Warning{Path: p, Err: walkErr})
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == root {
			return nil
		}

		result.Folders = append(result.Folders, models.FolderRecord{
			Name: d.Name(),
			Path: p,
		})

		if opts.MaxFolders > 0 && len(result.Folders) >= opts.MaxFolders {
			result.Truncated = true
			return fs.SkipAll
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	return result, nil
}
