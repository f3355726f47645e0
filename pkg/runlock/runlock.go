// Package runlock guards a destination directory against concurrent
// migrations. Two runs moving folders into the same destination would race
// on collision probing, so the CLI takes the lock before any live run.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the destination directory for the
// duration of a live run.
const LockFileName = ".casemover.lock"

// HeldError indicates another process holds the destination lock.
type HeldError struct {
	Path string
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("another migration into this destination is already running (lock file %s is held)", e.Path)
}

// Lock represents an acquired destination lock.
type Lock struct {
	flock *flock.Flock
	path  string
}

// Acquire takes an exclusive, non-blocking lock on the destination
// directory. A held lock returns a *HeldError. Dry runs touch nothing in
// the destination and do not need the lock.
func Acquire(destDir string) (*Lock, error) {
	path := filepath.Join(destDir, LockFileName)
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	if !acquired {
		return nil, &HeldError{Path: path}
	}

	return &Lock{flock: fl, path: path}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file. Removal is best effort: a
// leftover unlocked file does not block the next run.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	os.Remove(l.path)
	return nil
}
