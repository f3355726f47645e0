package move

import (
	"fmt"
	"os"
	"path/filepath"
)

// maxResolveAttempts bounds the numeric-suffix probe so a pathological
// destination directory cannot loop the resolver forever.
const maxResolveAttempts = 10000

// ResolutionExhaustedError indicates that no free destination name was found
// within the probe ceiling. It usually means the destination has accumulated
// too many stale copies of the same folder.
type ResolutionExhaustedError struct {
	Dir      string
	Name     string
	Attempts int
}

func (e *ResolutionExhaustedError) Error() string {
	return fmt.Sprintf("no free destination name for %q in %s after %d attempts", e.Name, e.Dir, e.Attempts)
}

// Resolve returns a destination path under destDir whose basename neither
// exists on disk nor is present in claimed. It tries desiredName first, then
// desiredName_1, desiredName_2, and so on. Callers that intend to use the
// returned path must claim its basename before moving.
func Resolve(destDir, desiredName string, claimed ClaimSet) (string, error) {
	for i := 0; i <= maxResolveAttempts; i++ {
		candidate := desiredName
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d", desiredName, i)
		}

		if claimed.Claimed(candidate) {
			continue
		}

		full := filepath.Join(destDir, candidate)
		taken, err := entryExists(full)
		if err != nil {
			return "", fmt.Errorf("failed to probe destination %s: %w", full, err)
		}
		if !taken {
			return full, nil
		}
	}

	return "", &ResolutionExhaustedError{Dir: destDir, Name: desiredName, Attempts: maxResolveAttempts}
}

// entryExists reports whether any entry (directory, file or symlink) occupies
// the path. Symlinks are not followed, a dangling link still takes the name.
func entryExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
