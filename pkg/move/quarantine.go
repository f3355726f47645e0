package move

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DuplicatesDirName is the directory under the destination root that holds
// quarantined duplicate folders, one sub-directory per CaseID.
const DuplicatesDirName = "_DUPLICATES"

// QuarantinedFolder describes one folder sitting in quarantine.
type QuarantinedFolder struct {
	CaseID  string
	Name    string
	Path    string
	ModTime time.Time
}

// ScanQuarantined lists every quarantined folder under the destination,
// oldest first. A destination without a quarantine directory yields an empty
// list, not an error.
func ScanQuarantined(destPath string) ([]QuarantinedFolder, error) {
	root := filepath.Join(destPath, DuplicatesDirName)

	caseDirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read quarantine directory: %w", err)
	}

	var result []QuarantinedFolder
	for _, caseDir := range caseDirs {
		if !caseDir.IsDir() {
			continue
		}

		caseID := caseDir.Name()
		entries, err := os.ReadDir(filepath.Join(root, caseID))
		if err != nil {
			return nil, fmt.Errorf("failed to read quarantine entries for %s: %w", caseID, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat quarantined folder: %w", err)
			}
			result = append(result, QuarantinedFolder{
				CaseID:  caseID,
				Name:    entry.Name(),
				Path:    filepath.Join(root, caseID, entry.Name()),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ModTime.Before(result[j].ModTime)
	})

	return result, nil
}
