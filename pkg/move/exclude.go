package move

import (
	"path/filepath"
	"strings"
)

// Excluded checks a folder name against the exclusion patterns. Each pattern
// is tried two ways: as a glob (*, ?, bracket classes) and as a plain
// substring, both case-insensitively. The first pattern that matches by
// either interpretation excludes the folder and is returned for reporting.
func Excluded(name string, patterns []string) (bool, string) {
	if len(patterns) == 0 {
		return false, ""
	}

	folded := strings.ToLower(name)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		foldedPattern := strings.ToLower(pattern)

		// Malformed glob patterns simply fail to match; the substring
		// interpretation still applies.
		if matched, _ := filepath.Match(foldedPattern, folded); matched {
			return true, pattern
		}
		if strings.Contains(folded, foldedPattern) {
			return true, pattern
		}
	}

	return false, ""
}
