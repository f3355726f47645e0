package match

import (
	"errors"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/sdejongh/casemover/pkg/models"
)

// automatonIndex scans each folder name once against an Aho-Corasick
// automaton built from all identifiers. Two identifiers that fold to the same
// comparison form share one automaton pattern, so each pattern index maps
// back to every original identifier it stands for.
type automatonIndex struct {
	caseSensitive bool
	matcher       *ahocorasick.Matcher
	originals     [][]string
}

func newAutomatonIndex(caseIDs []string, caseSensitive bool) (*automatonIndex, error) {
	seen := make(map[string]bool, len(caseIDs))
	foldedIndex := make(map[string]int)

	var patterns []string
	var originals [][]string

	for _, id := range caseIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		folded := id
		if !caseSensitive {
			folded = strings.ToLower(id)
		}

		idx, ok := foldedIndex[folded]
		if !ok {
			idx = len(patterns)
			foldedIndex[folded] = idx
			patterns = append(patterns, folded)
			originals = append(originals, nil)
		}
		originals[idx] = append(originals[idx], id)
	}

	if len(patterns) == 0 {
		return nil, errors.New("no usable identifiers to build an automaton from")
	}

	return &automatonIndex{
		caseSensitive: caseSensitive,
		matcher:       ahocorasick.NewStringMatcher(patterns),
		originals:     originals,
	}, nil
}

func (a *automatonIndex) match(folders []models.FolderRecord, result map[string][]models.FolderRecord) {
	for _, folder := range folders {
		name := folder.Name
		if !a.caseSensitive {
			name = strings.ToLower(name)
		}

		for _, hit := range a.matcher.Match([]byte(name)) {
			for _, original := range a.originals[hit] {
				result[original] = append(result[original], folder)
			}
		}
	}
}

func (a *automatonIndex) name() models.MatcherStrategy {
	return models.StrategyAutomaton
}
