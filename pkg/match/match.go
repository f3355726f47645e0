// Package match maps CaseIDs to the folders whose names contain them.
//
// Matching is plain substring containment over folder names, case-insensitive
// unless configured otherwise. Two interchangeable strategies are provided: a
// length-bucketed scan and an Aho-Corasick automaton. Both return identical
// results for any input.
package match

import (
	"context"

	"github.com/sdejongh/casemover/pkg/logging"
	"github.com/sdejongh/casemover/pkg/models"
)

// Options configures a Matcher.
type Options struct {
	// CaseSensitive disables case folding of identifiers and folder names.
	CaseSensitive bool

	// Strategy selects the matching implementation. StrategyAuto and
	// StrategyAutomaton try the automaton first and fall back to the bucket
	// scan when it cannot be built.
	Strategy models.MatcherStrategy

	// Logger receives the fallback warning. Defaults to a null logger.
	Logger logging.Logger
}

// strategy is the common surface of the two matching implementations. The
// result map is pre-seeded with every identifier as a key; implementations
// only append folders.
type strategy interface {
	match(folders []models.FolderRecord, result map[string][]models.FolderRecord)
	name() models.MatcherStrategy
}

// Matcher finds, for each identifier, every folder whose name contains it.
type Matcher struct {
	caseIDs []string
	impl    strategy
}

// New builds a Matcher over the given identifiers. The identifier slice is
// deduplicated internally; empty identifiers never match anything.
func New(caseIDs []string, opts Options) *Matcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	m := &Matcher{caseIDs: caseIDs}

	switch opts.Strategy {
	case models.StrategyBucket:
		m.impl = newBucketIndex(caseIDs, opts.CaseSensitive)
	default:
		impl, err := newAutomatonIndex(caseIDs, opts.CaseSensitive)
		if err != nil {
			logger.Warn(context.Background(), "falling back to bucket strategy", logging.Fields{
				"reason": err.Error(),
			})
			m.impl = newBucketIndex(caseIDs, opts.CaseSensitive)
		} else {
			m.impl = impl
		}
	}

	return m
}

// Strategy reports the implementation actually in use, after any fallback.
func (m *Matcher) Strategy() models.MatcherStrategy {
	return m.impl.name()
}

// Match returns a mapping from every identifier to the folders whose names
// contain it. Identifiers with no matches are present with an empty list.
// Folder order within each list follows the input folder order.
func (m *Matcher) Match(folders []models.FolderRecord) map[string][]models.FolderRecord {
	result := make(map[string][]models.FolderRecord, len(m.caseIDs))
	for _, id := range m.caseIDs {
		if _, ok := result[id]; !ok {
			result[id] = nil
		}
	}

	m.impl.match(folders, result)

	return result
}
