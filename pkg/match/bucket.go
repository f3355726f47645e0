package match

import (
	"sort"
	"strings"

	"github.com/sdejongh/casemover/pkg/models"
)

// idPattern pairs an identifier with its comparison form.
type idPattern struct {
	original string
	folded   string
}

// lengthBucket groups identifiers sharing one folded byte length.
type lengthBucket struct {
	length int
	ids    []idPattern
}

// bucketIndex partitions identifiers by length so that a folder name of
// length L is only tested against identifiers that can fit inside it.
type bucketIndex struct {
	caseSensitive bool
	buckets       []lengthBucket
}

func newBucketIndex(caseIDs []string, caseSensitive bool) *bucketIndex {
	seen := make(map[string]bool, len(caseIDs))
	byLength := make(map[int][]idPattern)

	for _, id := range caseIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		folded := id
		if !caseSensitive {
			folded = strings.ToLower(id)
		}
		byLength[len(folded)] = append(byLength[len(folded)], idPattern{original: id, folded: folded})
	}

	lengths := make([]int, 0, len(byLength))
	for l := range byLength {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	buckets := make([]lengthBucket, 0, len(lengths))
	for _, l := range lengths {
		buckets = append(buckets, lengthBucket{length: l, ids: byLength[l]})
	}

	return &bucketIndex{caseSensitive: caseSensitive, buckets: buckets}
}

func (b *bucketIndex) match(folders []models.FolderRecord, result map[string][]models.FolderRecord) {
	for _, folder := range folders {
		name := folder.Name
		if !b.caseSensitive {
			name = strings.ToLower(name)
		}

		for _, bucket := range b.buckets {
			if bucket.length > len(name) {
				// Buckets are sorted; nothing longer can fit either.
				break
			}
			for _, p := range bucket.ids {
				if strings.Contains(name, p.folded) {
					result[p.original] = append(result[p.original], folder)
				}
			}
		}
	}
}

func (b *bucketIndex) name() models.MatcherStrategy {
	return models.StrategyBucket
}
