package board

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// dupeThreshold is the similarity above which two submissions are treated
// as near-duplicates.
const dupeThreshold = 0.8

// NearDuplicate scans the unplaced items of a category for content nearly
// identical to a new submission. Advisory only: callers surface a hint but
// still create the item.
func NearDuplicate(items []Item, c Category, content string) (Item, bool) {
	want := normalize(content)
	if want == "" {
		return Item{}, false
	}
	for _, it := range ByCategoryUnplaced(items, c) {
		if similarity(normalize(it.Content), want) >= dupeThreshold {
			return it, true
		}
	}
	return Item{}, false
}

func normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
