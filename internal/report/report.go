// Package report renders read-only aggregates of a board snapshot. It
// never mutates board state.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"treeboard/internal/board"
)

// Summary aggregates one session's snapshot.
type Summary struct {
	SessionID   string
	Total       int
	ByCategory  map[board.Category]int
	PlacedCount int
	LinkCount   int
	// Degree maps item id to the number of links touching it.
	Degree map[string]int
}

// Build computes a summary from the current snapshots.
func Build(sessionID string, items []board.Item, links []board.Link) Summary {
	s := Summary{
		SessionID:  sessionID,
		Total:      len(items),
		ByCategory: make(map[board.Category]int),
		LinkCount:  len(links),
		Degree:     make(map[string]int),
	}
	for _, it := range items {
		s.ByCategory[it.Category]++
		if it.Placed {
			s.PlacedCount++
		}
	}
	for _, l := range links {
		s.Degree[l.FromID]++
		s.Degree[l.ToID]++
	}
	return s
}

// MostConnected returns the item with the highest link degree, if any
// links exist. Ties break toward the earlier-created item.
func (s Summary) MostConnected(items []board.Item) (board.Item, bool) {
	best := board.Item{}
	bestDeg := 0
	for _, it := range items {
		if d := s.Degree[it.ID]; d > bestDeg {
			best = it
			bestDeg = d
		}
	}
	return best, bestDeg > 0
}

// Markdown renders the exported workshop document.
func Markdown(sessionID string, items []board.Item, links []board.Link) string {
	s := Build(sessionID, items, links)

	var b strings.Builder
	fmt.Fprintf(&b, "# Problem tree — session %s\n\n", sessionID)
	fmt.Fprintf(&b, "%d notes (%d placed), %d links.\n\n", s.Total, s.PlacedCount, s.LinkCount)

	for _, c := range board.Categories() {
		section := make([]board.Item, 0)
		for _, it := range items {
			if it.Category == c {
				section = append(section, it)
			}
		}
		if len(section) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", sectionTitle(c))
		sort.SliceStable(section, func(i, j int) bool {
			return s.Degree[section[i].ID] > s.Degree[section[j].ID]
		})
		for _, it := range section {
			fmt.Fprintf(&b, "- %s — %s", it.Content, it.Author)
			if d := s.Degree[it.ID]; d > 0 {
				fmt.Fprintf(&b, " (%d links)", d)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(links) > 0 {
		b.WriteString("## Connections\n\n")
		for _, l := range links {
			from, _ := board.FindItem(items, l.FromID)
			to, _ := board.FindItem(items, l.ToID)
			fmt.Fprintf(&b, "- %s → %s\n", labelFor(from, l.FromID), labelFor(to, l.ToID))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// sectionTitle maps a category to its display heading, matching the panel
// names in the client.
func sectionTitle(c board.Category) string {
	switch c {
	case board.CategoryProblem:
		return "Problem"
	case board.CategoryCause:
		return "Causes"
	case board.CategoryConsequence:
		return "Consequences"
	}
	return string(c)
}

// labelFor tolerates dangling links whose endpoint item is gone.
func labelFor(it board.Item, id string) string {
	if it.ID == "" {
		return fmt.Sprintf("(deleted %s)", id)
	}
	return it.Content
}

// Export writes the markdown document to path.
func Export(path, sessionID string, items []board.Item, links []board.Link) error {
	return os.WriteFile(path, []byte(Markdown(sessionID, items, links)), 0o644)
}
