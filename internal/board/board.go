// Package board holds the problem-tree data model: sticky-note items, the
// links between them, and the pure helpers the rest of the app derives its
// views from. Nothing in here talks to a store or a terminal.
package board

import (
	"strings"
	"time"
)

// Category classifies an item on the tree.
type Category string

const (
	CategoryProblem     Category = "problem"
	CategoryCause       Category = "cause"
	CategoryConsequence Category = "consequence"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryProblem, CategoryCause, CategoryConsequence}
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryProblem, CategoryCause, CategoryConsequence:
		return c, true
	}
	return "", false
}

const rootIDPrefix = "root-"

// RootID returns the reserved id of a session's central problem item.
func RootID(sessionID string) string { return rootIDPrefix + sessionID }

// IsRootID reports whether id names a session root item. Root items are
// seeded once per session and are never deletable.
func IsRootID(id string) bool { return strings.HasPrefix(id, rootIDPrefix) }

// Item is one sticky note. Category and Author are fixed at creation;
// Content and position are mutable; Placed only ever goes false -> true.
type Item struct {
	ID        string
	SessionID string
	Content   string
	Author    string
	Category  Category
	X         float64
	Y         float64
	Placed    bool
	CreatedAt time.Time
}

// Root reports whether this is the session's central problem item.
func (it Item) Root() bool { return IsRootID(it.ID) }

// ItemPatch is a partial update to an item. Nil fields are left untouched.
type ItemPatch struct {
	Content *string
	X       *float64
	Y       *float64
	Placed  *bool
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Content == nil && p.X == nil && p.Y == nil && p.Placed == nil
}

// Apply merges the patch into an item.
func (p ItemPatch) Apply(it Item) Item {
	if p.Content != nil {
		it.Content = *p.Content
	}
	if p.X != nil {
		it.X = *p.X
	}
	if p.Y != nil {
		it.Y = *p.Y
	}
	// placed never reverts once true
	if p.Placed != nil && *p.Placed {
		it.Placed = true
	}
	return it
}

// MovePatch builds the patch a drag emits: new position, placed on board.
func MovePatch(x, y float64) ItemPatch {
	placed := true
	return ItemPatch{X: &x, Y: &y, Placed: &placed}
}

// ContentPatch builds a content-only patch.
func ContentPatch(content string) ItemPatch {
	return ItemPatch{Content: &content}
}

// Link is a directed connection between two items. Endpoint coordinates are
// frozen at creation time and are not updated when the items later move.
type Link struct {
	ID        string
	SessionID string
	FromID    string
	ToID      string
	FromX     float64
	FromY     float64
	ToX       float64
	ToY       float64
	CreatedAt time.Time
}

// Bounds is the visible board area in board coordinates.
type Bounds struct {
	Width  float64
	Height float64
}

// Clamp confines an item's top-left corner so the full itemW x itemH
// footprint stays inside the bounds. Origin is (0,0).
func (b Bounds) Clamp(x, y, itemW, itemH float64) (float64, float64) {
	maxX := b.Width - itemW
	maxY := b.Height - itemH
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	if x < 0 {
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if y < 0 {
		y = 0
	} else if y > maxY {
		y = maxY
	}
	return x, y
}

// ByCategoryUnplaced returns the items of one category still sitting in
// their tray, in arrival order.
func ByCategoryUnplaced(items []Item, c Category) []Item {
	var out []Item
	for _, it := range items {
		if it.Category == c && !it.Placed {
			out = append(out, it)
		}
	}
	return out
}

// Placed returns the items that have been dragged onto the canvas.
func Placed(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.Placed {
			out = append(out, it)
		}
	}
	return out
}

// FindItem looks an item up by id.
func FindItem(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// LinksTouching returns the links that reference id as either endpoint.
func LinksTouching(links []Link, id string) []Link {
	var out []Link
	for _, l := range links {
		if l.FromID == id || l.ToID == id {
			out = append(out, l)
		}
	}
	return out
}
