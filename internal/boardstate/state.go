// Package boardstate holds the client's current view of one session: the
// latest remote snapshots of items and links, plus a small overlay of
// optimistic local patches applied before remote confirmation. The overlay
// is merged on every read and cleared per entry once a snapshot reflects
// (or deletes) the patched item.
//
// A State is owned by the UI event loop and must only be touched from it.
package boardstate

import (
	"treeboard/internal/board"
)

// State is the in-process source of truth for rendering. Remote snapshots
// always win eventually; optimistic patches only bridge the gap until the
// echo arrives.
type State struct {
	items   []board.Item
	links   []board.Link
	overlay map[string]board.ItemPatch
}

// New returns an empty state.
func New() *State {
	return &State{overlay: make(map[string]board.ItemPatch)}
}

// ApplyItemsSnapshot replaces the item collection with a full remote
// snapshot. Safe to call on every feed tick, including redundant ones.
// Overlay entries the snapshot already reflects are dropped; entries for
// items the snapshot no longer carries are dropped too.
func (s *State) ApplyItemsSnapshot(snap []board.Item) {
	s.items = snap
	for id, p := range s.overlay {
		it, ok := board.FindItem(snap, id)
		if !ok || p.Apply(it) == it {
			delete(s.overlay, id)
		}
	}
}

// ApplyLinksSnapshot replaces the link collection with a full remote
// snapshot. Links carry no optimistic overlay.
func (s *State) ApplyLinksSnapshot(snap []board.Link) {
	s.links = snap
}

// ApplyPatch records an optimistic local mutation of one item. Later
// patches supersede earlier ones field by field, so a burst of drag moves
// collapses into the final position. The caller is responsible for issuing
// the matching persist request.
func (s *State) ApplyPatch(id string, p board.ItemPatch) {
	if p.Empty() {
		return
	}
	prev, ok := s.overlay[id]
	if !ok {
		s.overlay[id] = p
		return
	}
	if p.Content != nil {
		prev.Content = p.Content
	}
	if p.X != nil {
		prev.X = p.X
	}
	if p.Y != nil {
		prev.Y = p.Y
	}
	if p.Placed != nil {
		prev.Placed = p.Placed
	}
	s.overlay[id] = prev
}

// Items returns the current view: the latest snapshot with the optimistic
// overlay merged on top. Recomputed on every read.
func (s *State) Items() []board.Item {
	if len(s.overlay) == 0 {
		return s.items
	}
	out := make([]board.Item, len(s.items))
	for i, it := range s.items {
		if p, ok := s.overlay[it.ID]; ok {
			it = p.Apply(it)
		}
		out[i] = it
	}
	return out
}

// Links returns the current link collection.
func (s *State) Links() []board.Link { return s.links }

// Item looks one item up in the merged view.
func (s *State) Item(id string) (board.Item, bool) {
	return board.FindItem(s.Items(), id)
}

// ByCategoryUnplaced returns a category's tray items.
func (s *State) ByCategoryUnplaced(c board.Category) []board.Item {
	return board.ByCategoryUnplaced(s.Items(), c)
}

// Placed returns the items on the canvas.
func (s *State) Placed() []board.Item {
	return board.Placed(s.Items())
}

// Empty reports whether no item has been observed yet. The seed policy
// keys off this; during initial load it can transiently be true.
func (s *State) Empty() bool { return len(s.items) == 0 }

// PendingPatches reports how many optimistic entries await confirmation.
func (s *State) PendingPatches() int { return len(s.overlay) }
