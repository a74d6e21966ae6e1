// Package controller holds the client-side interaction state machines:
// drag sessions, the two-phase link selector, the panel layout, and the
// session seed policy. Transitions are pure functions over small value
// types; the TUI owns one instance of each and applies the side effects
// (optimistic patches, persist requests) the transitions describe.
package controller

import (
	"treeboard/internal/board"
)

// Drag is the drag-session state machine: Idle, or Dragging one item with
// the pointer offset captured at press time. At most one item is dragged
// at a time per client because Start requires Idle.
type Drag struct {
	itemID string
	offX   float64
	offY   float64
}

// Active reports whether a drag session is in progress.
func (d Drag) Active() bool { return d.itemID != "" }

// ItemID returns the dragged item's id, or "" when idle.
func (d Drag) ItemID() string { return d.itemID }

// Start begins a drag on pointer-down, capturing the offset between the
// pointer and the item's top-left corner. Ignored while already dragging.
func (d Drag) Start(it board.Item, pointerX, pointerY float64) Drag {
	if d.Active() {
		return d
	}
	return Drag{itemID: it.ID, offX: pointerX - it.X, offY: pointerY - it.Y}
}

// Move computes the clamped position for the current pointer and returns
// the optimistic patch to apply (position plus placed=true). Each move
// supersedes the previous one; the hot path does no I/O here.
func (d Drag) Move(pointerX, pointerY float64, b board.Bounds, itemW, itemH float64) (string, board.ItemPatch, bool) {
	if !d.Active() {
		return "", board.ItemPatch{}, false
	}
	x, y := b.Clamp(pointerX-d.offX, pointerY-d.offY, itemW, itemH)
	return d.itemID, board.MovePatch(x, y), true
}

// End releases the drag. The last optimistic patch already issued stands;
// there is no further side effect.
func (d Drag) End() Drag { return Drag{} }
