package store

import (
	"time"

	"treeboard/internal/board"
)

// Wire protocol spoken between the Remote store client and treeboardd.
// Clients send OpMsg frames; the server pushes SnapshotMsg frames carrying
// the full collection of one kind on every change.

type OpKind string

const (
	OpSubscribe  OpKind = "subscribe"
	OpCreateItem OpKind = "createItem"
	OpUpdateItem OpKind = "updateItem"
	OpDeleteItem OpKind = "deleteItem"
	OpCreateLink OpKind = "createLink"
	OpDeleteLink OpKind = "deleteLink"
)

// OpMsg is one client request. Only the fields for the given op are set.
type OpMsg struct {
	Op      OpKind     `json:"op"`
	Session string     `json:"session"`
	ItemID  string     `json:"itemId,omitempty"`
	LinkID  string     `json:"linkId,omitempty"`
	Item    *WireItem  `json:"item,omitempty"`
	Patch   *WirePatch `json:"patch,omitempty"`
	Link    *WireLink  `json:"link,omitempty"`
}

// SnapshotMsg is one server push: the complete current collection of one
// kind for one session.
type SnapshotMsg struct {
	Kind    string     `json:"kind"` // "items" or "links"
	Session string     `json:"session"`
	Items   []WireItem `json:"items,omitempty"`
	Links   []WireLink `json:"links,omitempty"`
}

const (
	SnapshotItems = "items"
	SnapshotLinks = "links"
)

type WireItem struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Placed    bool      `json:"placed"`
	CreatedAt time.Time `json:"createdAt"`
}

type WirePatch struct {
	Content *string  `json:"content,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Placed  *bool    `json:"placed,omitempty"`
}

type WireLink struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	FromID    string    `json:"fromId"`
	ToID      string    `json:"toId"`
	FromX     float64   `json:"fromX"`
	FromY     float64   `json:"fromY"`
	ToX       float64   `json:"toX"`
	ToY       float64   `json:"toY"`
	CreatedAt time.Time `json:"createdAt"`
}

func toWireItem(it board.Item) WireItem {
	return WireItem{
		ID: it.ID, SessionID: it.SessionID, Content: it.Content, Author: it.Author,
		Category: string(it.Category), X: it.X, Y: it.Y, Placed: it.Placed, CreatedAt: it.CreatedAt,
	}
}

func (w WireItem) Board() board.Item {
	return board.Item{
		ID: w.ID, SessionID: w.SessionID, Content: w.Content, Author: w.Author,
		Category: board.Category(w.Category), X: w.X, Y: w.Y, Placed: w.Placed, CreatedAt: w.CreatedAt,
	}
}

func toWirePatch(p board.ItemPatch) WirePatch {
	return WirePatch{Content: p.Content, X: p.X, Y: p.Y, Placed: p.Placed}
}

func (w WirePatch) ToBoard() board.ItemPatch {
	return board.ItemPatch{Content: w.Content, X: w.X, Y: w.Y, Placed: w.Placed}
}

func toWireLink(l board.Link) WireLink {
	return WireLink{
		ID: l.ID, SessionID: l.SessionID, FromID: l.FromID, ToID: l.ToID,
		FromX: l.FromX, FromY: l.FromY, ToX: l.ToX, ToY: l.ToY, CreatedAt: l.CreatedAt,
	}
}

func (w WireLink) Board() board.Link {
	return board.Link{
		ID: w.ID, SessionID: w.SessionID, FromID: w.FromID, ToID: w.ToID,
		FromX: w.FromX, FromY: w.FromY, ToX: w.ToX, ToY: w.ToY, CreatedAt: w.CreatedAt,
	}
}

// WireItems converts a board snapshot for a server push.
func WireItems(items []board.Item) []WireItem {
	out := make([]WireItem, 0, len(items))
	for _, it := range items {
		out = append(out, toWireItem(it))
	}
	return out
}

// WireLinks converts a board snapshot for a server push.
func WireLinks(links []board.Link) []WireLink {
	out := make([]WireLink, 0, len(links))
	for _, l := range links {
		out = append(out, toWireLink(l))
	}
	return out
}

// BoardItems converts a received snapshot back to board values.
func BoardItems(items []WireItem) []board.Item {
	out := make([]board.Item, 0, len(items))
	for _, w := range items {
		out = append(out, w.Board())
	}
	return out
}

// BoardLinks converts a received snapshot back to board values.
func BoardLinks(links []WireLink) []board.Link {
	out := make([]board.Link, 0, len(links))
	for _, w := range links {
		out = append(out, w.Board())
	}
	return out
}
