// Package store defines the remote document store boundary: per-document
// create/update/delete plus a per-session subscription feed that delivers
// the complete current collection on every tick. Implementations: Local
// (sqlite in-process, polling feed) and Remote (treeboardd over WebSocket).
package store

import (
	"context"

	"treeboard/internal/board"
)

// Store is the authoritative document store as seen by one client. It holds
// no business rules; validation, root protection and cascades live in the
// sync gateway layered on top.
type Store interface {
	CreateItem(ctx context.Context, it board.Item) error
	UpdateItem(ctx context.Context, id string, p board.ItemPatch) error
	DeleteItem(ctx context.Context, id string) error
	CreateLink(ctx context.Context, l board.Link) error
	DeleteLink(ctx context.Context, id string) error

	// Items and Links read the current full collection of one session.
	Items(ctx context.Context, sessionID string) ([]board.Item, error)
	Links(ctx context.Context, sessionID string) ([]board.Link, error)

	// LinksTouching reads the links referencing one item as either endpoint,
	// for the delete cascade.
	LinksTouching(ctx context.Context, sessionID, itemID string) ([]board.Link, error)

	// WatchItems and WatchLinks open independent live subscriptions. Each
	// feed delivers the full current collection, starting with the state at
	// subscribe time. Feeds conflate: a slow receiver only ever sees the
	// latest snapshot.
	WatchItems(ctx context.Context, sessionID string) *ItemFeed
	WatchLinks(ctx context.Context, sessionID string) *LinkFeed

	Close() error
}

// ItemFeed is a live item-collection subscription. C is closed after Stop.
type ItemFeed struct {
	C    <-chan []board.Item
	stop func()
}

// Stop tears the subscription down; no further deliveries occur after C is
// observed closed.
func (f *ItemFeed) Stop() {
	if f.stop != nil {
		f.stop()
	}
}

// LinkFeed is a live link-collection subscription. C is closed after Stop.
type LinkFeed struct {
	C    <-chan []board.Link
	stop func()
}

func (f *LinkFeed) Stop() {
	if f.stop != nil {
		f.stop()
	}
}

func itemsEqual(a, b []board.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func linksEqual(a, b []board.Link) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
