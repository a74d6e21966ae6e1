// Package sync is the remote sync gateway: the single boundary between the
// client and the authoritative store for one session. It owns no state —
// it validates, forwards, and logs. All persistence calls are issued
// fire-and-forget by the UI; failures land in the log, never in a dialog,
// and the local optimistic state stands until the next snapshot corrects it.
package sync

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"treeboard/internal/board"
	"treeboard/internal/store"
)

var (
	// ErrEmptyContent rejects item creation with blank content.
	ErrEmptyContent = errors.New("item content is empty")
	// ErrUnknownCategory rejects item creation with an unrecognized category.
	ErrUnknownCategory = errors.New("unknown item category")
	// ErrRootProtected refuses deletion of a session's root item.
	ErrRootProtected = errors.New("root item cannot be deleted")
	// ErrSelfLink refuses a link from an item to itself.
	ErrSelfLink = errors.New("link endpoints are the same item")
	// ErrEndpointMissing refuses a link whose endpoint was not resolvable.
	ErrEndpointMissing = errors.New("link endpoint not found")
)

// Endpoint is one side of a link-to-be, captured by the caller from its
// current board snapshot. Passing the snapshot in (instead of the gateway
// re-reading shared state after a delay) closes the visibility race around
// just-created items: if the caller can name the endpoint, it has its
// coordinates.
type Endpoint struct {
	ID string
	X  float64
	Y  float64
}

// Gateway scopes a Store to one session.
type Gateway struct {
	store     store.Store
	sessionID string
	log       *zap.Logger

	itemFeed *store.ItemFeed
	linkFeed *store.LinkFeed
}

// NewGateway builds a gateway for one session.
func NewGateway(s store.Store, sessionID string, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{store: s, sessionID: sessionID, log: log}
}

// SessionID returns the session this gateway is bound to.
func (g *Gateway) SessionID() string { return g.sessionID }

// Subscribe opens the session's two live subscriptions, one per collection.
// It is called once per gateway; the feeds stay open until Close.
func (g *Gateway) Subscribe(ctx context.Context) (*store.ItemFeed, *store.LinkFeed) {
	if g.itemFeed == nil {
		g.itemFeed = g.store.WatchItems(ctx, g.sessionID)
		g.linkFeed = g.store.WatchLinks(ctx, g.sessionID)
	}
	return g.itemFeed, g.linkFeed
}

// Close stops the feeds. No deliveries occur after the channels close.
func (g *Gateway) Close() {
	if g.itemFeed != nil {
		g.itemFeed.Stop()
		g.linkFeed.Stop()
		g.itemFeed = nil
		g.linkFeed = nil
	}
}

// CreateItem persists a new item. Blank content is dropped without creating
// anything. The id is assigned here unless the caller reserved one (the
// seed policy passes the root id).
func (g *Gateway) CreateItem(ctx context.Context, it board.Item) error {
	if strings.TrimSpace(it.Content) == "" {
		g.log.Warn("dropping item with empty content", zap.String("session", g.sessionID))
		return ErrEmptyContent
	}
	// the relay accepts items straight off the wire, so the category is
	// validated and normalized here, not just in the client UI
	c, ok := board.ParseCategory(string(it.Category))
	if !ok {
		g.log.Warn("dropping item with unknown category",
			zap.String("session", g.sessionID), zap.String("category", string(it.Category)))
		return ErrUnknownCategory
	}
	it.Category = c
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Author == "" {
		it.Author = "Anonymous"
	}
	it.SessionID = g.sessionID
	if err := g.store.CreateItem(ctx, it); err != nil {
		g.log.Warn("create item failed", zap.String("id", it.ID), zap.Error(err))
		return err
	}
	return nil
}

// UpdateItem merges a partial patch into the remote item. Field values are
// not validated here; the store treats unknown ids as a no-op.
func (g *Gateway) UpdateItem(ctx context.Context, id string, p board.ItemPatch) error {
	if err := g.store.UpdateItem(ctx, id, p); err != nil {
		g.log.Warn("update item failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// DeleteItem removes an item, then best-effort deletes every link touching
// it. The cascade is sequential, not transactional: a failed link delete is
// logged and skipped, tolerating a dangling link until someone removes it.
// The session root is never deleted.
func (g *Gateway) DeleteItem(ctx context.Context, id string) error {
	if board.IsRootID(id) {
		g.log.Warn("refusing to delete root item", zap.String("id", id))
		return ErrRootProtected
	}
	touching, err := g.store.LinksTouching(ctx, g.sessionID, id)
	if err != nil {
		g.log.Warn("cascade lookup failed", zap.String("id", id), zap.Error(err))
		touching = nil
	}
	if err := g.store.DeleteItem(ctx, id); err != nil {
		g.log.Warn("delete item failed", zap.String("id", id), zap.Error(err))
		return err
	}
	for _, l := range touching {
		if err := g.store.DeleteLink(ctx, l.ID); err != nil {
			g.log.Warn("cascade link delete failed",
				zap.String("item", id), zap.String("link", l.ID), zap.Error(err))
		}
	}
	return nil
}

// CreateLink persists a link between two endpoints the caller resolved from
// its current snapshot. Endpoint coordinates are frozen as passed and never
// updated when the items later move.
func (g *Gateway) CreateLink(ctx context.Context, from, to Endpoint) error {
	if from.ID == "" || to.ID == "" {
		g.log.Warn("dropping link with unresolved endpoint",
			zap.String("from", from.ID), zap.String("to", to.ID))
		return ErrEndpointMissing
	}
	if from.ID == to.ID {
		return ErrSelfLink
	}
	l := board.Link{
		ID:        uuid.NewString(),
		SessionID: g.sessionID,
		FromID:    from.ID,
		ToID:      to.ID,
		FromX:     from.X,
		FromY:     from.Y,
		ToX:       to.X,
		ToY:       to.Y,
	}
	if err := g.store.CreateLink(ctx, l); err != nil {
		g.log.Warn("create link failed", zap.String("from", from.ID), zap.String("to", to.ID), zap.Error(err))
		return err
	}
	return nil
}

// DeleteLink removes a single link.
func (g *Gateway) DeleteLink(ctx context.Context, id string) error {
	if err := g.store.DeleteLink(ctx, id); err != nil {
		g.log.Warn("delete link failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// Items reads the session's current item collection from the store.
func (g *Gateway) Items(ctx context.Context) ([]board.Item, error) {
	return g.store.Items(ctx, g.sessionID)
}

// Links reads the session's current link collection from the store.
func (g *Gateway) Links(ctx context.Context) ([]board.Link, error) {
	return g.store.Links(ctx, g.sessionID)
}
