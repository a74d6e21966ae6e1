// Package syncserver is the treeboardd session hub: it applies client ops
// through the sync gateway and pushes full per-session snapshots to every
// subscribed WebSocket connection on every change.
package syncserver

import (
	"context"
	"net/http"
	stdsync "sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"treeboard/internal/store"
	"treeboard/internal/sync"
)

// Hub owns the authoritative store and the live subscriber sets.
type Hub struct {
	store *store.Local
	log   *zap.Logger

	mu       stdsync.Mutex
	gateways map[string]*sync.Gateway
	subs     map[string]map[*conn]struct{}
}

type conn struct {
	ws      *websocket.Conn
	writeMu stdsync.Mutex
	// sessions this connection subscribed to, for cleanup
	sessions map[string]struct{}
}

func (c *conn) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

// New builds a hub over the authoritative store.
func New(s *store.Local, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		store:    s,
		log:      log,
		gateways: make(map[string]*sync.Gateway),
		subs:     make(map[string]map[*conn]struct{}),
	}
}

func (h *Hub) gateway(sessionID string) *sync.Gateway {
	h.mu.Lock()
	defer h.mu.Unlock()
	g, ok := h.gateways[sessionID]
	if !ok {
		g = sync.NewGateway(h.store, sessionID, h.log)
		h.gateways[sessionID] = g
	}
	return g
}

var upgrader = websocket.Upgrader{
	// the share link is opened from arbitrary origins by design; there is
	// no auth layer in front of a workshop board
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades and serves one client connection.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("upgrade failed", zap.Error(err))
			return
		}
		c := &conn{ws: ws, sessions: make(map[string]struct{})}
		h.serve(r.Context(), c)
	})
}

func (h *Hub) serve(ctx context.Context, c *conn) {
	defer h.drop(c)
	for {
		var msg store.OpMsg
		if err := c.ws.ReadJSON(&msg); err != nil {
			return
		}
		h.apply(ctx, c, msg)
	}
}

// apply executes one op. Failures are logged and swallowed: the client
// fired and forgot, and its optimistic state self-corrects on the next
// snapshot it does receive.
func (h *Hub) apply(ctx context.Context, c *conn, msg store.OpMsg) {
	switch msg.Op {
	case store.OpSubscribe:
		h.subscribe(ctx, c, msg.Session)

	case store.OpCreateItem:
		if msg.Item == nil {
			return
		}
		g := h.gateway(msg.Session)
		if err := g.CreateItem(ctx, msg.Item.Board()); err != nil {
			return
		}
		h.broadcastItems(ctx, msg.Session)

	case store.OpUpdateItem:
		if msg.Patch == nil || msg.ItemID == "" {
			return
		}
		session := h.sessionOfItem(ctx, msg.ItemID)
		if session == "" {
			return // update of a deleted document: tolerated no-op
		}
		if err := h.gateway(session).UpdateItem(ctx, msg.ItemID, msg.Patch.ToBoard()); err != nil {
			return
		}
		h.broadcastItems(ctx, session)

	case store.OpDeleteItem:
		if msg.ItemID == "" {
			return
		}
		session := h.sessionOfItem(ctx, msg.ItemID)
		if session == "" {
			return
		}
		if err := h.gateway(session).DeleteItem(ctx, msg.ItemID); err != nil {
			return
		}
		h.broadcastItems(ctx, session)
		h.broadcastLinks(ctx, session) // cascade may have removed links

	case store.OpCreateLink:
		if msg.Link == nil {
			return
		}
		l := msg.Link
		g := h.gateway(msg.Session)
		err := g.CreateLink(ctx,
			sync.Endpoint{ID: l.FromID, X: l.FromX, Y: l.FromY},
			sync.Endpoint{ID: l.ToID, X: l.ToX, Y: l.ToY})
		if err != nil {
			return
		}
		h.broadcastLinks(ctx, msg.Session)

	case store.OpDeleteLink:
		if msg.LinkID == "" {
			return
		}
		session := h.sessionOfLink(ctx, msg.LinkID)
		if session == "" {
			return
		}
		if err := h.gateway(session).DeleteLink(ctx, msg.LinkID); err != nil {
			return
		}
		h.broadcastLinks(ctx, session)

	default:
		h.log.Warn("unknown op", zap.String("op", string(msg.Op)))
	}
}

func (h *Hub) subscribe(ctx context.Context, c *conn, sessionID string) {
	if sessionID == "" {
		return
	}
	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[*conn]struct{})
	}
	h.subs[sessionID][c] = struct{}{}
	c.sessions[sessionID] = struct{}{}
	h.mu.Unlock()

	// push the current state immediately so a new client renders at once
	h.pushItems(ctx, c, sessionID)
	h.pushLinks(ctx, c, sessionID)
}

func (h *Hub) drop(c *conn) {
	h.mu.Lock()
	for sessionID := range c.sessions {
		delete(h.subs[sessionID], c)
	}
	h.mu.Unlock()
	_ = c.ws.Close()
}

func (h *Hub) subscribers(sessionID string) []*conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*conn, 0, len(h.subs[sessionID]))
	for c := range h.subs[sessionID] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) broadcastItems(ctx context.Context, sessionID string) {
	items, err := h.store.Items(ctx, sessionID)
	if err != nil {
		h.log.Warn("broadcast read failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	msg := store.SnapshotMsg{Kind: store.SnapshotItems, Session: sessionID, Items: store.WireItems(items)}
	for _, c := range h.subscribers(sessionID) {
		if err := c.writeJSON(msg); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) broadcastLinks(ctx context.Context, sessionID string) {
	links, err := h.store.Links(ctx, sessionID)
	if err != nil {
		h.log.Warn("broadcast read failed", zap.String("session", sessionID), zap.Error(err))
		return
	}
	msg := store.SnapshotMsg{Kind: store.SnapshotLinks, Session: sessionID, Links: store.WireLinks(links)}
	for _, c := range h.subscribers(sessionID) {
		if err := c.writeJSON(msg); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) pushItems(ctx context.Context, c *conn, sessionID string) {
	items, err := h.store.Items(ctx, sessionID)
	if err != nil {
		return
	}
	_ = c.writeJSON(store.SnapshotMsg{Kind: store.SnapshotItems, Session: sessionID, Items: store.WireItems(items)})
}

func (h *Hub) pushLinks(ctx context.Context, c *conn, sessionID string) {
	links, err := h.store.Links(ctx, sessionID)
	if err != nil {
		return
	}
	_ = c.writeJSON(store.SnapshotMsg{Kind: store.SnapshotLinks, Session: sessionID, Links: store.WireLinks(links)})
}

// sessionOfItem resolves which session an item id belongs to. Ops carry
// only the document id for updates and deletes.
func (h *Hub) sessionOfItem(ctx context.Context, id string) string {
	s, err := h.store.ItemSession(ctx, id)
	if err != nil {
		h.log.Warn("item session lookup failed", zap.String("id", id), zap.Error(err))
	}
	return s
}

func (h *Hub) sessionOfLink(ctx context.Context, id string) string {
	s, err := h.store.LinkSession(ctx, id)
	if err != nil {
		h.log.Warn("link session lookup failed", zap.String("id", id), zap.Error(err))
	}
	return s
}
