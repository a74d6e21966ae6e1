package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"treeboard/internal/board"
)

// Remote is a Store speaking the treeboardd WebSocket protocol. Ops are
// single frames; snapshots arrive on a read pump and fan out to the open
// feeds. Items/Links reads are served from the last pushed snapshot.
type Remote struct {
	conn *websocket.Conn
	log  *zap.Logger

	writeMu sync.Mutex

	mu         sync.Mutex
	nextSub    int
	itemSubs   map[string]map[int]chan []board.Item
	linkSubs   map[string]map[int]chan []board.Link
	lastItems  map[string][]board.Item
	lastLinks  map[string][]board.Link
	subscribed map[string]bool
	closed     bool
}

// DialRemote connects to a treeboardd instance, e.g. "ws://host:7357/sync".
func DialRemote(ctx context.Context, url string, log *zap.Logger) (*Remote, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial sync server: %w", err)
	}
	r := &Remote{
		conn:       conn,
		log:        log,
		itemSubs:   make(map[string]map[int]chan []board.Item),
		linkSubs:   make(map[string]map[int]chan []board.Link),
		lastItems:  make(map[string][]board.Item),
		lastLinks:  make(map[string][]board.Link),
		subscribed: make(map[string]bool),
	}
	go r.readPump()
	return r, nil
}

func (r *Remote) readPump() {
	for {
		var msg SnapshotMsg
		if err := r.conn.ReadJSON(&msg); err != nil {
			r.log.Warn("sync connection lost", zap.Error(err))
			r.teardown()
			return
		}
		switch msg.Kind {
		case SnapshotItems:
			items := BoardItems(msg.Items)
			r.mu.Lock()
			r.lastItems[msg.Session] = items
			for _, ch := range r.itemSubs[msg.Session] {
				deliverItems(ch, items)
			}
			r.mu.Unlock()
		case SnapshotLinks:
			links := BoardLinks(msg.Links)
			r.mu.Lock()
			r.lastLinks[msg.Session] = links
			for _, ch := range r.linkSubs[msg.Session] {
				deliverLinks(ch, links)
			}
			r.mu.Unlock()
		default:
			r.log.Warn("unknown snapshot kind", zap.String("kind", msg.Kind))
		}
	}
}

func (r *Remote) teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, subs := range r.itemSubs {
		for _, ch := range subs {
			close(ch)
		}
	}
	for _, subs := range r.linkSubs {
		for _, ch := range subs {
			close(ch)
		}
	}
	r.itemSubs = make(map[string]map[int]chan []board.Item)
	r.linkSubs = make(map[string]map[int]chan []board.Link)
}

func (r *Remote) send(msg OpMsg) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteJSON(msg)
}

// ensureSubscribed asks the server to start pushing a session's snapshots.
// The server treats repeated subscribes as one.
func (r *Remote) ensureSubscribed(sessionID string) {
	r.mu.Lock()
	already := r.subscribed[sessionID]
	r.subscribed[sessionID] = true
	r.mu.Unlock()
	if already {
		return
	}
	if err := r.send(OpMsg{Op: OpSubscribe, Session: sessionID}); err != nil {
		r.log.Warn("subscribe failed", zap.String("session", sessionID), zap.Error(err))
	}
}

func (r *Remote) CreateItem(_ context.Context, it board.Item) error {
	w := toWireItem(it)
	return r.send(OpMsg{Op: OpCreateItem, Session: it.SessionID, Item: &w})
}

func (r *Remote) UpdateItem(_ context.Context, id string, p board.ItemPatch) error {
	w := toWirePatch(p)
	return r.send(OpMsg{Op: OpUpdateItem, ItemID: id, Patch: &w})
}

func (r *Remote) DeleteItem(_ context.Context, id string) error {
	return r.send(OpMsg{Op: OpDeleteItem, ItemID: id})
}

func (r *Remote) CreateLink(_ context.Context, l board.Link) error {
	w := toWireLink(l)
	return r.send(OpMsg{Op: OpCreateLink, Session: l.SessionID, Link: &w})
}

func (r *Remote) DeleteLink(_ context.Context, id string) error {
	return r.send(OpMsg{Op: OpDeleteLink, LinkID: id})
}

// Items returns the last pushed item snapshot; empty until the first push
// after subscribe.
func (r *Remote) Items(_ context.Context, sessionID string) ([]board.Item, error) {
	r.ensureSubscribed(sessionID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]board.Item(nil), r.lastItems[sessionID]...), nil
}

// Links returns the last pushed link snapshot.
func (r *Remote) Links(_ context.Context, sessionID string) ([]board.Link, error) {
	r.ensureSubscribed(sessionID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]board.Link(nil), r.lastLinks[sessionID]...), nil
}

// LinksTouching filters the last pushed snapshot. The authoritative cascade
// runs server-side against sqlite; this client-side view only feeds the
// redundant, no-op-tolerated deletes the gateway issues.
func (r *Remote) LinksTouching(_ context.Context, sessionID, itemID string) ([]board.Link, error) {
	r.ensureSubscribed(sessionID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return board.LinksTouching(r.lastLinks[sessionID], itemID), nil
}

func (r *Remote) WatchItems(_ context.Context, sessionID string) *ItemFeed {
	ch := make(chan []board.Item, 1)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return &ItemFeed{C: ch}
	}
	id := r.nextSub
	r.nextSub++
	if r.itemSubs[sessionID] == nil {
		r.itemSubs[sessionID] = make(map[int]chan []board.Item)
	}
	r.itemSubs[sessionID][id] = ch
	if last, ok := r.lastItems[sessionID]; ok {
		deliverItems(ch, last)
	}
	r.mu.Unlock()

	r.ensureSubscribed(sessionID)
	return &ItemFeed{C: ch, stop: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.itemSubs[sessionID][id]; ok {
			delete(r.itemSubs[sessionID], id)
			close(sub)
		}
	}}
}

func (r *Remote) WatchLinks(_ context.Context, sessionID string) *LinkFeed {
	ch := make(chan []board.Link, 1)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return &LinkFeed{C: ch}
	}
	id := r.nextSub
	r.nextSub++
	if r.linkSubs[sessionID] == nil {
		r.linkSubs[sessionID] = make(map[int]chan []board.Link)
	}
	r.linkSubs[sessionID][id] = ch
	if last, ok := r.lastLinks[sessionID]; ok {
		deliverLinks(ch, last)
	}
	r.mu.Unlock()

	r.ensureSubscribed(sessionID)
	return &LinkFeed{C: ch, stop: func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.linkSubs[sessionID][id]; ok {
			delete(r.linkSubs[sessionID], id)
			close(sub)
		}
	}}
}

func (r *Remote) Close() error {
	r.teardown()
	return r.conn.Close()
}
