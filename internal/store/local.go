package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"treeboard/internal/board"
	"treeboard/internal/database/repository"
)

// defaultPoll is how often a Local feed re-reads its collection. Redundant
// ticks are cheap: feeds only deliver when the collection changed, and the
// board state store is idempotent anyway.
const defaultPoll = 250 * time.Millisecond

// Local is a Store over a sqlite database opened in-process. Several
// clients on one machine can share the database file; each one observes the
// others' writes through its polling feeds.
type Local struct {
	items *repository.ItemRepo
	links *repository.LinkRepo
	db    *sql.DB
	poll  time.Duration
	log   *zap.Logger
}

// NewLocal builds a Local store over an open, migrated database.
func NewLocal(db *sql.DB, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{
		items: repository.NewItemRepo(db),
		links: repository.NewLinkRepo(db),
		db:    db,
		poll:  defaultPoll,
		log:   log,
	}
}

// SetPollInterval overrides the feed poll interval (tests use a short one).
func (s *Local) SetPollInterval(d time.Duration) { s.poll = d }

func (s *Local) CreateItem(ctx context.Context, it board.Item) error {
	return s.items.Insert(ctx, it)
}

func (s *Local) UpdateItem(ctx context.Context, id string, p board.ItemPatch) error {
	return s.items.Update(ctx, id, p)
}

func (s *Local) DeleteItem(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

func (s *Local) CreateLink(ctx context.Context, l board.Link) error {
	return s.links.Insert(ctx, l)
}

func (s *Local) DeleteLink(ctx context.Context, id string) error {
	return s.links.Delete(ctx, id)
}

func (s *Local) Items(ctx context.Context, sessionID string) ([]board.Item, error) {
	return s.items.ListBySession(ctx, sessionID)
}

func (s *Local) Links(ctx context.Context, sessionID string) ([]board.Link, error) {
	return s.links.ListBySession(ctx, sessionID)
}

func (s *Local) LinksTouching(ctx context.Context, sessionID, itemID string) ([]board.Link, error) {
	return s.links.ListTouching(ctx, sessionID, itemID)
}

func (s *Local) WatchItems(ctx context.Context, sessionID string) *ItemFeed {
	ch := make(chan []board.Item, 1)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		var last []board.Item
		first := true
		for {
			cur, err := s.items.ListBySession(ctx, sessionID)
			if err != nil {
				s.log.Warn("item feed read failed", zap.String("session", sessionID), zap.Error(err))
			} else if first || !itemsEqual(last, cur) {
				first = false
				last = cur
				deliverItems(ch, cur)
			}
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	var once bool
	return &ItemFeed{C: ch, stop: func() {
		if !once {
			once = true
			close(done)
		}
	}}
}

func (s *Local) WatchLinks(ctx context.Context, sessionID string) *LinkFeed {
	ch := make(chan []board.Link, 1)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		var last []board.Link
		first := true
		for {
			cur, err := s.links.ListBySession(ctx, sessionID)
			if err != nil {
				s.log.Warn("link feed read failed", zap.String("session", sessionID), zap.Error(err))
			} else if first || !linksEqual(last, cur) {
				first = false
				last = cur
				deliverLinks(ch, cur)
			}
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	var once bool
	return &LinkFeed{C: ch, stop: func() {
		if !once {
			once = true
			close(done)
		}
	}}
}

// ItemSession resolves the session an item id belongs to; "" if absent.
// The relay hub uses this because update/delete ops carry only the id.
func (s *Local) ItemSession(ctx context.Context, id string) (string, error) {
	return s.items.SessionOf(ctx, id)
}

// LinkSession resolves the session a link id belongs to; "" if absent.
func (s *Local) LinkSession(ctx context.Context, id string) (string, error) {
	return s.links.SessionOf(ctx, id)
}

func (s *Local) Close() error { return s.db.Close() }

// deliverItems conflates: an unread older snapshot is replaced, never queued
// behind.
func deliverItems(ch chan []board.Item, snap []board.Item) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func deliverLinks(ch chan []board.Link, snap []board.Link) {
	select {
	case ch <- snap:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
