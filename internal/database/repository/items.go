// Package repository holds the hand-written SQL behind the document store:
// one repo per collection, session-scoped list queries, partial updates.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"treeboard/internal/board"
)

// createdAtLayout matches the strftime default the schema assigns.
const createdAtLayout = "2006-01-02 15:04:05.999"

// ItemRepo handles the items collection.
type ItemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// Insert stores a new item. created_at is assigned by the store, not the
// caller; the caller's CreatedAt is ignored.
func (r *ItemRepo) Insert(ctx context.Context, it board.Item) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO items(id, session_id, content, author, category, x, y, placed)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`,
		it.ID, it.SessionID, it.Content, it.Author, string(it.Category), it.X, it.Y, boolToInt(it.Placed))
	return err
}

// Update merges the non-nil patch fields into an existing item. Updating an
// id that no longer exists is a no-op, not an error.
func (r *ItemRepo) Update(ctx context.Context, id string, p board.ItemPatch) error {
	if p.Empty() {
		return nil
	}
	var set []string
	var args []interface{}
	if p.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *p.Content)
	}
	if p.X != nil {
		set = append(set, "x = ?")
		args = append(args, *p.X)
	}
	if p.Y != nil {
		set = append(set, "y = ?")
		args = append(args, *p.Y)
	}
	if p.Placed != nil && *p.Placed {
		set = append(set, "placed = 1")
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, "UPDATE items SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	return err
}

// Delete removes an item. Missing ids are a no-op.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return err
}

// Get fetches one item; nil if absent.
func (r *ItemRepo) Get(ctx context.Context, id string) (*board.Item, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, session_id, content, author, category, x, y, placed, created_at
	FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListBySession returns the full item collection of one session, ordered by
// creation time.
func (r *ItemRepo) ListBySession(ctx context.Context, sessionID string) ([]board.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, content, author, category, x, y, placed, created_at
	FROM items WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []board.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SessionOf resolves the session an item belongs to; "" if the item is
// gone.
func (r *ItemRepo) SessionOf(ctx context.Context, id string) (string, error) {
	var s string
	err := r.db.QueryRowContext(ctx, `SELECT session_id FROM items WHERE id = ?`, id).Scan(&s)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return s, err
}

// CountBySession reports how many items a session holds.
func (r *ItemRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(s scanner) (board.Item, error) {
	var it board.Item
	var category, createdAt string
	var placed int
	if err := s.Scan(&it.ID, &it.SessionID, &it.Content, &it.Author, &category, &it.X, &it.Y, &placed, &createdAt); err != nil {
		return board.Item{}, err
	}
	it.Category = board.Category(category)
	it.Placed = placed != 0
	it.CreatedAt = parseCreatedAt(createdAt)
	return it, nil
}

func parseCreatedAt(s string) time.Time {
	t, err := time.ParseInLocation(createdAtLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
