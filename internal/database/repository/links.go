package repository

import (
	"context"
	"database/sql"

	"treeboard/internal/board"
)

// LinkRepo handles the links collection.
type LinkRepo struct {
	db *sql.DB
}

func NewLinkRepo(db *sql.DB) *LinkRepo { return &LinkRepo{db: db} }

// Insert stores a new link with its endpoint coordinates frozen as given.
func (r *LinkRepo) Insert(ctx context.Context, l board.Link) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO links(id, session_id, from_id, to_id, from_x, from_y, to_x, to_y)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`,
		l.ID, l.SessionID, l.FromID, l.ToID, l.FromX, l.FromY, l.ToX, l.ToY)
	return err
}

// Delete removes a link. Missing ids are a no-op.
func (r *LinkRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, id)
	return err
}

// SessionOf resolves the session a link belongs to; "" if the link is
// gone.
func (r *LinkRepo) SessionOf(ctx context.Context, id string) (string, error) {
	var s string
	err := r.db.QueryRowContext(ctx, `SELECT session_id FROM links WHERE id = ?`, id).Scan(&s)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return s, err
}

// ListBySession returns the full link collection of one session.
func (r *LinkRepo) ListBySession(ctx context.Context, sessionID string) ([]board.Link, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, from_id, to_id, from_x, from_y, to_x, to_y, created_at
	FROM links WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLinks(rows)
}

// ListTouching returns the links that reference itemID as either endpoint,
// for the delete cascade.
func (r *LinkRepo) ListTouching(ctx context.Context, sessionID, itemID string) ([]board.Link, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, from_id, to_id, from_x, from_y, to_x, to_y, created_at
	FROM links WHERE session_id = ? AND (from_id = ? OR to_id = ?)`, sessionID, itemID, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLinks(rows)
}

func collectLinks(rows *sql.Rows) ([]board.Link, error) {
	var out []board.Link
	for rows.Next() {
		var l board.Link
		var createdAt string
		if err := rows.Scan(&l.ID, &l.SessionID, &l.FromID, &l.ToID, &l.FromX, &l.FromY, &l.ToX, &l.ToY, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = parseCreatedAt(createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}
