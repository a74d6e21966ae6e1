package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"treeboard/internal/board"
	"treeboard/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestItemRoundTrip(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db := openTestDB(t)
	repo := NewItemRepo(db)

	require.NoError(t, repo.Insert(ctx, board.Item{
		ID:        "it-1",
		SessionID: "ws",
		Content:   "Water shortage",
		Author:    "Moderator",
		Category:  board.CategoryProblem,
		X:         10,
		Y:         5,
		Placed:    true,
	}))
	require.NoError(t, repo.Insert(ctx, board.Item{
		ID:        "it-2",
		SessionID: "ws",
		Content:   "Low rainfall",
		Author:    "Anonymous",
		Category:  board.CategoryCause,
	}))
	// other session must stay invisible
	require.NoError(t, repo.Insert(ctx, board.Item{
		ID: "it-3", SessionID: "other", Content: "x", Author: "a", Category: board.CategoryCause,
	}))

	items, err := repo.ListBySession(ctx, "ws")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "it-1", items[0].ID)
	require.Equal(t, board.CategoryProblem, items[0].Category)
	require.True(t, items[0].Placed)
	require.False(t, items[1].Placed)
	require.False(t, items[0].CreatedAt.IsZero())

	n, err := repo.CountBySession(ctx, "ws")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := repo.Get(ctx, "it-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Low rainfall", got.Content)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestItemPartialUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	repo := NewItemRepo(db)

	require.NoError(t, repo.Insert(ctx, board.Item{
		ID: "it-1", SessionID: "ws", Content: "before", Author: "a", Category: board.CategoryCause,
	}))

	require.NoError(t, repo.Update(ctx, "it-1", board.MovePatch(33, 44)))
	got, err := repo.Get(ctx, "it-1")
	require.NoError(t, err)
	require.Equal(t, 33.0, got.X)
	require.Equal(t, 44.0, got.Y)
	require.True(t, got.Placed)
	require.Equal(t, "before", got.Content)

	require.NoError(t, repo.Update(ctx, "it-1", board.ContentPatch("after")))
	got, err = repo.Get(ctx, "it-1")
	require.NoError(t, err)
	require.Equal(t, "after", got.Content)
	require.True(t, got.Placed)

	// empty patch and unknown id are both no-ops
	require.NoError(t, repo.Update(ctx, "it-1", board.ItemPatch{}))
	require.NoError(t, repo.Update(ctx, "ghost", board.ContentPatch("x")))
}

func TestLinkRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	repo := NewLinkRepo(db)

	require.NoError(t, repo.Insert(ctx, board.Link{
		ID: "l-1", SessionID: "ws", FromID: "a", ToID: "b", FromX: 1, FromY: 2, ToX: 3, ToY: 4,
	}))
	require.NoError(t, repo.Insert(ctx, board.Link{
		ID: "l-2", SessionID: "ws", FromID: "c", ToID: "a",
	}))

	links, err := repo.ListBySession(ctx, "ws")
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.Equal(t, 1.0, links[0].FromX)
	require.Equal(t, 4.0, links[0].ToY)

	touching, err := repo.ListTouching(ctx, "ws", "a")
	require.NoError(t, err)
	require.Len(t, touching, 2)

	touching, err = repo.ListTouching(ctx, "ws", "b")
	require.NoError(t, err)
	require.Len(t, touching, 1)

	require.NoError(t, repo.Delete(ctx, "l-1"))
	links, err = repo.ListBySession(ctx, "ws")
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "l-2", links[0].ID)
}
