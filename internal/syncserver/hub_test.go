package syncserver

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"treeboard/internal/board"
	"treeboard/internal/database"
	"treeboard/internal/store"
)

func startHub(t *testing.T) string {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	hub := New(store.NewLocal(db, nil), nil)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *store.Remote {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r, err := store.DialRemote(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func recvItems(t *testing.T, feed *store.ItemFeed) []board.Item {
	t.Helper()
	select {
	case snap, ok := <-feed.C:
		require.True(t, ok, "feed closed early")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func waitForItems(t *testing.T, feed *store.ItemFeed, want int) []board.Item {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-feed.C:
			require.True(t, ok, "feed closed early")
			if len(snap) == want {
				return snap
			}
		case <-deadline:
			t.Fatalf("never observed %d items", want)
		}
	}
}

func TestCreateEchoesToAllSubscribers(t *testing.T) {
	t.Parallel()

	url := startHub(t)
	ctx := context.Background()

	alice := dial(t, url)
	bob := dial(t, url)

	aliceFeed := alice.WatchItems(ctx, "ws")
	defer aliceFeed.Stop()
	bobFeed := bob.WatchItems(ctx, "ws")
	defer bobFeed.Stop()

	// both start from the empty snapshot
	require.Empty(t, recvItems(t, aliceFeed))
	require.Empty(t, recvItems(t, bobFeed))

	require.NoError(t, alice.CreateItem(ctx, board.Item{
		ID: "it-1", SessionID: "ws", Content: "Water shortage",
		Author: "Riya", Category: board.CategoryCause,
	}))

	for _, feed := range []*store.ItemFeed{aliceFeed, bobFeed} {
		snap := waitForItems(t, feed, 1)
		require.Equal(t, "Water shortage", snap[0].Content)
		require.Equal(t, "Riya", snap[0].Author)
		require.False(t, snap[0].CreatedAt.IsZero())
	}
}

func TestServerEnforcesGatewayRules(t *testing.T) {
	t.Parallel()

	url := startHub(t)
	ctx := context.Background()

	c := dial(t, url)
	feed := c.WatchItems(ctx, "ws")
	defer feed.Stop()
	require.Empty(t, recvItems(t, feed))

	// blank content never becomes an item
	require.NoError(t, c.CreateItem(ctx, board.Item{ID: "x", SessionID: "ws", Content: "   "}))

	require.NoError(t, c.CreateItem(ctx, board.Item{
		ID: board.RootID("ws"), SessionID: "ws", Content: "Central problem",
		Author: "Moderator", Category: board.CategoryProblem, Placed: true,
	}))
	waitForItems(t, feed, 1)

	// root delete is refused server-side too
	require.NoError(t, c.DeleteItem(ctx, board.RootID("ws")))

	items, err := c.Items(ctx, "ws")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Root())
}

func TestUpdateAndCascadeOverTheWire(t *testing.T) {
	t.Parallel()

	url := startHub(t)
	ctx := context.Background()

	c := dial(t, url)
	itemFeed := c.WatchItems(ctx, "ws")
	defer itemFeed.Stop()
	linkFeed := c.WatchLinks(ctx, "ws")
	defer linkFeed.Stop()
	require.Empty(t, recvItems(t, itemFeed))

	require.NoError(t, c.CreateItem(ctx, board.Item{ID: "a", SessionID: "ws", Content: "a", Category: board.CategoryCause}))
	require.NoError(t, c.CreateItem(ctx, board.Item{ID: "b", SessionID: "ws", Content: "b", Category: board.CategoryCause}))
	waitForItems(t, itemFeed, 2)

	require.NoError(t, c.UpdateItem(ctx, "a", board.MovePatch(12, 7)))
	require.Eventually(t, func() bool {
		items, err := c.Items(ctx, "ws")
		if err != nil || len(items) != 2 {
			return false
		}
		it, ok := board.FindItem(items, "a")
		return ok && it.X == 12 && it.Placed
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, c.CreateLink(ctx, board.Link{SessionID: "ws", FromID: "a", ToID: "b"}))
	require.Eventually(t, func() bool {
		links, err := c.Links(ctx, "ws")
		return err == nil && len(links) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// deleting an endpoint cascades the link
	require.NoError(t, c.DeleteItem(ctx, "a"))
	require.Eventually(t, func() bool {
		items, ierr := c.Items(ctx, "ws")
		links, lerr := c.Links(ctx, "ws")
		return ierr == nil && lerr == nil && len(items) == 1 && len(links) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
