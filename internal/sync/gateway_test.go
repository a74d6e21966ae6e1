package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"treeboard/internal/board"
	"treeboard/internal/database"
	"treeboard/internal/store"
)

func newTestGateway(t *testing.T, session string) *Gateway {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewGateway(store.NewLocal(db, nil), session, nil)
}

func TestCreateItemAssignsIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	require.NoError(t, g.CreateItem(ctx, board.Item{
		Content:  "Soil erosion",
		Category: board.CategoryCause,
	}))

	items, err := g.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotEmpty(t, items[0].ID)
	require.Equal(t, "ws", items[0].SessionID)
	require.Equal(t, "Anonymous", items[0].Author)
	require.Equal(t, "Soil erosion", items[0].Content)
	require.False(t, items[0].CreatedAt.IsZero())
}

func TestCreateItemRejectsBlankContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	require.ErrorIs(t, g.CreateItem(ctx, board.Item{Content: "   \t"}), ErrEmptyContent)

	items, err := g.Items(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCreateItemValidatesCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	require.ErrorIs(t, g.CreateItem(ctx, board.Item{Content: "x", Category: "solution"}), ErrUnknownCategory)

	// category strings arriving off the wire are normalized, not trusted
	require.NoError(t, g.CreateItem(ctx, board.Item{Content: "x", Category: " Cause "}))

	items, err := g.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, board.CategoryCause, items[0].Category)
}

func TestDeleteRootIsRefused(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	require.NoError(t, g.CreateItem(ctx, board.Item{
		ID:       board.RootID("ws"),
		Content:  "Central problem",
		Author:   "Moderator",
		Category: board.CategoryProblem,
		Placed:   true,
	}))

	require.ErrorIs(t, g.DeleteItem(ctx, board.RootID("ws")), ErrRootProtected)

	items, err := g.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestDeleteItemCascadesLinks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	for _, content := range []string{"a", "b", "c"} {
		require.NoError(t, g.CreateItem(ctx, board.Item{ID: "it-" + content, Content: content, Category: board.CategoryCause}))
	}
	require.NoError(t, g.CreateLink(ctx, Endpoint{ID: "it-a", X: 1, Y: 1}, Endpoint{ID: "it-b", X: 2, Y: 2}))
	require.NoError(t, g.CreateLink(ctx, Endpoint{ID: "it-c"}, Endpoint{ID: "it-a"}))
	require.NoError(t, g.CreateLink(ctx, Endpoint{ID: "it-b"}, Endpoint{ID: "it-c"}))

	require.NoError(t, g.DeleteItem(ctx, "it-a"))

	items, err := g.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	links, err := g.Links(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Empty(t, board.LinksTouching(links, "it-a"))
}

func TestCreateLinkValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	require.ErrorIs(t, g.CreateLink(ctx, Endpoint{ID: "x"}, Endpoint{ID: "x"}), ErrSelfLink)
	require.ErrorIs(t, g.CreateLink(ctx, Endpoint{}, Endpoint{ID: "x"}), ErrEndpointMissing)

	links, err := g.Links(ctx)
	require.NoError(t, err)
	require.Empty(t, links)
}

func TestLinkCoordinatesAreFrozen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestGateway(t, "ws")

	require.NoError(t, g.CreateItem(ctx, board.Item{ID: "it-a", Content: "a", Category: board.CategoryCause}))
	require.NoError(t, g.CreateItem(ctx, board.Item{ID: "it-b", Content: "b", Category: board.CategoryCause}))
	require.NoError(t, g.CreateLink(ctx, Endpoint{ID: "it-a", X: 10, Y: 10}, Endpoint{ID: "it-b", X: 20, Y: 20}))

	// moving an endpoint does not rewrite the stored link coordinates
	require.NoError(t, g.UpdateItem(ctx, "it-a", board.MovePatch(99, 99)))

	links, err := g.Links(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, 10.0, links[0].FromX)
	require.Equal(t, 20.0, links[0].ToX)
}

func TestSubscribeOncePerGateway(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := newTestGateway(t, "ws")

	items1, links1 := g.Subscribe(ctx)
	items2, links2 := g.Subscribe(ctx)
	require.Same(t, items1, items2)
	require.Same(t, links1, links2)
	g.Close()
}
