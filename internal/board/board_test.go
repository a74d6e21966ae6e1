package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	b := Bounds{Width: 100, Height: 40}

	x, y := b.Clamp(-50, -50, 10, 4)
	require.Equal(t, 0.0, x)
	require.Equal(t, 0.0, y)

	x, y = b.Clamp(500, 500, 10, 4)
	require.Equal(t, 90.0, x)
	require.Equal(t, 36.0, y)

	x, y = b.Clamp(30, 20, 10, 4)
	require.Equal(t, 30.0, x)
	require.Equal(t, 20.0, y)

	// bounds smaller than the footprint collapse to origin
	x, y = b.Clamp(5, 5, 200, 200)
	require.Equal(t, 0.0, x)
	require.Equal(t, 0.0, y)
}

func TestPatchApply(t *testing.T) {
	t.Parallel()

	it := Item{ID: "a", Content: "old", X: 1, Y: 2, Placed: true}

	got := ContentPatch("new").Apply(it)
	require.Equal(t, "new", got.Content)
	require.Equal(t, 1.0, got.X)
	require.True(t, got.Placed)

	got = MovePatch(7, 8).Apply(it)
	require.Equal(t, 7.0, got.X)
	require.Equal(t, 8.0, got.Y)
	require.True(t, got.Placed)
	require.Equal(t, "old", got.Content)
}

func TestPlacedNeverReverts(t *testing.T) {
	t.Parallel()

	placed := false
	it := Item{ID: "a", Placed: true}
	got := ItemPatch{Placed: &placed}.Apply(it)
	require.True(t, got.Placed)
}

func TestRootID(t *testing.T) {
	t.Parallel()

	id := RootID("ws-1")
	require.Equal(t, "root-ws-1", id)
	require.True(t, IsRootID(id))
	require.False(t, IsRootID("item-ws-1"))
	require.True(t, Item{ID: id}.Root())
}

func TestDerivedViews(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "1", Category: CategoryCause},
		{ID: "2", Category: CategoryCause, Placed: true},
		{ID: "3", Category: CategoryConsequence},
		{ID: "4", Category: CategoryProblem, Placed: true},
	}

	unplaced := ByCategoryUnplaced(items, CategoryCause)
	require.Len(t, unplaced, 1)
	require.Equal(t, "1", unplaced[0].ID)

	placed := Placed(items)
	require.Len(t, placed, 2)

	_, ok := FindItem(items, "3")
	require.True(t, ok)
	_, ok = FindItem(items, "nope")
	require.False(t, ok)
}

func TestLinksTouching(t *testing.T) {
	t.Parallel()

	links := []Link{
		{ID: "l1", FromID: "a", ToID: "b"},
		{ID: "l2", FromID: "c", ToID: "a"},
		{ID: "l3", FromID: "c", ToID: "d"},
	}
	got := LinksTouching(links, "a")
	require.Len(t, got, 2)
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, ok := ParseCategory(" Cause ")
	require.True(t, ok)
	require.Equal(t, CategoryCause, c)

	_, ok = ParseCategory("solution")
	require.False(t, ok)
}

func TestNearDuplicate(t *testing.T) {
	t.Parallel()

	items := []Item{
		{ID: "1", Category: CategoryCause, Content: "No access to clean water"},
		{ID: "2", Category: CategoryCause, Content: "Roads flooded", Placed: true},
	}

	hit, ok := NearDuplicate(items, CategoryCause, "no access to clean  water")
	require.True(t, ok)
	require.Equal(t, "1", hit.ID)

	// placed items are not considered
	_, ok = NearDuplicate(items, CategoryCause, "Roads flooded")
	require.False(t, ok)

	_, ok = NearDuplicate(items, CategoryCause, "Funding shortfall")
	require.False(t, ok)

	_, ok = NearDuplicate(items, CategoryCause, "   ")
	require.False(t, ok)
}
