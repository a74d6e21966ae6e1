package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"treeboard/internal/board"
)

func sampleBoard() ([]board.Item, []board.Link) {
	items := []board.Item{
		{ID: "root-ws", Content: "Central problem", Author: "Moderator", Category: board.CategoryProblem, Placed: true},
		{ID: "c1", Content: "Low rainfall", Author: "Riya", Category: board.CategoryCause, Placed: true},
		{ID: "c2", Content: "Old pipes", Author: "Anonymous", Category: board.CategoryCause},
		{ID: "e1", Content: "Crop failure", Author: "Sam", Category: board.CategoryConsequence, Placed: true},
	}
	links := []board.Link{
		{ID: "l1", FromID: "c1", ToID: "root-ws"},
		{ID: "l2", FromID: "root-ws", ToID: "e1"},
	}
	return items, links
}

func TestBuild(t *testing.T) {
	t.Parallel()

	items, links := sampleBoard()
	s := Build("ws", items, links)

	require.Equal(t, 4, s.Total)
	require.Equal(t, 3, s.PlacedCount)
	require.Equal(t, 2, s.LinkCount)
	require.Equal(t, 1, s.ByCategory[board.CategoryProblem])
	require.Equal(t, 2, s.ByCategory[board.CategoryCause])
	require.Equal(t, 2, s.Degree["root-ws"])
	require.Equal(t, 1, s.Degree["c1"])

	top, ok := s.MostConnected(items)
	require.True(t, ok)
	require.Equal(t, "root-ws", top.ID)
}

func TestMarkdownToleratesDanglingLinks(t *testing.T) {
	t.Parallel()

	items, links := sampleBoard()
	links = append(links, board.Link{ID: "l3", FromID: "ghost", ToID: "c1"})

	doc := Markdown("ws", items, links)
	require.Contains(t, doc, "# Problem tree — session ws")
	require.Contains(t, doc, "## Problem")
	require.Contains(t, doc, "## Causes")
	require.Contains(t, doc, "## Consequences")
	require.Contains(t, doc, "Low rainfall — Riya")
	require.Contains(t, doc, "(deleted ghost)")
}

func TestExport(t *testing.T) {
	t.Parallel()

	items, links := sampleBoard()
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, Export(path, "ws", items, links))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "4 notes (3 placed), 2 links.")
}
