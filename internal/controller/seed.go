package controller

import (
	"context"

	"treeboard/internal/board"
	"treeboard/internal/sync"
)

// Root item defaults: the central problem note every session starts with.
const (
	rootContent = "Central problem"
	rootAuthor  = "Moderator"
	rootX       = 40
	rootY       = 12
)

// Seeder decides, once per client, whether to seed the session root. Claim
// must only be called from the UI event loop: the guard is a plain bool,
// kept race-free by confining it to that single goroutine. The create
// itself runs detached through SeedRoot, which holds no state.
type Seeder struct {
	done bool
}

// Claim consumes this client's one seed attempt. It returns true exactly
// once, and only for an empty observation.
func (s *Seeder) Claim(observedEmpty bool) bool {
	if s.done || !observedEmpty {
		return false
	}
	s.done = true
	return true
}

// SeedRoot creates the root item unless the store already holds items. The
// re-check guards against a transient empty observation during the initial
// snapshot load; two moderators racing on a truly empty session can still
// both attempt the insert — the deterministic root id makes the second one
// fail on the primary key, logged and dropped like any persistence failure.
func SeedRoot(ctx context.Context, g *sync.Gateway) error {
	items, err := g.Items(ctx)
	if err == nil && len(items) > 0 {
		return nil
	}
	return g.CreateItem(ctx, board.Item{
		ID:       board.RootID(g.SessionID()),
		Content:  rootContent,
		Author:   rootAuthor,
		Category: board.CategoryProblem,
		X:        rootX,
		Y:        rootY,
		Placed:   true,
	})
}
