package controller

// LinkPhase enumerates the link selector's states.
type LinkPhase int

const (
	LinkOff LinkPhase = iota
	LinkAwaitingSource
	LinkAwaitingTarget
)

// LinkMode is the two-phase connect state machine: toggle on, click a
// source, click a target. One shot per activation: after the target click
// (create or cancel) the mode turns itself off.
type LinkMode struct {
	phase    LinkPhase
	sourceID string
}

// LinkRequest asks for one link creation.
type LinkRequest struct {
	FromID string
	ToID   string
}

// Phase returns the current phase.
func (m LinkMode) Phase() LinkPhase { return m.phase }

// Active reports whether item clicks are currently intercepted for
// selection. While active, clicks never reach drag-start handling.
func (m LinkMode) Active() bool { return m.phase != LinkOff }

// SourceID returns the pending source, or "" before one is chosen.
func (m LinkMode) SourceID() string { return m.sourceID }

// Toggle flips the mode: off goes to awaiting-source; any active phase
// goes back to off, discarding a pending source.
func (m LinkMode) Toggle() LinkMode {
	if m.Active() {
		return LinkMode{}
	}
	return LinkMode{phase: LinkAwaitingSource}
}

// Click feeds an item click through the selector. The returned request is
// non-nil only on a valid source→target pair; clicking the source again
// cancels without creating anything.
func (m LinkMode) Click(id string) (LinkMode, *LinkRequest) {
	switch m.phase {
	case LinkAwaitingSource:
		return LinkMode{phase: LinkAwaitingTarget, sourceID: id}, nil
	case LinkAwaitingTarget:
		if id == m.sourceID {
			return LinkMode{}, nil
		}
		return LinkMode{}, &LinkRequest{FromID: m.sourceID, ToID: id}
	}
	return m, nil
}
