package controller

// Panel names the four workspace panels.
type Panel string

const (
	PanelProblem      Panel = "problem"
	PanelCauses       Panel = "causes"
	PanelConsequences Panel = "consequences"
	PanelReport       Panel = "report"
)

// PanelList returns all panels in display order.
func PanelList() []Panel {
	return []Panel{PanelProblem, PanelCauses, PanelConsequences, PanelReport}
}

// PanelState is one panel's layout state.
type PanelState int

const (
	PanelNormal PanelState = iota
	PanelMinimized
	PanelMaximized
)

// Layout holds the per-client, ephemeral layout of all four panels. At
// most one panel is maximized at a time; maximizing one minimizes the
// rest. Nothing here is persisted.
type Layout struct {
	problem      PanelState
	causes       PanelState
	consequences PanelState
	report       PanelState
}

// NewLayout starts with every panel Normal.
func NewLayout() Layout { return Layout{} }

// State reads one panel's state.
func (l Layout) State(p Panel) PanelState {
	switch p {
	case PanelProblem:
		return l.problem
	case PanelCauses:
		return l.causes
	case PanelConsequences:
		return l.consequences
	case PanelReport:
		return l.report
	}
	return PanelNormal
}

func (l Layout) with(p Panel, s PanelState) Layout {
	switch p {
	case PanelProblem:
		l.problem = s
	case PanelCauses:
		l.causes = s
	case PanelConsequences:
		l.consequences = s
	case PanelReport:
		l.report = s
	}
	return l
}

// Minimize collapses one panel, leaving the others unchanged.
func (l Layout) Minimize(p Panel) Layout { return l.with(p, PanelMinimized) }

// Maximize expands one panel and minimizes every other.
func (l Layout) Maximize(p Panel) Layout {
	out := Layout{
		problem:      PanelMinimized,
		causes:       PanelMinimized,
		consequences: PanelMinimized,
		report:       PanelMinimized,
	}
	return out.with(p, PanelMaximized)
}

// Restore resets all four panels to Normal unconditionally.
func (l Layout) Restore() Layout { return Layout{} }

// Maximized returns the currently maximized panel, if any.
func (l Layout) Maximized() (Panel, bool) {
	for _, p := range PanelList() {
		if l.State(p) == PanelMaximized {
			return p, true
		}
	}
	return "", false
}
