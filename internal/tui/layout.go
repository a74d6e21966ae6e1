package tui

import (
	"treeboard/internal/board"
	"treeboard/internal/controller"
)

// Screen geometry: a one-row header, a sidebar stacking the four panels,
// the board canvas filling the rest, and a two-row footer. Board
// coordinates are canvas-relative cells, so hit testing and rendering
// share the same mapping.

const (
	sidebarWidth = 30
	headerRows   = 1
	footerRows   = 2
)

type panelGeom struct {
	panel controller.Panel
	y0    int // first row of the panel on screen
	rows  int // total rows including the title row
}

type geometry struct {
	width   int
	height  int
	canvasX int
	canvasY int
	canvasW int
	canvasH int
	panels  []panelGeom
}

func (a *App) geom() geometry {
	g := geometry{
		width:   a.width,
		height:  a.height,
		canvasX: sidebarWidth,
		canvasY: headerRows,
		canvasW: a.width - sidebarWidth,
		canvasH: a.height - headerRows - footerRows,
	}
	if g.canvasW < 0 {
		g.canvasW = 0
	}
	if g.canvasH < 0 {
		g.canvasH = 0
	}

	avail := g.canvasH
	list := controller.PanelList()

	// minimized panels keep their title row; the rest share what remains
	fixed := 0
	flexible := 0
	for _, p := range list {
		switch a.layout.State(p) {
		case controller.PanelMinimized:
			fixed++
		default:
			flexible++
		}
	}
	if _, ok := a.layout.Maximized(); ok {
		flexible = 1
	}

	share := 0
	if flexible > 0 {
		share = (avail - fixed) / flexible
	}

	y := headerRows
	for _, p := range list {
		rows := 1
		switch a.layout.State(p) {
		case controller.PanelMinimized:
			rows = 1
		case controller.PanelMaximized:
			rows = avail - fixed
		default:
			if _, ok := a.layout.Maximized(); !ok {
				rows = share
			}
		}
		if rows < 1 {
			rows = 1
		}
		if y+rows > headerRows+avail {
			rows = headerRows + avail - y
			if rows < 1 {
				break
			}
		}
		g.panels = append(g.panels, panelGeom{panel: p, y0: y, rows: rows})
		y += rows
	}
	return g
}

// toBoard maps a screen cell inside the canvas to board coordinates.
func (g geometry) toBoard(x, y int) (float64, float64, bool) {
	if x < g.canvasX || y < g.canvasY || x >= g.canvasX+g.canvasW || y >= g.canvasY+g.canvasH {
		return 0, 0, false
	}
	return float64(x - g.canvasX), float64(y - g.canvasY), true
}

// boardPointer maps a screen cell to board coordinates without the canvas
// containment check, for drag motion that wanders off the canvas (the
// clamp confines it anyway).
func (g geometry) boardPointer(x, y int) (float64, float64) {
	return float64(x - g.canvasX), float64(y - g.canvasY)
}

// panelRowAt resolves a click in the sidebar to a panel body row.
// row -1 is the title row.
func (g geometry) panelRowAt(x, y int) (controller.Panel, int, bool) {
	if x >= g.canvasX {
		return "", 0, false
	}
	for _, p := range g.panels {
		if y >= p.y0 && y < p.y0+p.rows {
			return p.panel, y - p.y0 - 1, true
		}
	}
	return "", 0, false
}

// placedItemAt finds the topmost placed item whose footprint contains the
// board point. Later-created items render on top, so scan backwards.
func (a *App) placedItemAt(bx, by float64) (board.Item, bool) {
	placed := a.state.Placed()
	for i := len(placed) - 1; i >= 0; i-- {
		it := placed[i]
		if bx >= it.X && bx < it.X+a.itemW && by >= it.Y && by < it.Y+a.itemH {
			return it, true
		}
	}
	return board.Item{}, false
}

// trayCategory maps a tray panel to its item category. The report panel
// has no tray.
func trayCategory(p controller.Panel) (board.Category, bool) {
	switch p {
	case controller.PanelProblem:
		return board.CategoryProblem, true
	case controller.PanelCauses:
		return board.CategoryCause, true
	case controller.PanelConsequences:
		return board.CategoryConsequence, true
	}
	return "", false
}
