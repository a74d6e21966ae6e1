package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"treeboard/internal/board"
	"treeboard/internal/controller"
	"treeboard/internal/report"
)

func (a *App) View() string {
	if !a.ready {
		return "loading board..."
	}
	g := a.geom()
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(g), a.renderCanvas(g)),
		a.renderFooter(),
	)
}

func (a *App) renderHeader() string {
	mode := ""
	switch a.linkMode.Phase() {
	case controller.LinkAwaitingSource:
		mode = "  LINK: pick source"
	case controller.LinkAwaitingTarget:
		mode = "  LINK: pick target"
	}
	title := fmt.Sprintf("treeboard · session %s · %s%s", a.gw.SessionID(), a.role, mode)
	return headerStyle.Width(a.width).Render(truncate(title, a.width-2))
}

func (a *App) renderSidebar(g geometry) string {
	bodyW := sidebarWidth - 3 // border column plus padding
	var lines []string
	for _, p := range g.panels {
		lines = append(lines, a.panelTitle(p.panel, bodyW))
		body := a.panelBody(p.panel, bodyW, p.rows-1)
		lines = append(lines, body...)
	}
	for len(lines) < g.canvasH {
		lines = append(lines, "")
	}
	return sidebarStyle.Height(g.canvasH).Render(strings.Join(lines[:g.canvasH], "\n"))
}

func (a *App) panelTitle(p controller.Panel, w int) string {
	name := strings.ToUpper(string(p))
	if cat, ok := trayCategory(p); ok {
		name = fmt.Sprintf("%s (%d)", name, len(a.state.ByCategoryUnplaced(cat)))
	}
	marker := " "
	switch a.layout.State(p) {
	case controller.PanelMinimized:
		marker = "▸"
	case controller.PanelMaximized:
		marker = "▾"
	}
	line := truncate(marker+" "+name, w)
	if a.focusedPanel() == p {
		return panelTitleFocusStyle.Render(line)
	}
	return panelTitleStyle.Render(line)
}

// panelBody renders up to rows lines of one panel's content.
func (a *App) panelBody(p controller.Panel, w, rows int) []string {
	if rows <= 0 {
		return nil
	}
	var out []string
	if cat, ok := trayCategory(p); ok {
		for _, it := range a.state.ByCategoryUnplaced(cat) {
			if len(out) == rows {
				break
			}
			line := truncate(fmt.Sprintf("%s — %s", it.Content, it.Author), w)
			if it.ID == a.selectedID {
				out = append(out, trayItemSelectedStyle.Render(line))
			} else {
				out = append(out, trayItemStyle.Render(line))
			}
		}
	} else {
		out = a.reportLines(w, rows)
	}
	for len(out) < rows {
		out = append(out, "")
	}
	return out
}

func (a *App) reportLines(w, rows int) []string {
	items := a.state.Items()
	s := report.Build(a.gw.SessionID(), items, a.state.Links())
	lines := []string{
		fmt.Sprintf("%d notes, %d placed", s.Total, s.PlacedCount),
		fmt.Sprintf("%d links", s.LinkCount),
	}
	if it, ok := s.MostConnected(items); ok {
		lines = append(lines, truncate("hub: "+it.Content, w))
	}
	lines = append(lines, "press E to export")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for i := range lines {
		lines[i] = reportLineStyle.Render(truncate(lines[i], w))
	}
	return lines
}

// renderCanvas draws links first, then item boxes on top, into a rune grid
// the size of the canvas.
func (a *App) renderCanvas(g geometry) string {
	if g.canvasW <= 0 || g.canvasH <= 0 {
		return ""
	}
	grid := make([][]rune, g.canvasH)
	for y := range grid {
		grid[y] = make([]rune, g.canvasW)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}
	for _, l := range a.state.Links() {
		drawLine(grid, int(l.FromX), int(l.FromY), int(l.ToX), int(l.ToY))
	}
	for _, it := range a.state.Placed() {
		a.drawItem(grid, it)
	}
	rows := make([]string, len(grid))
	for y, row := range grid {
		rows[y] = string(row)
	}
	return strings.Join(rows, "\n")
}

func (a *App) drawItem(grid [][]rune, it board.Item) {
	x, y := int(it.X), int(it.Y)
	w, h := int(a.itemW), int(a.itemH)
	if w < 4 || h < 2 {
		return
	}
	bs := boxRunes(it.ID == a.selectedID)

	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			var r rune
			switch {
			case dy == 0 && dx == 0:
				r = bs.tl
			case dy == 0 && dx == w-1:
				r = bs.tr
			case dy == h-1 && dx == 0:
				r = bs.bl
			case dy == h-1 && dx == w-1:
				r = bs.br
			case dy == 0 || dy == h-1:
				r = bs.h
			case dx == 0 || dx == w-1:
				r = bs.v
			default:
				r = ' '
			}
			put(grid, x+dx, y+dy, r)
		}
	}

	label := it.Content
	if it.Root() {
		label = "◉ " + label
	}
	body := wrapLines(label, w-2, h-2)
	if h-2 >= 2 && len(body) < h-2 {
		body = append(body, truncate(it.Author, w-2))
	}
	for i, line := range body {
		for j, r := range []rune(line) {
			put(grid, x+1+j, y+1+i, r)
		}
	}
}

type box struct{ tl, tr, bl, br, h, v rune }

func boxRunes(selected bool) box {
	if selected {
		return box{tl: '╔', tr: '╗', bl: '╚', br: '╝', h: '═', v: '║'}
	}
	return box{tl: '┌', tr: '┐', bl: '└', br: '┘', h: '─', v: '│'}
}

func put(grid [][]rune, x, y int, r rune) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = r
}

// drawLine plots a dotted segment between two frozen link anchors.
func drawLine(grid [][]rune, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		put(grid, x, y, '·')
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	put(grid, x0, y0, '●')
	put(grid, x1, y1, '►')
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) renderFooter() string {
	status := statusStyle.Render(truncate(a.status, a.width))
	if a.compose != composeOff {
		prompt := "edit note"
		if a.compose == composeNew {
			prompt = fmt.Sprintf("new %s (↑/↓ category)", a.composeCat)
		}
		return status + "\n" + composeStyle.Render(truncate(prompt+": ", a.width/3)) + a.composeIn.View()
	}
	help := "n new · e edit · l link · d del · x del link · tab/-/+/0 panels · E export · q quit"
	share := "share " + ShareURL(a.gw.SessionID())
	// the join link must stay copyable: squeeze the help text, never the URL
	avail := a.width - len([]rune(share)) - 2
	if avail > 0 {
		return status + "\n" + helpStyle.Render(truncate(help, avail)+"  "+share)
	}
	return status + "\n" + helpStyle.Render(share)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

// wrapLines word-wraps s into at most max lines of width w, truncating the
// final line when the text overflows the box.
func wrapLines(s string, w, max int) []string {
	if w <= 0 || max <= 0 {
		return nil
	}
	words := strings.Fields(s)
	var lines []string
	cur := ""
	for _, word := range words {
		switch {
		case cur == "":
			cur = word
		case len([]rune(cur))+1+len([]rune(word)) <= w:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) > max {
		lines = lines[:max]
		lines[max-1] = truncate(lines[max-1]+"…", w)
	}
	for i := range lines {
		lines[i] = truncate(lines[i], w)
	}
	return lines
}
