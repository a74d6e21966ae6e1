package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"treeboard/internal/board"
	"treeboard/internal/controller"
	"treeboard/internal/sync"
)

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case itemsSnapshotMsg:
		observedEmpty := len(msg) == 0
		a.state.ApplyItemsSnapshot(msg)
		cmds := []tea.Cmd{waitItems(a.itemFeed)}
		// the claim happens here, on the event loop; the detached command
		// only carries out an attempt already decided
		if a.Moderator() && a.seeder.Claim(observedEmpty) {
			cmds = append(cmds, a.seedCmd())
		}
		return a, tea.Batch(cmds...)

	case linksSnapshotMsg:
		a.state.ApplyLinksSnapshot(msg)
		return a, waitLinks(a.linkFeed)

	case feedClosedMsg:
		a.status = "sync feed closed"
		return a, nil

	case persistFailedMsg:
		a.log.Warn("persist failed", zap.String("op", msg.op), zap.Error(msg.err))
		a.status = fmt.Sprintf("%s: not saved (will not retry)", msg.op)
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.log.Warn("export failed", zap.Error(msg.err))
			a.status = "export failed"
		} else {
			a.status = "report written to " + msg.path
		}
		return a, nil

	case tea.KeyMsg:
		if a.compose != composeOff {
			return a.updateCompose(msg)
		}
		return a.updateKeys(msg)

	case tea.MouseMsg:
		return a.updateMouse(msg)
	}
	return a, nil
}

func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return a, tea.Quit

	case "esc":
		if a.linkMode.Active() {
			a.linkMode = controller.LinkMode{}
			a.status = "link mode off"
		}
		return a, nil

	case "l":
		a.linkMode = a.linkMode.Toggle()
		if a.linkMode.Active() {
			a.status = "link mode: click a source item"
		} else {
			a.status = "link mode off"
		}
		return a, nil

	case "n":
		a.compose = composeNew
		a.composeIn.SetValue("")
		a.composeIn.Focus()
		return a, nil

	case "e":
		it, ok := a.state.Item(a.selectedID)
		if !ok {
			a.status = "nothing selected"
			return a, nil
		}
		a.compose = composeEdit
		a.editID = it.ID
		a.composeIn.SetValue(it.Content)
		a.composeIn.CursorEnd()
		a.composeIn.Focus()
		return a, nil

	case "d":
		if !a.Moderator() {
			a.status = "only the moderator deletes notes"
			return a, nil
		}
		it, ok := a.state.Item(a.selectedID)
		if !ok {
			a.status = "nothing selected"
			return a, nil
		}
		if it.Root() {
			a.status = "the central problem cannot be deleted"
			return a, nil
		}
		a.selectedID = ""
		return a, a.deleteItemCmd(it.ID)

	case "x":
		if !a.Moderator() {
			a.status = "only the moderator deletes links"
			return a, nil
		}
		touching := board.LinksTouching(a.state.Links(), a.selectedID)
		if len(touching) == 0 {
			a.status = "no link on the selected item"
			return a, nil
		}
		return a, a.deleteLinkCmd(touching[len(touching)-1].ID)

	case "tab":
		a.focusPanel = (a.focusPanel + 1) % len(controller.PanelList())
		return a, nil

	case "-":
		a.layout = a.layout.Minimize(a.focusedPanel())
		return a, nil

	case "+", "=":
		a.layout = a.layout.Maximize(a.focusedPanel())
		return a, nil

	case "0":
		a.layout = a.layout.Restore()
		return a, nil

	case "E":
		a.status = "exporting report"
		return a, a.exportCmd()
	}
	return a, nil
}

func (a *App) focusedPanel() controller.Panel {
	return controller.PanelList()[a.focusPanel]
}

func (a *App) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeCompose()
		return a, nil

	case "up", "down":
		if a.compose == composeNew {
			a.composeCat = nextCategory(a.composeCat, msg.String() == "down")
		}
		return a, nil

	case "enter":
		content := a.composeIn.Value()
		mode, editID := a.compose, a.editID
		a.closeCompose()
		if mode == composeEdit {
			if strings.TrimSpace(content) == "" {
				a.status = "edit discarded: empty content"
				return a, nil
			}
			p := board.ContentPatch(content)
			a.state.ApplyPatch(editID, p)
			return a, a.updateItemCmd(editID, p)
		}
		it := board.Item{
			Content:  content,
			Author:   a.author(),
			Category: a.composeCat,
		}
		if dupe, ok := board.NearDuplicate(a.state.Items(), it.Category, content); ok {
			a.status = fmt.Sprintf("similar note already in tray: %q", dupe.Content)
		}
		return a, a.createItemCmd(it)
	}

	var cmd tea.Cmd
	a.composeIn, cmd = a.composeIn.Update(msg)
	return a, cmd
}

func (a *App) closeCompose() {
	a.compose = composeOff
	a.editID = ""
	a.composeIn.Blur()
}

func (a *App) author() string {
	if a.Moderator() {
		return "Moderator"
	}
	return a.identity.Author()
}

func nextCategory(c board.Category, forward bool) board.Category {
	order := []board.Category{board.CategoryProblem, board.CategoryCause, board.CategoryConsequence}
	for i, cur := range order {
		if cur == c {
			if forward {
				return order[(i+1)%len(order)]
			}
			return order[(i+len(order)-1)%len(order)]
		}
	}
	return board.CategoryCause
}

func (a *App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.ready {
		return a, nil
	}
	g := a.geom()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return a, nil
		}
		if bx, by, ok := g.toBoard(msg.X, msg.Y); ok {
			return a.pressCanvas(bx, by)
		}
		if p, row, ok := g.panelRowAt(msg.X, msg.Y); ok {
			return a.pressPanel(p, row, msg.X, msg.Y, g)
		}
		return a, nil

	case tea.MouseActionMotion:
		if !a.drag.Active() {
			return a, nil
		}
		bx, by := g.boardPointer(msg.X, msg.Y)
		id, patch, ok := a.drag.Move(bx, by, a.bounds, a.itemW, a.itemH)
		if !ok {
			return a, nil
		}
		a.state.ApplyPatch(id, patch)
		return a, a.updateItemCmd(id, patch)

	case tea.MouseActionRelease:
		a.drag = a.drag.End()
		return a, nil
	}
	return a, nil
}

// pressCanvas handles a left press on the board. Link mode intercepts the
// click before any drag can start.
func (a *App) pressCanvas(bx, by float64) (tea.Model, tea.Cmd) {
	it, ok := a.placedItemAt(bx, by)
	if !ok {
		return a, nil
	}
	a.selectedID = it.ID
	if a.linkMode.Active() {
		return a, a.linkClick(it.ID)
	}
	a.drag = a.drag.Start(it, bx, by)
	return a, nil
}

// pressPanel handles a left press in the sidebar. A tray row selects its
// item; in link mode it feeds the selector, otherwise it starts a drag that
// places the note once the pointer enters the canvas.
func (a *App) pressPanel(p controller.Panel, row int, x, y int, g geometry) (tea.Model, tea.Cmd) {
	for i, pl := range controller.PanelList() {
		if pl == p {
			a.focusPanel = i
		}
	}
	cat, ok := trayCategory(p)
	if !ok || row < 0 {
		return a, nil
	}
	tray := a.state.ByCategoryUnplaced(cat)
	if row >= len(tray) {
		return a, nil
	}
	it := tray[row]
	a.selectedID = it.ID
	if a.linkMode.Active() {
		return a, a.linkClick(it.ID)
	}
	// tray items have no board position yet; anchor the note under the
	// pointer so the drag does not jump when it reaches the canvas
	bx, by := g.boardPointer(x, y)
	it.X = bx - a.itemW/2
	it.Y = by - a.itemH/2
	a.drag = a.drag.Start(it, bx, by)
	return a, nil
}

func (a *App) linkClick(id string) tea.Cmd {
	var req *controller.LinkRequest
	a.linkMode, req = a.linkMode.Click(id)
	if req == nil {
		if a.linkMode.Active() {
			a.status = "link source chosen: click a target"
		} else {
			a.status = "link cancelled"
		}
		return nil
	}
	from, okFrom := a.state.Item(req.FromID)
	to, okTo := a.state.Item(req.ToID)
	if !okFrom || !okTo {
		a.status = "link endpoint vanished"
		return nil
	}
	a.status = "link created"
	return a.createLinkCmd(a.endpoint(from), a.endpoint(to))
}

// endpoint freezes an item's current center as a link anchor.
func (a *App) endpoint(it board.Item) sync.Endpoint {
	return sync.Endpoint{ID: it.ID, X: it.X + a.itemW/2, Y: it.Y + a.itemH/2}
}
