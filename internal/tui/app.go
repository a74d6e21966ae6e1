// Package tui is the terminal client: a bubbletea program rendering the
// shared board and feeding user input through the interaction controllers.
// All state transitions happen inside Update — one event at a time, never
// concurrently — while persistence runs fire-and-forget in commands.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"treeboard/internal/board"
	"treeboard/internal/boardstate"
	"treeboard/internal/config"
	"treeboard/internal/controller"
	"treeboard/internal/prefs"
	"treeboard/internal/report"
	"treeboard/internal/store"
	"treeboard/internal/sync"
)

// Role selects the client's capabilities.
type Role string

const (
	RoleModerator   Role = "moderator"
	RoleParticipant Role = "participant"
)

type composeMode int

const (
	composeOff composeMode = iota
	composeNew
	composeEdit
)

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	cfg      config.Config
	gw       *sync.Gateway
	state    *boardstate.State
	log      *zap.Logger
	role     Role
	identity prefs.Identity

	drag     controller.Drag
	linkMode controller.LinkMode
	layout   controller.Layout
	seeder   controller.Seeder

	itemFeed *store.ItemFeed
	linkFeed *store.LinkFeed

	bounds board.Bounds
	itemW  float64
	itemH  float64

	width  int
	height int
	ready  bool

	selectedID string
	focusPanel int // index into controller.PanelList

	compose    composeMode
	composeIn  textinput.Model
	composeCat board.Category
	editID     string

	status string
}

// New wires the app for one session.
func New(ctx context.Context, cfg config.Config, gw *sync.Gateway, role Role, identity prefs.Identity, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	in := textinput.New()
	in.CharLimit = 240
	in.Width = 48
	return &App{
		ctx:        ctx,
		cfg:        cfg,
		gw:         gw,
		state:      boardstate.New(),
		log:        log,
		role:       role,
		identity:   identity,
		layout:     controller.NewLayout(),
		bounds:     board.Bounds{Width: cfg.Board.Width, Height: cfg.Board.Height},
		itemW:      cfg.Board.ItemWidth,
		itemH:      cfg.Board.ItemHeight,
		composeIn:  in,
		composeCat: board.CategoryCause,
	}
}

// Moderator reports whether this client may delete and seed.
func (a *App) Moderator() bool { return a.role == RoleModerator }

func (a *App) Init() tea.Cmd {
	a.itemFeed, a.linkFeed = a.gw.Subscribe(a.ctx)
	return tea.Batch(waitItems(a.itemFeed), waitLinks(a.linkFeed))
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

type itemsSnapshotMsg []board.Item

type linksSnapshotMsg []board.Link

type feedClosedMsg struct{}

// persistFailedMsg reports a fire-and-forget persistence failure. It only
// updates the log/status line; local optimistic state is never rolled back.
type persistFailedMsg struct {
	op  string
	err error
}

type exportDoneMsg struct {
	path string
	err  error
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// waitItems consumes the next tick of the item feed: the snapshot sequence
// is an infinite lazy stream re-armed after every delivery.
func waitItems(feed *store.ItemFeed) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-feed.C
		if !ok {
			return feedClosedMsg{}
		}
		return itemsSnapshotMsg(snap)
	}
}

func waitLinks(feed *store.LinkFeed) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-feed.C
		if !ok {
			return feedClosedMsg{}
		}
		return linksSnapshotMsg(snap)
	}
}

// persist wraps a gateway call as a detached command. The UI never blocks
// on it; failures surface only in the log and the status line.
func persist(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return persistFailedMsg{op: op, err: err}
		}
		return nil
	}
}

func (a *App) createItemCmd(it board.Item) tea.Cmd {
	return persist("create item", func() error {
		err := a.gw.CreateItem(a.ctx, it)
		if err == sync.ErrEmptyContent {
			return nil // validation drop, not a failure
		}
		return err
	})
}

func (a *App) updateItemCmd(id string, p board.ItemPatch) tea.Cmd {
	return persist("update item", func() error { return a.gw.UpdateItem(a.ctx, id, p) })
}

func (a *App) deleteItemCmd(id string) tea.Cmd {
	return persist("delete item", func() error {
		err := a.gw.DeleteItem(a.ctx, id)
		if err == sync.ErrRootProtected {
			return nil // silently refused
		}
		return err
	})
}

func (a *App) createLinkCmd(from, to sync.Endpoint) tea.Cmd {
	return persist("create link", func() error {
		err := a.gw.CreateLink(a.ctx, from, to)
		if err == sync.ErrSelfLink || err == sync.ErrEndpointMissing {
			return nil
		}
		return err
	})
}

func (a *App) deleteLinkCmd(id string) tea.Cmd {
	return persist("delete link", func() error { return a.gw.DeleteLink(a.ctx, id) })
}

// seedCmd performs the already-claimed seed attempt. It touches no App
// state, so it is safe on a command goroutine.
func (a *App) seedCmd() tea.Cmd {
	gw, ctx := a.gw, a.ctx
	return persist("seed root", func() error {
		return controller.SeedRoot(ctx, gw)
	})
}

func (a *App) exportCmd() tea.Cmd {
	items := a.state.Items()
	links := a.state.Links()
	session := a.gw.SessionID()
	return func() tea.Msg {
		path := fmt.Sprintf("treeboard-%s-%s.md", session, time.Now().Format("20060102-150405"))
		err := report.Export(path, session, items, links)
		return exportDoneMsg{path: path, err: err}
	}
}

// ShareURL is the join link shown in the footer, copyable by participants.
func ShareURL(sessionID string) string {
	return fmt.Sprintf("treeboard://join?session=%s&participant=1", sessionID)
}
