// Package tui is the terminal front end: a lobby listing rooms and a table
// view driven entirely by connection hub notifications.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
)

// App switches between the lobby and a table.
type App struct {
	lobby   *LobbyModel
	table   *TableModel
	driver  Table
	session session.Session
	logger  *log.Logger

	initial *protocol.Room
	width   int
	height  int
}

// NewApp creates the root model. If room is non-nil the app opens straight
// into that room's table.
func NewApp(lobby *LobbyModel, driver Table, sess session.Session, room *protocol.Room, logger *log.Logger) *App {
	return &App{
		lobby:   lobby,
		driver:  driver,
		session: sess,
		logger:  logger.WithPrefix("tui"),
		initial: room,
	}
}

// Init starts in the lobby or, when a room was given, at its table.
func (a *App) Init() tea.Cmd {
	if a.initial != nil {
		return a.openTable(*a.initial)
	}
	return a.lobby.Init()
}

func (a *App) openTable(room protocol.Room) tea.Cmd {
	a.lobby.Stop()
	a.table = NewTableModel(a.driver, a.session, room, a.logger)
	if a.width > 0 {
		a.table, _ = a.table.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return a.table.Init()
}

// Update routes messages to the active view.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.lobby, _ = a.lobby.Update(msg)
		if a.table != nil {
			a.table, _ = a.table.Update(msg)
		}
		return a, nil

	case JoinRoomMsg:
		a.logger.Info("Opening table", "room", msg.Room.ID)
		return a, a.openTable(msg.Room)

	case LeaveRoomMsg:
		a.logger.Info("Back to lobby")
		a.table = nil
		return a, a.lobby.Init()

	case GameStateMsg, StatusMsg, ErrorMsg, NoticeMsg:
		// Notifications can still arrive after leaving a table.
		if a.table == nil {
			a.logger.Debug("Dropping notification outside a table", "type", fmt.Sprintf("%T", msg))
			return a, nil
		}
	}

	var cmd tea.Cmd
	if a.table != nil {
		a.table, cmd = a.table.Update(msg)
	} else {
		a.lobby, cmd = a.lobby.Update(msg)
	}
	return a, cmd
}

// View renders the active view
func (a *App) View() string {
	if a.table != nil {
		return a.table.View()
	}
	return a.lobby.View()
}

// InTable reports whether a table view is open.
func (a *App) InTable() bool {
	return a.table != nil
}
