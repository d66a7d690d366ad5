package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerclient/internal/api"
	"github.com/lox/pokerclient/internal/protocol"
)

// RoomLister fetches the lobby's room list.
type RoomLister interface {
	Rooms(ctx context.Context) ([]protocol.Room, error)
}

// LobbyModel lists rooms, refreshing on an interval, and lets the player
// pick one to join.
type LobbyModel struct {
	rooms    RoomLister
	clock    quartz.Clock
	interval time.Duration
	timeout  time.Duration
	username string
	logger   *log.Logger

	list    []protocol.Room
	cursor  int
	loading bool
	err     error
	gen     int

	timer *quartz.Timer
	stop  chan struct{}

	width  int
	height int
}

// NewLobbyModel creates a lobby that refreshes every interval.
func NewLobbyModel(rooms RoomLister, clock quartz.Clock, interval, timeout time.Duration, username string, logger *log.Logger) *LobbyModel {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &LobbyModel{
		rooms:    rooms,
		clock:    clock,
		interval: interval,
		timeout:  timeout,
		username: username,
		logger:   logger.WithPrefix("tui"),
	}
}

// Init fetches the rooms and starts a new refresh cycle. Refreshes from an
// earlier cycle are ignored.
func (m *LobbyModel) Init() tea.Cmd {
	m.gen++
	m.loading = true
	return tea.Batch(m.fetch(), m.scheduleRefresh())
}

func (m *LobbyModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		rooms, err := m.rooms.Rooms(ctx)
		return RoomsMsg{Rooms: rooms, Err: err}
	}
}

// scheduleRefresh arms the refresh timer, replacing any earlier one. The
// returned command ends when the timer fires or the lobby is stopped.
func (m *LobbyModel) scheduleRefresh() tea.Cmd {
	m.stopRefresh()
	gen := m.gen
	t := m.clock.NewTimer(m.interval, "lobby", "refresh")
	stop := make(chan struct{})
	m.timer, m.stop = t, stop
	return func() tea.Msg {
		select {
		case <-t.C:
			return refreshMsg{gen: gen}
		case <-stop:
			return nil
		}
	}
}

func (m *LobbyModel) stopRefresh() {
	if m.timer == nil {
		return
	}
	m.timer.Stop()
	close(m.stop)
	m.timer, m.stop = nil, nil
}

// Update handles room listings, refresh ticks and navigation.
func (m *LobbyModel) Update(msg tea.Msg) (*LobbyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case RoomsMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.logger.Warn("Room listing failed", "error", msg.Err)
			return m, nil
		}
		m.list = msg.Rooms
		if m.cursor >= len(m.list) {
			m.cursor = max(len(m.list)-1, 0)
		}

	case refreshMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.logger.Debug("Refreshing rooms")
		return m, tea.Batch(m.fetch(), m.scheduleRefresh())

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.list)-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			return m, m.fetch()
		case "enter":
			return m, m.join()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *LobbyModel) join() tea.Cmd {
	if len(m.list) == 0 {
		return nil
	}
	room := m.list[m.cursor]
	if room.IsFull() {
		m.err = fmt.Errorf("%s is full", room.Name)
		return nil
	}
	m.logger.Info("Joining room", "room", room.ID, "name", room.Name)
	return func() tea.Msg { return JoinRoomMsg{Room: room} }
}

// Stop cancels the pending refresh.
func (m *LobbyModel) Stop() {
	m.gen++
	m.stopRefresh()
}

// View renders the lobby
func (m *LobbyModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf(" Poker Lobby  logged in as %s ", m.username)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(lobbyError(m.err)))
		b.WriteString("\n\n")
	}

	switch {
	case m.loading && len(m.list) == 0:
		b.WriteString(InfoStyle.Render("Loading rooms..."))
	case len(m.list) == 0:
		b.WriteString(InfoStyle.Render("No rooms available at the moment."))
	default:
		for i, room := range m.list {
			line := fmt.Sprintf("%-24s %-9s %d/%d players  %s", room.Name, room.Stakes(), room.PlayerCount, room.MaxPlayers, room.Status)
			switch {
			case i == m.cursor:
				b.WriteString(SelectedStyle.Render("> " + line))
			case room.IsFull():
				b.WriteString(InfoStyle.Render("  " + line))
			default:
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("↑↓ select • Enter join • r refresh • q quit"))
	return b.String()
}

func lobbyError(err error) string {
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		return "Your login session may have expired. Please log in again."
	case errors.Is(err, api.ErrNotLoggedIn):
		return "Please log in to view available rooms."
	case errors.Is(err, api.ErrUnavailable):
		return "Unable to fetch available rooms. Please try again."
	default:
		return err.Error()
	}
}
