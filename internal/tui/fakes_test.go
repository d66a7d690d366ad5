package tui

import (
	"context"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type sentAction struct {
	action string
	amount *int
}

type fakeTable struct {
	mu          sync.Mutex
	connects    []string
	disconnects int
	actions     []sentAction
}

func (f *fakeTable) Connect(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, roomID)
}

func (f *fakeTable) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
}

func (f *fakeTable) SendPlayerAction(action string, opts ...connection.ActionOption) {
	frame := protocol.NewAction(action, "p1", nil)
	for _, opt := range opts {
		opt(&frame)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, sentAction{action: frame.Action, amount: frame.Amount})
}

type fakeRooms struct {
	rooms []protocol.Room
	err   error
}

func (f *fakeRooms) Rooms(ctx context.Context) ([]protocol.Room, error) {
	return f.rooms, f.err
}

type fakeSender struct {
	msgs chan tea.Msg
}

func (s *fakeSender) Send(msg tea.Msg) {
	s.msgs <- msg
}

// run executes cmd, expanding batches, and returns the messages produced.
// Commands that block, such as the lobby refresh timer, must not be passed.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleRooms() []protocol.Room {
	return []protocol.Room{
		{ID: "r1", Name: "Low Stakes", PlayerCount: 2, MaxPlayers: 6, SmallBlind: 5, BigBlind: 10, Status: protocol.RoomPlaying},
		{ID: "r2", Name: "Full House", PlayerCount: 6, MaxPlayers: 6, SmallBlind: 10, BigBlind: 20, Status: protocol.RoomPlaying},
		{ID: "r3", Name: "Quiet Corner", PlayerCount: 0, MaxPlayers: 4, SmallBlind: 1, BigBlind: 2, Status: protocol.RoomWaiting},
	}
}
