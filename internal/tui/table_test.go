package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) (*TableModel, *fakeTable) {
	t.Helper()
	driver := &fakeTable{}
	m := NewTableModel(driver, session.Session{PlayerID: "p1", Username: "alice"}, sampleRooms()[0], quietLogger())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, driver
}

func submit(m *TableModel, input string) (*TableModel, []tea.Msg) {
	m.actionInput.SetValue(input)
	m, cmd := m.Update(key("enter"))
	return m, run(cmd)
}

func TestTableInitConnects(t *testing.T) {
	m, driver := newTable(t)

	run(m.Init())

	assert.Equal(t, []string{"r1"}, driver.connects)
	assert.Contains(t, m.View(), "Connecting...")
}

func TestTableSendsActions(t *testing.T) {
	m, driver := newTable(t)

	m, _ = submit(m, "fold")
	m, _ = submit(m, "bet 50")

	require.Len(t, driver.actions, 2)
	assert.Equal(t, "fold", driver.actions[0].action)
	assert.Nil(t, driver.actions[0].amount)
	assert.Equal(t, "bet", driver.actions[1].action)
	require.NotNil(t, driver.actions[1].amount)
	assert.Equal(t, 50, *driver.actions[1].amount)
	assert.Empty(t, m.actionInput.Value())
}

func TestTableInvalidInputSendsNothing(t *testing.T) {
	m, driver := newTable(t)

	m, msgs := submit(m, "bet lots")

	assert.Empty(t, msgs)
	assert.Empty(t, driver.actions)
	assert.Contains(t, m.entries[len(m.entries)-1], "invalid amount")
}

func TestTableLeaveAndRetry(t *testing.T) {
	m, driver := newTable(t)

	m, msgs := submit(m, "/retry")
	assert.Empty(t, msgs)
	assert.Equal(t, []string{"r1"}, driver.connects)

	_, msgs = submit(m, "/leave")
	assert.Equal(t, []tea.Msg{LeaveRoomMsg{}}, msgs)
	assert.Equal(t, 1, driver.disconnects)
}

func TestTableConnectionBanner(t *testing.T) {
	m, _ := newTable(t)

	m, _ = m.Update(StatusMsg{Connected: true})
	assert.Equal(t, "● connected", m.statusText())

	m, _ = m.Update(StatusMsg{Connected: false})
	m, _ = m.Update(NoticeMsg{Notice: connection.Notice{
		Level: connection.LevelWarning, Title: "Connection Lost", Description: "Attempting to reconnect (1/5)...",
	}})
	assert.Equal(t, "○ Attempting to reconnect (1/5)...", m.statusText())

	m, _ = m.Update(NoticeMsg{Notice: connection.Notice{
		Level: connection.LevelError, Title: "Connection Failed", Description: "Maximum reconnection attempts reached. Please try again later.",
	}})
	assert.Contains(t, m.statusText(), "/retry")

	m, _ = m.Update(ErrorMsg{Message: "Maximum reconnection attempts reached. Please try again later."})
	assert.Contains(t, m.View(), "Maximum reconnection attempts reached")
}

func TestTableRendersGameState(t *testing.T) {
	m, _ := newTable(t)

	state := protocol.GameState{
		Players: []protocol.Player{
			{ID: "p1", Username: "alice", Balance: 990, TotalBet: 10, Cards: []protocol.Card{{Suit: protocol.Hearts, Value: "A"}, {Suit: protocol.Spades, Value: "K"}}},
			{ID: "p2", Username: "bob", Balance: 960, TotalBet: 40},
		},
		Pot:           50,
		CurrentPlayer: "p1",
		Dealer:        "p2",
		Phase:         protocol.PhasePreflop,
		MinBet:        20,
	}
	m, _ = m.Update(GameStateMsg{State: state})

	view := m.View()
	assert.Contains(t, view, "Pot: $50")
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "call $30")
	assert.Contains(t, m.entries[len(m.entries)-1], "Your turn")

	state.CurrentPlayer = "p2"
	m, _ = m.Update(GameStateMsg{State: state})
	assert.Contains(t, m.entries[len(m.entries)-1], "Waiting for bob")
	assert.Contains(t, m.View(), "Waiting...")
}
