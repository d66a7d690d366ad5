package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/pokerclient/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(driver *fakeTable) *App {
	lobby := NewLobbyModel(&fakeRooms{rooms: sampleRooms()}, nil, 0, 0, "alice", quietLogger())
	return NewApp(lobby, driver, session.Session{PlayerID: "p1", Username: "alice"}, nil, quietLogger())
}

func TestAppJoinAndLeave(t *testing.T) {
	driver := &fakeTable{}
	app := newApp(driver)

	_, _ = app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	_, cmd := app.Update(JoinRoomMsg{Room: sampleRooms()[0]})
	require.True(t, app.InTable())
	run(cmd)
	assert.Equal(t, []string{"r1"}, driver.connects)
	assert.Contains(t, app.View(), "Low Stakes")

	_, _ = app.Update(LeaveRoomMsg{})
	assert.False(t, app.InTable())
}

func TestAppDropsNotificationsOutsideTable(t *testing.T) {
	app := newApp(&fakeTable{})

	_, cmd := app.Update(StatusMsg{Connected: false})
	assert.Nil(t, cmd)
	_, cmd = app.Update(ErrorMsg{Message: "late"})
	assert.Nil(t, cmd)
	assert.False(t, app.InTable())
}

func TestAppStartsAtGivenRoom(t *testing.T) {
	driver := &fakeTable{}
	room := sampleRooms()[2]
	lobby := NewLobbyModel(&fakeRooms{}, nil, 0, 0, "alice", quietLogger())
	app := NewApp(lobby, driver, session.Session{PlayerID: "p1", Username: "alice"}, &room, quietLogger())

	run(app.Init())

	assert.True(t, app.InTable())
	assert.Equal(t, []string{"r3"}, driver.connects)
}

func TestAppQuitsOnCtrlC(t *testing.T) {
	app := newApp(&fakeTable{})
	_, cmd := app.Update(key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
