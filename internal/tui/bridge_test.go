package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, s *fakeSender) tea.Msg {
	t.Helper()
	select {
	case msg := <-s.msgs:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestBridgeForwardsInOrder(t *testing.T) {
	hub := connection.NewHub(quietLogger())
	sender := &fakeSender{msgs: make(chan tea.Msg, 10)}
	bridge := NewBridge(hub, sender, quietLogger())
	defer bridge.Close()

	hub.Status.Publish(false)
	hub.Errors.Publish("boom")
	hub.GameState.Publish(protocol.GameState{Pot: 10})
	hub.Notices.Publish(connection.Notice{Level: connection.LevelInfo, Title: "hi"})

	assert.Equal(t, StatusMsg{Connected: false}, receive(t, sender))
	assert.Equal(t, ErrorMsg{Message: "boom"}, receive(t, sender))
	assert.Equal(t, GameStateMsg{State: protocol.GameState{Pot: 10}}, receive(t, sender))
	assert.Equal(t, NoticeMsg{Notice: connection.Notice{Level: connection.LevelInfo, Title: "hi"}}, receive(t, sender))
}

func TestBridgePublishDoesNotBlockOnSlowSender(t *testing.T) {
	hub := connection.NewHub(quietLogger())
	sender := &fakeSender{msgs: make(chan tea.Msg)}
	bridge := NewBridge(hub, sender, quietLogger())
	defer bridge.Close()

	published := make(chan struct{})
	go func() {
		for range 20 {
			hub.Status.Publish(true)
		}
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked on the sender")
	}

	for range 20 {
		assert.Equal(t, StatusMsg{Connected: true}, receive(t, sender))
	}
}

func TestBridgeCloseUnsubscribes(t *testing.T) {
	hub := connection.NewHub(quietLogger())
	sender := &fakeSender{msgs: make(chan tea.Msg, 10)}
	bridge := NewBridge(hub, sender, quietLogger())

	require.Equal(t, 1, hub.Status.Len())
	bridge.Close()
	bridge.Close()

	assert.Equal(t, 0, hub.Status.Len())
	assert.Equal(t, 0, hub.Notices.Len())
	hub.Status.Publish(true)
	assert.Empty(t, sender.msgs)
}
