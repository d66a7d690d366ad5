package tui

import (
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
)

// Messages forwarded from the connection hub.
type (
	GameStateMsg struct{ State protocol.GameState }
	StatusMsg    struct{ Connected bool }
	ErrorMsg     struct{ Message string }
	NoticeMsg    struct{ Notice connection.Notice }
)

// RoomsMsg carries the result of a room listing request.
type RoomsMsg struct {
	Rooms []protocol.Room
	Err   error
}

// JoinRoomMsg switches the app to the table view for Room.
type JoinRoomMsg struct{ Room protocol.Room }

// LeaveRoomMsg returns the app to the lobby.
type LeaveRoomMsg struct{}

type refreshMsg struct{ gen int }
