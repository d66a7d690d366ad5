// Package protocol defines the JSON frames exchanged with the table server
// and the read-only game types carried inside them.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType is the `type` discriminator carried by every frame.
type MessageType string

const (
	// Client -> Server
	TypeJoin   MessageType = "join"
	TypeLeave  MessageType = "leave"
	TypeAction MessageType = "action"

	// Server -> Client
	TypeGameState   MessageType = "game_state"
	TypeError       MessageType = "error"
	TypeJoinSuccess MessageType = "join_success"
	TypeConnected   MessageType = "connected"
)

// Client -> Server Messages

// Join is sent once per successful open, before any game action.
type Join struct {
	Type     MessageType `json:"type"`
	PlayerID string      `json:"playerId"`
	Username string      `json:"username"`
}

// Leave is sent best-effort before an intentional disconnect.
type Leave struct {
	Type     MessageType `json:"type"`
	PlayerID string      `json:"playerId"`
}

// Action carries a player decision. Amount is omitted entirely when unset.
type Action struct {
	Type     MessageType `json:"type"`
	Action   string      `json:"action"`
	PlayerID string      `json:"playerId"`
	Amount   *int        `json:"amount,omitempty"`
}

// NewJoin builds a join frame.
func NewJoin(playerID, username string) Join {
	return Join{Type: TypeJoin, PlayerID: playerID, Username: username}
}

// NewLeave builds a leave frame.
func NewLeave(playerID string) Leave {
	return Leave{Type: TypeLeave, PlayerID: playerID}
}

// NewAction builds an action frame. A nil amount is not sent.
func NewAction(action, playerID string, amount *int) Action {
	return Action{Type: TypeAction, Action: action, PlayerID: playerID, Amount: amount}
}

// Server -> Client Messages

// Envelope is the decoded form of any inbound frame. Only the fields
// relevant to Type are populated.
type Envelope struct {
	Type    MessageType `json:"type"`
	State   *GameState  `json:"state,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Decode parses a raw inbound frame. Frames without a type are rejected so
// that stray JSON values never reach the dispatcher.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode frame: missing type")
	}
	return &env, nil
}

// Encode serializes an outbound frame.
func Encode(frame any) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}
