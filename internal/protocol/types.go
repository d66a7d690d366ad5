package protocol

import "fmt"

// Phase is the stage of the current hand as reported by the server.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseShowdown Phase = "showdown"
)

// Suit of a card.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// CardValue holds a card rank. The server sends either a number (2-10) or a
// string ("J", "Q", "K", "A"), so both forms are accepted.
type CardValue string

// UnmarshalJSON accepts numeric and string ranks.
func (v *CardValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		if len(data) < 2 {
			return fmt.Errorf("invalid card value %s", data)
		}
		*v = CardValue(data[1 : len(data)-1])
		return nil
	}
	*v = CardValue(data)
	return nil
}

// Card is a single playing card.
type Card struct {
	Suit  Suit      `json:"suit"`
	Value CardValue `json:"value"`
}

// String renders a card as rank + suit symbol, e.g. "K♠".
func (c Card) String() string {
	var symbol string
	switch c.Suit {
	case Hearts:
		symbol = "♥"
	case Diamonds:
		symbol = "♦"
	case Clubs:
		symbol = "♣"
	case Spades:
		symbol = "♠"
	default:
		symbol = "?"
	}
	return string(c.Value) + symbol
}

// IsRed reports whether the card is a heart or diamond.
func (c Card) IsRed() bool {
	return c.Suit == Hearts || c.Suit == Diamonds
}

// Player is a seat at the table. Cards are only populated for the viewing
// client's own seat.
type Player struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Balance         int    `json:"balance"`
	Position        *int   `json:"position,omitempty"`
	Cards           []Card `json:"cards,omitempty"`
	Bet             int    `json:"bet,omitempty"`
	TotalBet        int    `json:"totalBet,omitempty"`
	Action          string `json:"action,omitempty"`
	Folded          bool   `json:"folded,omitempty"`
	IsAllIn         bool   `json:"isAllIn,omitempty"`
	IsDealer        bool   `json:"isDealer,omitempty"`
	IsSmallBlind    bool   `json:"isSmallBlind,omitempty"`
	IsBigBlind      bool   `json:"isBigBlind,omitempty"`
	IsCurrentPlayer bool   `json:"isCurrentPlayer,omitempty"`
}

// GameState is the authoritative snapshot pushed by the server. The client
// replaces its copy wholesale on every update and never validates it.
type GameState struct {
	Players        []Player `json:"players"`
	CommunityCards []Card   `json:"communityCards"`
	Pot            int      `json:"pot"`
	CurrentPlayer  string   `json:"currentPlayer"`
	Dealer         string   `json:"dealer"`
	SmallBlind     string   `json:"smallBlind"`
	BigBlind       string   `json:"bigBlind"`
	Phase          Phase    `json:"phase"`
	MinBet         int      `json:"minBet"`
	LastRaise      int      `json:"lastRaise"`
	TimeLeft       int      `json:"timeLeft"`
	Winner         *Player  `json:"winner,omitempty"`
}

// RoomStatus is the lifecycle of a room in the lobby.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// Room is lobby listing metadata. It is fetched over HTTP, never the socket.
type Room struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	PlayerCount int        `json:"playerCount"`
	MaxPlayers  int        `json:"maxPlayers"`
	SmallBlind  int        `json:"smallBlind"`
	BigBlind    int        `json:"bigBlind"`
	Status      RoomStatus `json:"status"`
}

// IsFull reports whether every seat is taken.
func (r Room) IsFull() bool {
	return r.MaxPlayers > 0 && r.PlayerCount >= r.MaxPlayers
}

// Stakes renders the blind structure, e.g. "5/10".
func (r Room) Stakes() string {
	return fmt.Sprintf("%d/%d", r.SmallBlind, r.BigBlind)
}
