package protocol

// The helpers below only derive display values from a snapshot. They do not
// enforce any betting rule; the server remains authoritative.

// LocalPlayer returns the seat belonging to playerID, if present.
func (s *GameState) LocalPlayer(playerID string) (Player, bool) {
	if s == nil || playerID == "" {
		return Player{}, false
	}
	for _, p := range s.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// IsPlayerTurn reports whether the server says playerID is to act.
func (s *GameState) IsPlayerTurn(playerID string) bool {
	return s != nil && playerID != "" && s.CurrentPlayer == playerID
}

// HighestBet returns the largest cumulative bet at the table.
func (s *GameState) HighestBet() int {
	if s == nil {
		return 0
	}
	highest := 0
	for _, p := range s.Players {
		highest = max(highest, p.TotalBet)
	}
	return highest
}

// CallAmount is the difference between the highest bet and playerID's bet.
func (s *GameState) CallAmount(playerID string) int {
	p, ok := s.LocalPlayer(playerID)
	if !ok {
		return 0
	}
	return s.HighestBet() - p.TotalBet
}

// CanCheck reports whether playerID has already matched the highest bet.
func (s *GameState) CanCheck(playerID string) bool {
	p, ok := s.LocalPlayer(playerID)
	if !ok {
		return false
	}
	return p.TotalBet >= s.HighestBet()
}

// PlayerName resolves a player id reference to a display name.
func (s *GameState) PlayerName(playerID string) string {
	if p, ok := s.LocalPlayer(playerID); ok {
		return p.Username
	}
	return playerID
}
