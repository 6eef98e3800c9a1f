package domain

import "time"

// Player represents one connection's seat in a room
type Player struct {
	SID        string    `json:"sid"`
	Name       string    `json:"name"`
	IsHost     bool      `json:"isHost"`
	Score      int       `json:"score"`
	Eliminated bool      `json:"eliminated"`
	Answered   bool      `json:"answered"`
	Answer     string    `json:"answer,omitempty"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// NewPlayer creates a new player with the given connection identity and name
func NewPlayer(sid, name string, isHost bool) *Player {
	return &Player{
		SID:      sid,
		Name:     name,
		IsHost:   isHost,
		JoinedAt: time.Now(),
	}
}

// ResetForRound clears the per-round answer state. Eliminated players are
// never reset; their state is frozen for the rest of the game.
func (p *Player) ResetForRound() {
	if p.Eliminated {
		return
	}
	p.Answered = false
	p.Answer = ""
}

// Active returns true if the player is still in the game
func (p *Player) Active() bool {
	return !p.Eliminated
}

// PlayerInfo is the roster view of a player sent to clients
type PlayerInfo struct {
	SID        string `json:"sid"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Answered   bool   `json:"answered"`
	Eliminated bool   `json:"eliminated"`
	IsHost     bool   `json:"is_host"`
}

// ToInfo converts a Player to its roster view
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		SID:        p.SID,
		Name:       p.Name,
		Score:      p.Score,
		Answered:   p.Answered,
		Eliminated: p.Eliminated,
		IsHost:     p.IsHost,
	}
}
