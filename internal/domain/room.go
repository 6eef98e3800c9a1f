package domain

import (
	"sort"
	"time"
)

// Room represents one isolated game instance identified by a short code.
// All fields are guarded by the owning session; Room itself is not safe for
// concurrent use.
type Room struct {
	Code       string             `json:"code"`
	HostSID    string             `json:"hostSid"`
	Category   string             `json:"category"`
	State      State              `json:"state"`
	Players    map[string]*Player `json:"players"`
	Questions  []Question         `json:"-"`
	RoundIndex int                `json:"roundIndex"`
	RoundToken uint64             `json:"roundToken"`
	CreatedAt  time.Time          `json:"createdAt"`

	// join order of SIDs; the roster and score ties are stable by it
	order []string
}

// NewRoom creates a new room in the waiting state with the creator as host
// and sole player.
func NewRoom(code, hostSID, hostName, category string) *Room {
	r := &Room{
		Code:      code,
		HostSID:   hostSID,
		Category:  category,
		State:     StateWaiting,
		Players:   make(map[string]*Player),
		CreatedAt: time.Now(),
	}
	r.Players[hostSID] = NewPlayer(hostSID, hostName, true)
	r.order = append(r.order, hostSID)
	return r
}

// AddPlayer adds a player to the room. Joining is only permitted while the
// room is waiting; the roster is fixed from game start onward.
func (r *Room) AddPlayer(sid, name string) (*Player, error) {
	if r.State != StateWaiting {
		return nil, ErrGameAlreadyStarted
	}

	player := NewPlayer(sid, name, false)
	r.Players[sid] = player
	r.order = append(r.order, sid)
	return player, nil
}

// RemovePlayer removes a player from the roster. Only allowed while waiting;
// once the game has started a vacated seat simply stops answering and is
// eliminated on the next resolution.
func (r *Room) RemovePlayer(sid string) error {
	if r.State != StateWaiting {
		return ErrGameAlreadyStarted
	}
	if _, ok := r.Players[sid]; !ok {
		return ErrPlayerNotFound
	}

	delete(r.Players, sid)
	for i, id := range r.order {
		if id == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	// If the host left, the oldest remaining player inherits the room
	if r.HostSID == sid && len(r.order) > 0 {
		r.HostSID = r.order[0]
		r.Players[r.HostSID].IsHost = true
	}
	return nil
}

// Player returns a player by connection identity
func (r *Room) Player(sid string) (*Player, bool) {
	p, ok := r.Players[sid]
	return p, ok
}

// IsHost checks if the given connection is the room's host
func (r *Room) IsHost(sid string) bool {
	return r.HostSID == sid
}

// SetState transitions the room state. Transitions are one-directional.
func (r *Room) SetState(target State) error {
	if !r.State.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.State = target
	return nil
}

// BeginGame fixes the question set and moves the room into play.
func (r *Room) BeginGame(questions []Question) error {
	if r.State != StateWaiting {
		return ErrGameAlreadyStarted
	}
	if len(questions) == 0 {
		return ErrNoQuestionsAvailable
	}

	r.Questions = questions
	r.RoundIndex = 0
	return r.SetState(StatePlaying)
}

// PlayerList returns the roster in join order
func (r *Room) PlayerList() []PlayerInfo {
	list := make([]PlayerInfo, 0, len(r.order))
	for _, sid := range r.order {
		if p, ok := r.Players[sid]; ok {
			list = append(list, p.ToInfo())
		}
	}
	return list
}

// Leaderboard returns the roster ordered by descending score. Ties keep
// join order.
func (r *Room) Leaderboard() []PlayerInfo {
	list := r.PlayerList()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
	return list
}

// ActiveCount returns the number of non-eliminated players. Always recomputed,
// never cached.
func (r *Room) ActiveCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Active() {
			count++
		}
	}
	return count
}

// AnsweredCount returns the number of active players who answered this round
func (r *Room) AnsweredCount() int {
	count := 0
	for _, p := range r.Players {
		if p.Active() && p.Answered {
			count++
		}
	}
	return count
}
