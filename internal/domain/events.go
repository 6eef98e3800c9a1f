package domain

import "time"

// EventType represents the type of an outbound room event. The values are
// the wire event names delivered verbatim to clients.
type EventType string

const (
	EventRoomCreated    EventType = "room_created"
	EventPlayerJoined   EventType = "player_joined"
	EventNewQuestion    EventType = "new_question"
	EventPlayerAnswered EventType = "player_answered"
	EventRoundResult    EventType = "round_result"
	EventGameOver       EventType = "game_over"
	EventRoomClosed     EventType = "room_closed"
	EventError          EventType = "error"
)

// Event is an outbound broadcast instruction emitted by the core. The gateway
// delivers it verbatim: to the whole room, or to TargetSID only when set.
type Event struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	TargetSID string      `json:"targetSid,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a room-wide broadcast event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewTargetedEvent creates an event delivered to a single connection
func NewTargetedEvent(eventType EventType, roomCode, targetSID string, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		RoomCode:  roomCode,
		TargetSID: targetSID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for outbound events. Field names are the wire contract.

// RoomCreatedPayload is sent to the creator's room after create_room
type RoomCreatedPayload struct {
	RoomCode string       `json:"room_code"`
	Players  []PlayerInfo `json:"players"`
}

// PlayerJoinedPayload carries the updated roster after a join
type PlayerJoinedPayload struct {
	Players []PlayerInfo `json:"players"`
}

// NewQuestionPayload opens a round for the whole room
type NewQuestionPayload struct {
	Question      string       `json:"question"`
	Options       string       `json:"options"`
	Type          QuestionType `json:"type"`
	Index         int          `json:"index"` // 1-based
	Total         int          `json:"total"`
	TimeLimit     int          `json:"time_limit"` // seconds
	ActivePlayers int          `json:"active_players"`
}

// PlayerAnsweredPayload announces that a player answered, withholding correctness
type PlayerAnsweredPayload struct {
	SID string `json:"sid"`
}

// RoundResultPayload is broadcast after a round resolves
type RoundResultPayload struct {
	CorrectAnswer  string       `json:"correct_answer"`
	Eliminated     []string     `json:"eliminated"`
	RemainingCount int          `json:"remaining_count"`
	Leaderboard    []PlayerInfo `json:"leaderboard"`
}

// GameOverPayload terminates a game. Leaderboard is set for reason "finished",
// Winner for reason "last_man"; a draw carries only the reason.
type GameOverPayload struct {
	Reason      GameOverReason `json:"reason"`
	Leaderboard []PlayerInfo   `json:"leaderboard,omitempty"`
	Winner      *PlayerInfo    `json:"winner,omitempty"`
}

// RoomClosedPayload is broadcast when an admin force-closes a room
type RoomClosedPayload struct {
	Message string `json:"message"`
}

// ErrorPayload is sent to the offending caller only
type ErrorPayload struct {
	Message string `json:"message"`
}
