package ws

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom   MessageType = "create_room"
	MsgJoinRoom     MessageType = "join_room"
	MsgStartGame    MessageType = "start_game"
	MsgSubmitAnswer MessageType = "submit_answer"
	MsgRoundTimeout MessageType = "round_timeout"
	MsgNextQuestion MessageType = "next_question"
	MsgPing         MessageType = "ping"
)

// Server → Client message types not covered by domain events
const (
	MsgPong  MessageType = "pong"
	MsgError MessageType = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType string, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads. Field names are the wire contract.

// CreateRoomPayload is the payload for create_room
type CreateRoomPayload struct {
	HostName string `json:"host_name"`
	Category string `json:"category"`
}

// JoinRoomPayload is the payload for join_room
type JoinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

// RoomActionPayload is the payload for start_game, round_timeout and next_question
type RoomActionPayload struct {
	RoomCode string `json:"room_code"`
}

// SubmitAnswerPayload is the payload for submit_answer
type SubmitAnswerPayload struct {
	RoomCode string `json:"room_code"`
	Answer   string `json:"answer"`
}
