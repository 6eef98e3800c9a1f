package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"goldenbell/internal/domain"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// StaleRoomTimeout is how long before an abandoned room is cleaned up
	StaleRoomTimeout = 2 * time.Hour
)

// RoomCodeChars are the characters used for room codes
const RoomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RoomStatus is an admin view of one active room
type RoomStatus struct {
	Code        string       `json:"code"`
	Host        string       `json:"host"`
	PlayerCount int          `json:"players_count"`
	State       domain.State `json:"state"`
	Category    string       `json:"category"`
}

// Hub is the process-wide room registry. It is the sole authority for room
// creation and destruction; its map is serialized independently of any
// individual room's lock.
type Hub struct {
	sessions map[string]*RoomSession
	mu       sync.RWMutex
	source   QuestionSource
	settings Settings
	logger   *slog.Logger
	done     chan struct{}
}

// NewHub creates a new room registry
func NewHub(source QuestionSource, settings Settings, logger *slog.Logger) *Hub {
	hub := &Hub{
		sessions: make(map[string]*RoomSession),
		source:   source,
		settings: settings,
		logger:   logger,
		done:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// CreateRoom creates a room with a fresh unique code, the creator as host and
// sole player, and returns its session.
func (h *Hub) CreateRoom(hostSID, hostName, category string) (*RoomSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var code string
	for attempts := 0; ; attempts++ {
		if attempts >= 10 {
			return nil, fmt.Errorf("failed to generate unique room code")
		}
		code = generateRoomCode()
		if _, exists := h.sessions[code]; !exists {
			break
		}
	}

	room := domain.NewRoom(code, hostSID, hostName, category)
	session := NewRoomSession(room, h.source, h.settings, h.logger)
	h.sessions[code] = session

	h.logger.Info("room created", "roomCode", code, "host", hostName, "category", category)

	return session, nil
}

// GetSession returns a room session by code. Codes are case-insensitive.
func (h *Hub) GetSession(code string) (*RoomSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// DeleteRoom force-closes a room: every member is told the room is gone, the
// session is shut down, and any pending scheduled round dies with it.
// Deleting an unknown code reports ErrRoomNotFound.
func (h *Hub) DeleteRoom(code string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	code = strings.ToUpper(code)
	session, ok := h.sessions[code]
	if !ok {
		return domain.ErrRoomNotFound
	}

	session.NotifyClosed("room closed by administrator")
	session.Close()
	delete(h.sessions, code)

	h.logger.Info("room deleted", "roomCode", code)
	return nil
}

// SessionCount returns the number of active rooms
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// TotalPlayerCount returns the number of players across all rooms
func (h *Hub) TotalPlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.PlayerCount()
	}
	return total
}

// ListRooms returns an admin snapshot of every active room
func (h *Hub) ListRooms() []RoomStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]RoomStatus, 0, len(h.sessions))
	for _, session := range h.sessions {
		list = append(list, session.Snapshot())
	}
	return list
}

// Close shuts down the registry and all sessions
func (h *Hub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*RoomSession)
}

// generateRoomCode generates a random 6-character uppercase alphanumeric code
func generateRoomCode() string {
	b := make([]byte, RoomCodeLength)
	rand.Read(b)

	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically cleans up stale rooms
func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleRooms()
		}
	}
}

// cleanupStaleRooms removes rooms whose connections are all gone and that
// have been around long enough to be abandoned.
func (h *Hub) cleanupStaleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for code, session := range h.sessions {
		if session.ClientCount() == 0 && now.Sub(session.CreatedAt()) > StaleRoomTimeout {
			session.Close()
			delete(h.sessions, code)
			h.logger.Info("stale room cleaned up", "roomCode", code)
		}
	}
}
