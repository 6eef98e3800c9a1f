package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"goldenbell/internal/app"
	"goldenbell/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection. Its sid is the caller
// identity the core sees on every inbound event. A client is unbound until
// its first create_room or join_room.
type Client struct {
	conn    *websocket.Conn
	hub     *app.Hub
	sid     string
	session *app.RoomSession
	send    chan []byte
	done    chan struct{}
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.Hub, sid string, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		sid:    sid,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// GetSID returns the connection identity for this client
func (c *Client) GetSID() string {
	return c.sid
}

// Send implements app.ClientConnection. Core events are unwrapped into the
// wire envelope before marshalling.
func (c *Client) Send(message interface{}) error {
	if event, ok := message.(*domain.Event); ok {
		message = &ServerMessage{
			Type:      string(event.Type),
			Payload:   event.Payload,
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "sid", c.sid)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		if session := c.boundSession(); session != nil {
			session.UnregisterClient(c.sid)
			session.Leave(c.sid)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(domain.ErrInvalidPayload.Error())
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgStartGame:
		c.handleStartGame(msg.Payload)
	case MsgSubmitAnswer:
		c.handleSubmitAnswer(msg.Payload)
	case MsgRoundTimeout:
		c.handleRoundTimeout(msg.Payload)
	case MsgNextQuestion:
		c.handleNextQuestion(msg.Payload)
	case MsgPing:
		c.Send(NewServerMessage(string(MsgPong), nil))
	default:
		c.sendError("unknown message type")
	}
}

// handleCreateRoom handles a create_room message; the caller becomes host
func (c *Client) handleCreateRoom(raw json.RawMessage) {
	var payload CreateRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.HostName == "" {
		c.sendError(domain.ErrInvalidPayload.Error())
		return
	}

	if c.boundSession() != nil {
		c.sendError("already in a room")
		return
	}

	session, err := c.hub.CreateRoom(c.sid, payload.HostName, payload.Category)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.bindSession(session)
	session.RegisterClient(c.sid, c)
	session.AnnounceCreated()
}

// handleJoinRoom handles a join_room message
func (c *Client) handleJoinRoom(raw json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" || payload.PlayerName == "" {
		c.sendError(domain.ErrInvalidPayload.Error())
		return
	}

	session, err := c.hub.GetSession(payload.RoomCode)
	if err != nil {
		c.sendError(domain.ErrRoomNotFound.Error())
		return
	}

	// Register before joining so the roster broadcast reaches the joiner too
	session.RegisterClient(c.sid, c)
	if err := session.Join(c.sid, payload.PlayerName); err != nil {
		session.UnregisterClient(c.sid)
		c.sendError(err.Error())
		return
	}

	c.bindSession(session)
}

// handleStartGame handles a start_game message (host only)
func (c *Client) handleStartGame(raw json.RawMessage) {
	session, ok := c.lookupRoom(raw)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := session.StartGame(ctx, c.sid); err != nil {
		c.sendError(err.Error())
	}
}

// handleSubmitAnswer handles a submit_answer message. Late, duplicate and
// unknown submitters are dropped by the session without a reply.
func (c *Client) handleSubmitAnswer(raw json.RawMessage) {
	var payload SubmitAnswerPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" {
		c.sendError(domain.ErrInvalidPayload.Error())
		return
	}

	session, err := c.hub.GetSession(payload.RoomCode)
	if err != nil {
		return
	}

	session.SubmitAnswer(c.sid, payload.Answer)
}

// handleRoundTimeout handles a round_timeout message (host only)
func (c *Client) handleRoundTimeout(raw json.RawMessage) {
	session, ok := c.lookupRoom(raw)
	if !ok {
		return
	}

	if err := session.ForceTimeout(c.sid); err != nil {
		c.sendError(err.Error())
	}
}

// handleNextQuestion handles a next_question message (host only)
func (c *Client) handleNextQuestion(raw json.RawMessage) {
	session, ok := c.lookupRoom(raw)
	if !ok {
		return
	}

	if err := session.NextQuestion(c.sid); err != nil {
		c.sendError(err.Error())
	}
}

// lookupRoom resolves the room_code payload of a room-scoped message
func (c *Client) lookupRoom(raw json.RawMessage) (*app.RoomSession, bool) {
	var payload RoomActionPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" {
		c.sendError(domain.ErrInvalidPayload.Error())
		return nil, false
	}

	session, err := c.hub.GetSession(payload.RoomCode)
	if err != nil {
		c.sendError(domain.ErrRoomNotFound.Error())
		return nil, false
	}
	return session, true
}

func (c *Client) boundSession() *app.RoomSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) bindSession(session *app.RoomSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

// sendError sends an error event to this caller only
func (c *Client) sendError(message string) {
	c.Send(NewServerMessage(string(MsgError), &domain.ErrorPayload{Message: message}))
}
