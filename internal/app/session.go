package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"goldenbell/internal/domain"
)

// QuestionSource supplies the fixed question set for a game. An empty category
// means no filter. May return an empty slice.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, category string, count int) ([]domain.Question, error)
}

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetSID() string
	Close() error
}

// Settings holds the fixed game parameters
type Settings struct {
	QuestionCount    int
	TimeLimitSeconds int
	AdvanceDelay     time.Duration
	ScoreAward       int
}

// DefaultSettings returns the default game settings
func DefaultSettings() Settings {
	return Settings{
		QuestionCount:    15,
		TimeLimitSeconds: 15,
		AdvanceDelay:     5 * time.Second,
		ScoreAward:       10,
	}
}

// RoomSession wraps a room with concurrency control and client management.
// All room mutations run under mu, one at a time, in arrival order; outbound
// events are drained by a single goroutine so every member observes broadcasts
// in the order operations were applied.
type RoomSession struct {
	room     *domain.Room
	mu       sync.Mutex
	source   QuestionSource
	settings Settings
	logger   *slog.Logger

	clients   map[string]ClientConnection // sid -> client
	clientsMu sync.RWMutex

	// resolvedToken is the highest round token already resolved; together
	// with the token check it makes resolution idempotent when the
	// all-answered and timeout triggers race.
	resolvedToken uint64
	advanceTimer  *time.Timer

	events    chan *domain.Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewRoomSession creates a session for the given room and starts its
// broadcast loop.
func NewRoomSession(room *domain.Room, source QuestionSource, settings Settings, logger *slog.Logger) *RoomSession {
	s := &RoomSession{
		room:     room,
		source:   source,
		settings: settings,
		logger:   logger.With("roomCode", room.Code),
		clients:  make(map[string]ClientConnection),
		events:   make(chan *domain.Event, 100),
		done:     make(chan struct{}),
	}

	go s.eventLoop()

	return s
}

// RoomCode returns the room code
func (s *RoomSession) RoomCode() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *RoomSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// State returns the current room state
func (s *RoomSession) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.State
}

// PlayerCount returns the number of players on the roster
func (s *RoomSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

// Snapshot returns a point-in-time admin view of the room
func (s *RoomSession) Snapshot() RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	hostName := ""
	if host, ok := s.room.Player(s.room.HostSID); ok {
		hostName = host.Name
	}
	return RoomStatus{
		Code:        s.room.Code,
		Host:        hostName,
		PlayerCount: len(s.room.Players),
		State:       s.room.State,
		Category:    s.room.Category,
	}
}

// RegisterClient registers a client connection for a player
func (s *RoomSession) RegisterClient(sid string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[sid] = client
}

// UnregisterClient removes a client connection
func (s *RoomSession) UnregisterClient(sid string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, sid)
}

// ClientCount returns the number of live connections
func (s *RoomSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// AnnounceCreated broadcasts the room_created event to the creator's room.
// Called once the creator's connection is registered.
func (s *RoomSession) AnnounceCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queueEvent(domain.NewEvent(domain.EventRoomCreated, s.room.Code, &domain.RoomCreatedPayload{
		RoomCode: s.room.Code,
		Players:  s.room.PlayerList(),
	}))
}

// Join adds a player to the roster and broadcasts the updated roster.
// Joining is rejected once the game has started.
func (s *RoomSession) Join(sid, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.room.AddPlayer(sid, name); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.room.Code, &domain.PlayerJoinedPayload{
		Players: s.room.PlayerList(),
	}))

	return nil
}

// Leave handles a disconnecting player. While waiting the seat is freed and
// the roster rebroadcast; once the game is running the roster is fixed, so
// the seat just stops answering and falls to elimination at the next resolve.
func (s *RoomSession) Leave(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.State != domain.StateWaiting {
		return
	}
	if err := s.room.RemovePlayer(sid); err != nil {
		return
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerJoined, s.room.Code, &domain.PlayerJoinedPayload{
		Players: s.room.PlayerList(),
	}))
}

// StartGame fetches the question set and opens round 0. Host only, and only
// while the room is waiting. An empty question set is broadcast to the room
// as an error and the room stays in the waiting state.
func (s *RoomSession) StartGame(ctx context.Context, sid string) error {
	s.mu.Lock()
	if !s.room.IsHost(sid) {
		s.mu.Unlock()
		return domain.ErrUnauthorized
	}
	if s.room.State != domain.StateWaiting {
		s.mu.Unlock()
		return domain.ErrGameAlreadyStarted
	}
	category := s.room.Category
	s.mu.Unlock()

	// Fetch outside the room lock; the room stays responsive and a
	// concurrent start loses in BeginGame below.
	questions, err := s.source.FetchQuestions(ctx, category, s.settings.QuestionCount)
	if err != nil {
		s.logger.Error("fetching questions failed", "error", err)
		questions = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(questions) == 0 {
		s.queueEvent(domain.NewEvent(domain.EventError, s.room.Code, &domain.ErrorPayload{
			Message: domain.ErrNoQuestionsAvailable.Error(),
		}))
		return nil
	}

	if err := s.room.BeginGame(questions); err != nil {
		return err
	}

	s.logger.Info("game started", "questions", len(questions), "players", len(s.room.Players))
	s.openRoundLocked()

	return nil
}

// SubmitAnswer records a player's answer for the open round. Unknown,
// eliminated, and duplicate submitters are silently ignored. When the last
// active player answers, the round resolves.
func (s *RoomSession) SubmitAnswer(sid, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.State != domain.StatePlaying {
		return
	}
	if !s.room.RecordAnswer(sid, answer) {
		return
	}

	s.queueEvent(domain.NewEvent(domain.EventPlayerAnswered, s.room.Code, &domain.PlayerAnsweredPayload{
		SID: sid,
	}))

	if s.room.AllAnswered() {
		s.resolveLocked(s.room.RoundToken)
	}
}

// ForceTimeout resolves the open round unconditionally, treating unanswered
// players as wrong. Host only. Losing the race against the all-answered
// trigger is a silent no-op.
func (s *RoomSession) ForceTimeout(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsHost(sid) {
		return domain.ErrUnauthorized
	}
	if s.room.State != domain.StatePlaying {
		return nil
	}

	s.resolveLocked(s.room.RoundToken)
	return nil
}

// NextQuestion is the host's manual advance. An unresolved round is resolved
// first (the single round-completion path); an already-resolved round skips
// the remaining advance delay.
func (s *RoomSession) NextQuestion(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsHost(sid) {
		return domain.ErrUnauthorized
	}
	if s.room.State != domain.StatePlaying {
		return nil
	}

	token := s.room.RoundToken
	if s.resolvedToken < token {
		s.resolveLocked(token)
		return nil
	}

	s.stopAdvanceTimerLocked()
	s.room.RoundIndex++
	s.openRoundLocked()
	return nil
}

// openRoundLocked opens the round at the current cursor, or finalizes the
// game by score ranking when the cursor has passed the end of the set.
func (s *RoomSession) openRoundLocked() {
	question, ok := s.room.CurrentQuestion()
	if !ok {
		s.finishLocked(domain.ReasonFinished)
		return
	}

	s.room.OpenRound()

	s.queueEvent(domain.NewEvent(domain.EventNewQuestion, s.room.Code, &domain.NewQuestionPayload{
		Question:      question.Prompt,
		Options:       question.Options,
		Type:          question.Type,
		Index:         s.room.RoundIndex + 1,
		Total:         len(s.room.Questions),
		TimeLimit:     s.settings.TimeLimitSeconds,
		ActivePlayers: s.room.ActiveCount(),
	}))
}

// resolveLocked applies eliminations and scoring for the round identified by
// token. It runs at most once per token: the all-answered trigger, the host
// timeout, and the manual advance all funnel through here and the losers of
// any race are no-ops.
func (s *RoomSession) resolveLocked(token uint64) {
	if s.room.State != domain.StatePlaying {
		return
	}
	if token != s.room.RoundToken || token <= s.resolvedToken {
		return
	}
	s.resolvedToken = token

	outcome := s.room.ResolveAnswers(s.settings.ScoreAward)

	s.queueEvent(domain.NewEvent(domain.EventRoundResult, s.room.Code, &domain.RoundResultPayload{
		CorrectAnswer:  outcome.CorrectAnswer,
		Eliminated:     outcome.Eliminated,
		RemainingCount: outcome.Remaining,
		Leaderboard:    s.room.Leaderboard(),
	}))

	if reason, over := s.room.Termination(outcome.Remaining); over {
		s.finishLocked(reason)
		return
	}

	// Let players read the result, then advance. The timer re-checks room
	// state and token on fire, so a manual advance or a force-close while
	// the delay is pending supersedes it.
	s.stopAdvanceTimerLocked()
	s.advanceTimer = time.AfterFunc(s.settings.AdvanceDelay, func() {
		s.advanceAfterDelay(token)
	})
}

// advanceAfterDelay applies the deferred round advance scheduled by
// resolveLocked, unless the room moved on while the delay was pending.
func (s *RoomSession) advanceAfterDelay(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.State != domain.StatePlaying || s.room.RoundToken != token {
		return
	}

	s.room.RoundIndex++
	s.openRoundLocked()
}

// finishLocked moves the room to its terminal state and broadcasts game_over
func (s *RoomSession) finishLocked(reason domain.GameOverReason) {
	s.stopAdvanceTimerLocked()

	if err := s.room.SetState(domain.StateFinished); err != nil {
		return
	}

	payload := &domain.GameOverPayload{Reason: reason}
	switch reason {
	case domain.ReasonFinished:
		payload.Leaderboard = s.room.Leaderboard()
	case domain.ReasonLastMan:
		if winner, ok := s.room.Winner(); ok {
			info := winner.ToInfo()
			payload.Winner = &info
		}
	}

	s.logger.Info("game over", "reason", reason)
	s.queueEvent(domain.NewEvent(domain.EventGameOver, s.room.Code, payload))
}

func (s *RoomSession) stopAdvanceTimerLocked() {
	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
		s.advanceTimer = nil
	}
}

// queueEvent adds an event to the broadcast queue
func (s *RoomSession) queueEvent(event *domain.Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop drains the event queue in order and fans out to clients
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent delivers an event to the room, or to its target only
func (s *RoomSession) broadcastEvent(event *domain.Event) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if event.TargetSID != "" {
		if client, ok := s.clients[event.TargetSID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "sid", event.TargetSID, "error", err)
			}
		}
		return
	}

	for sid, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "sid", sid, "error", err)
		}
	}
}

// NotifyClosed synchronously tells every member the room is gone. Used by the
// registry on force-close, before Close, so the notice beats the teardown.
func (s *RoomSession) NotifyClosed(message string) {
	event := domain.NewEvent(domain.EventRoomClosed, s.room.Code, &domain.RoomClosedPayload{
		Message: message,
	})
	s.broadcastEvent(event)
}

// Close shuts down the session. Any pending deferred advance is cancelled and
// will never resurrect the room.
func (s *RoomSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		s.stopAdvanceTimerLocked()
		if s.room.State != domain.StateFinished {
			s.room.SetState(domain.StateFinished)
		}
		s.mu.Unlock()

		s.clientsMu.Lock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clients = make(map[string]ClientConnection)
		s.clientsMu.Unlock()
	})
}
