package app

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldenbell/internal/domain"
)

// fakeClient records every event the session fans out to it
type fakeClient struct {
	sid    string
	mu     sync.Mutex
	events []*domain.Event
}

func (f *fakeClient) Send(message interface{}) error {
	if event, ok := message.(*domain.Event); ok {
		f.mu.Lock()
		f.events = append(f.events, event)
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeClient) GetSID() string { return f.sid }
func (f *fakeClient) Close() error   { return nil }

func (f *fakeClient) eventsOfType(t domain.EventType) []*domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Event
	for _, ev := range f.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeClient) countOfType(t domain.EventType) int {
	return len(f.eventsOfType(t))
}

// stubSource returns a fixed question set regardless of category
type stubSource struct {
	questions []domain.Question
}

func (s stubSource) FetchQuestions(_ context.Context, _ string, count int) ([]domain.Question, error) {
	if count > 0 && len(s.questions) > count {
		return s.questions[:count], nil
	}
	return s.questions, nil
}

func stubQuestions(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:     int64(i + 1),
			Prompt: "question",
			Answer: "A. right",
			Type:   domain.QuestionMultipleChoice,
		}
	}
	return questions
}

func testSettings() Settings {
	return Settings{
		QuestionCount:    15,
		TimeLimitSeconds: 15,
		AdvanceDelay:     20 * time.Millisecond,
		ScoreAward:       10,
	}
}

// newTestSession builds a session with the host plus extra players, each
// backed by a registered fake client.
func newTestSession(t *testing.T, questions int, settings Settings, extras ...string) (*RoomSession, map[string]*fakeClient) {
	t.Helper()

	room := domain.NewRoom("TEST01", "host", "Host", "")
	session := NewRoomSession(room, stubSource{questions: stubQuestions(questions)}, settings, slog.Default())
	t.Cleanup(session.Close)

	clients := map[string]*fakeClient{
		"host": {sid: "host"},
	}
	session.RegisterClient("host", clients["host"])

	for _, sid := range extras {
		fc := &fakeClient{sid: sid}
		clients[sid] = fc
		session.RegisterClient(sid, fc)
		require.NoError(t, session.Join(sid, "Player "+sid))
	}
	return session, clients
}

func waitForEvent(t *testing.T, fc *fakeClient, eventType domain.EventType, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return fc.countOfType(eventType) >= n
	}, time.Second, 2*time.Millisecond, "expected %d %s events", n, eventType)
}

func TestStartGameHostOnly(t *testing.T) {
	session, _ := newTestSession(t, 3, testSettings(), "p2")

	err := session.StartGame(context.Background(), "p2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, domain.StateWaiting, session.State())

	require.NoError(t, session.StartGame(context.Background(), "host"))
	assert.Equal(t, domain.StatePlaying, session.State())
}

func TestStartGameWithoutQuestionsKeepsRoomWaiting(t *testing.T) {
	room := domain.NewRoom("TEST01", "host", "Host", "history")
	session := NewRoomSession(room, stubSource{}, testSettings(), slog.Default())
	t.Cleanup(session.Close)

	fc := &fakeClient{sid: "host"}
	session.RegisterClient("host", fc)

	require.NoError(t, session.StartGame(context.Background(), "host"))

	waitForEvent(t, fc, domain.EventError, 1)
	assert.Equal(t, domain.StateWaiting, session.State())
}

func TestStartGameTwiceRejected(t *testing.T) {
	session, _ := newTestSession(t, 3, testSettings(), "p2")

	require.NoError(t, session.StartGame(context.Background(), "host"))
	assert.ErrorIs(t, session.StartGame(context.Background(), "host"), domain.ErrGameAlreadyStarted)
}

func TestJoinAfterStartRejected(t *testing.T) {
	session, _ := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	err := session.Join("late", "Late Joiner")
	assert.ErrorIs(t, err, domain.ErrGameAlreadyStarted)
	assert.Equal(t, 2, session.PlayerCount())
}

func TestNewQuestionBroadcastOnStart(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	waitForEvent(t, clients["p2"], domain.EventNewQuestion, 1)
	payload := clients["p2"].eventsOfType(domain.EventNewQuestion)[0].Payload.(*domain.NewQuestionPayload)
	assert.Equal(t, 1, payload.Index)
	assert.Equal(t, 3, payload.Total)
	assert.Equal(t, 15, payload.TimeLimit)
	assert.Equal(t, 2, payload.ActivePlayers)
}

func TestThreePlayerLastManStanding(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2", "p3")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "B. wrong")
	session.SubmitAnswer("p3", "C. wrong")

	waitForEvent(t, clients["host"], domain.EventGameOver, 1)

	results := clients["host"].eventsOfType(domain.EventRoundResult)
	require.Len(t, results, 1)
	result := results[0].Payload.(*domain.RoundResultPayload)
	assert.Len(t, result.Eliminated, 2)
	assert.Equal(t, 1, result.RemainingCount)

	over := clients["host"].eventsOfType(domain.EventGameOver)[0].Payload.(*domain.GameOverPayload)
	assert.Equal(t, domain.ReasonLastMan, over.Reason)
	require.NotNil(t, over.Winner)
	assert.Equal(t, "Host", over.Winner.Name)
	assert.Equal(t, 10, over.Winner.Score)

	assert.Equal(t, domain.StateFinished, session.State())
}

func TestSoloHostWrongAnswerIsDraw(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings())
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "B. wrong")

	waitForEvent(t, clients["host"], domain.EventGameOver, 1)
	over := clients["host"].eventsOfType(domain.EventGameOver)[0].Payload.(*domain.GameOverPayload)
	assert.Equal(t, domain.ReasonDraw, over.Reason)
	assert.Nil(t, over.Winner, "a solo host is never declared last man")
}

func TestDuplicateSubmitIgnored(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("p2", "A. right")
	session.SubmitAnswer("p2", "B. wrong")

	waitForEvent(t, clients["host"], domain.EventPlayerAnswered, 1)
	// Give a stray second notice time to show up before counting
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, clients["host"].countOfType(domain.EventPlayerAnswered))

	session.mu.Lock()
	assert.Equal(t, "A. right", session.room.Players["p2"].Answer)
	session.mu.Unlock()
}

func TestAnswerNoticeWithholdsCorrectness(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("p2", "B. wrong")

	waitForEvent(t, clients["host"], domain.EventPlayerAnswered, 1)
	payload := clients["host"].eventsOfType(domain.EventPlayerAnswered)[0].Payload.(*domain.PlayerAnsweredPayload)
	assert.Equal(t, "p2", payload.SID)
}

func TestForceTimeoutEliminatesUnanswered(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")

	assert.ErrorIs(t, session.ForceTimeout("p2"), domain.ErrUnauthorized)
	require.NoError(t, session.ForceTimeout("host"))

	waitForEvent(t, clients["host"], domain.EventGameOver, 1)
	over := clients["host"].eventsOfType(domain.EventGameOver)[0].Payload.(*domain.GameOverPayload)
	assert.Equal(t, domain.ReasonLastMan, over.Reason)
}

func TestResolveRunsAtMostOncePerRound(t *testing.T) {
	settings := testSettings()
	settings.AdvanceDelay = time.Hour // park between rounds
	session, clients := newTestSession(t, 3, settings, "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	// Both triggers race for the same round: the all-answered path fires on
	// the last submit, then the host timeout lands on an already-resolved
	// round and must be a no-op.
	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")
	require.NoError(t, session.ForceTimeout("host"))
	require.NoError(t, session.ForceTimeout("host"))

	waitForEvent(t, clients["host"], domain.EventRoundResult, 1)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, clients["host"].countOfType(domain.EventRoundResult))

	session.mu.Lock()
	assert.Equal(t, 10, session.room.Players["host"].Score, "no double scoring")
	assert.Equal(t, 10, session.room.Players["p2"].Score)
	session.mu.Unlock()
}

func TestConcurrentTriggersResolveOnce(t *testing.T) {
	settings := testSettings()
	settings.AdvanceDelay = time.Hour
	session, clients := newTestSession(t, 3, settings, "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		session.SubmitAnswer("p2", "A. right")
	}()
	go func() {
		defer wg.Done()
		session.ForceTimeout("host")
	}()
	wg.Wait()

	waitForEvent(t, clients["host"], domain.EventRoundResult, 1)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, clients["host"].countOfType(domain.EventRoundResult))

	session.mu.Lock()
	hostScore := session.room.Players["host"].Score
	session.mu.Unlock()
	assert.Equal(t, 10, hostScore)
}

func TestAutoAdvanceAfterDelay(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")

	waitForEvent(t, clients["host"], domain.EventNewQuestion, 2)
	payload := clients["host"].eventsOfType(domain.EventNewQuestion)[1].Payload.(*domain.NewQuestionPayload)
	assert.Equal(t, 2, payload.Index)
}

func TestNextQuestionSkipsAdvanceDelay(t *testing.T) {
	settings := testSettings()
	settings.AdvanceDelay = time.Hour
	session, clients := newTestSession(t, 3, settings, "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")
	waitForEvent(t, clients["host"], domain.EventRoundResult, 1)

	assert.ErrorIs(t, session.NextQuestion("p2"), domain.ErrUnauthorized)
	require.NoError(t, session.NextQuestion("host"))

	waitForEvent(t, clients["host"], domain.EventNewQuestion, 2)
	payload := clients["host"].eventsOfType(domain.EventNewQuestion)[1].Payload.(*domain.NewQuestionPayload)
	assert.Equal(t, 2, payload.Index)
}

func TestNextQuestionOnOpenRoundResolvesIt(t *testing.T) {
	settings := testSettings()
	settings.AdvanceDelay = time.Hour
	session, clients := newTestSession(t, 3, settings, "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	// Nobody answered; the manual advance funnels through the resolution
	// path, so both players are eliminated and the game ends in a draw.
	require.NoError(t, session.NextQuestion("host"))

	waitForEvent(t, clients["host"], domain.EventGameOver, 1)
	over := clients["host"].eventsOfType(domain.EventGameOver)[0].Payload.(*domain.GameOverPayload)
	assert.Equal(t, domain.ReasonDraw, over.Reason)
}

func TestGameFinishesWhenQuestionsRunOut(t *testing.T) {
	session, clients := newTestSession(t, 1, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")

	waitForEvent(t, clients["host"], domain.EventGameOver, 1)
	over := clients["host"].eventsOfType(domain.EventGameOver)[0].Payload.(*domain.GameOverPayload)
	assert.Equal(t, domain.ReasonFinished, over.Reason)
	require.Len(t, over.Leaderboard, 2)
	assert.Equal(t, 10, over.Leaderboard[0].Score)
}

func TestFinishedRoomIgnoresFurtherEvents(t *testing.T) {
	session, clients := newTestSession(t, 1, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "B. wrong")
	waitForEvent(t, clients["host"], domain.EventGameOver, 1)

	session.SubmitAnswer("host", "A. right")
	require.NoError(t, session.ForceTimeout("host"))
	require.NoError(t, session.NextQuestion("host"))

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, clients["host"].countOfType(domain.EventRoundResult))
	assert.Equal(t, 1, clients["host"].countOfType(domain.EventGameOver))
	assert.Equal(t, domain.StateFinished, session.State())

	session.mu.Lock()
	assert.Equal(t, 10, session.room.Players["host"].Score)
	session.mu.Unlock()
}

func TestEliminatedPlayerStaysFrozenAcrossRounds(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2", "p3")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")
	session.SubmitAnswer("p3", "B. wrong")

	// Round 2 opens after the advance delay
	waitForEvent(t, clients["host"], domain.EventNewQuestion, 2)

	before := clients["host"].countOfType(domain.EventPlayerAnswered)
	session.SubmitAnswer("p3", "A. right")
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, before, clients["host"].countOfType(domain.EventPlayerAnswered))

	session.mu.Lock()
	assert.Equal(t, 0, session.room.Players["p3"].Score)
	assert.True(t, session.room.Players["p3"].Eliminated)
	session.mu.Unlock()
}

func TestJoinBroadcastsRoster(t *testing.T) {
	_, clients := newTestSession(t, 3, testSettings(), "p2")

	waitForEvent(t, clients["host"], domain.EventPlayerJoined, 1)
	payload := clients["host"].eventsOfType(domain.EventPlayerJoined)[0].Payload.(*domain.PlayerJoinedPayload)
	require.Len(t, payload.Players, 2)
	assert.Equal(t, "Host", payload.Players[0].Name)
	assert.Equal(t, "Player p2", payload.Players[1].Name)
}

func TestLeaveWhileWaitingFreesSeat(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")

	session.Leave("p2")
	assert.Equal(t, 1, session.PlayerCount())
	waitForEvent(t, clients["host"], domain.EventPlayerJoined, 2)
}

func TestLeaveDuringGameKeepsRoster(t *testing.T) {
	session, _ := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.Leave("p2")
	assert.Equal(t, 2, session.PlayerCount(), "roster is fixed once playing")
}

func TestCloseCancelsPendingAdvance(t *testing.T) {
	session, clients := newTestSession(t, 3, testSettings(), "p2")
	require.NoError(t, session.StartGame(context.Background(), "host"))

	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")
	waitForEvent(t, clients["host"], domain.EventRoundResult, 1)

	session.Close()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, clients["host"].countOfType(domain.EventNewQuestion),
		"no round may open after the room is closed")
}
