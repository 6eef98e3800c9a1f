package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldenbell/internal/domain"
)

func testQuestions(n int) []domain.Question {
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

func TestStateTransitionsAreOneDirectional(t *testing.T) {
	assert.True(t, domain.StateWaiting.CanTransitionTo(domain.StatePlaying))
	assert.True(t, domain.StateWaiting.CanTransitionTo(domain.StateFinished))
	assert.True(t, domain.StatePlaying.CanTransitionTo(domain.StateFinished))

	assert.False(t, domain.StatePlaying.CanTransitionTo(domain.StateWaiting))
	assert.False(t, domain.StateFinished.CanTransitionTo(domain.StatePlaying))
	assert.False(t, domain.StateFinished.CanTransitionTo(domain.StateWaiting))
	assert.False(t, domain.StateWaiting.CanTransitionTo(domain.StateWaiting))
}

func TestNewRoomCreatorIsHostAndSolePlayer(t *testing.T) {
	room := domain.NewRoom("ABC123", "sid-host", "Alice", "science")

	assert.Equal(t, domain.StateWaiting, room.State)
	assert.Equal(t, "sid-host", room.HostSID)
	assert.True(t, room.IsHost("sid-host"))

	list := room.PlayerList()
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)
	assert.True(t, list[0].IsHost)
}

func TestAddPlayerRejectedAfterStart(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	require.NoError(t, room.BeginGame(testQuestions(3)))

	_, err := room.AddPlayer("p2", "Late")
	assert.ErrorIs(t, err, domain.ErrGameAlreadyStarted)
	assert.Len(t, room.PlayerList(), 1)
}

func TestRemovePlayerReassignsHost(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	_, err := room.AddPlayer("p2", "Bob")
	require.NoError(t, err)

	require.NoError(t, room.RemovePlayer("h"))
	assert.Equal(t, "p2", room.HostSID)
	assert.True(t, room.Players["p2"].IsHost)
}

func TestBeginGameRequiresQuestions(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	assert.ErrorIs(t, room.BeginGame(nil), domain.ErrNoQuestionsAvailable)
	assert.Equal(t, domain.StateWaiting, room.State)

	require.NoError(t, room.BeginGame(testQuestions(2)))
	assert.Equal(t, domain.StatePlaying, room.State)
	assert.ErrorIs(t, room.BeginGame(testQuestions(2)), domain.ErrGameAlreadyStarted)
}

func TestOpenRoundResetsActivePlayersOnly(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	room.AddPlayer("p2", "Bob")
	require.NoError(t, room.BeginGame(testQuestions(3)))

	token := room.OpenRound()
	assert.Equal(t, uint64(1), token)

	require.True(t, room.RecordAnswer("h", "A. right"))
	room.Players["p2"].Eliminated = true
	room.Players["p2"].Answered = true

	token = room.OpenRound()
	assert.Equal(t, uint64(2), token)
	assert.False(t, room.Players["h"].Answered)
	// Eliminated players keep their frozen state
	assert.True(t, room.Players["p2"].Answered)
	assert.True(t, room.Players["p2"].Eliminated)
}

func TestRecordAnswerIdempotencyBoundary(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	room.AddPlayer("p2", "Bob")
	require.NoError(t, room.BeginGame(testQuestions(1)))
	room.OpenRound()

	assert.False(t, room.RecordAnswer("ghost", "x"), "unknown player ignored")

	require.True(t, room.RecordAnswer("h", "first"))
	assert.False(t, room.RecordAnswer("h", "second"), "duplicate ignored")
	assert.Equal(t, "first", room.Players["h"].Answer)

	room.Players["p2"].Eliminated = true
	assert.False(t, room.RecordAnswer("p2", "x"), "eliminated player ignored")
}

func TestResolveAnswersScoresAndEliminates(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	room.AddPlayer("p2", "Bob")
	room.AddPlayer("p3", "Carol")
	require.NoError(t, room.BeginGame(testQuestions(3)))
	room.OpenRound()

	room.RecordAnswer("h", "A. right")
	room.RecordAnswer("p2", "B. wrong")
	// p3 never answers

	outcome := room.ResolveAnswers(10)

	assert.Equal(t, "A. right", outcome.CorrectAnswer)
	assert.Equal(t, []string{"Bob", "Carol"}, outcome.Eliminated)
	assert.Equal(t, 1, outcome.Remaining)
	assert.Equal(t, 10, room.Players["h"].Score)
	assert.Equal(t, 0, room.Players["p2"].Score)
	assert.True(t, room.Players["p2"].Eliminated)
	assert.True(t, room.Players["p3"].Eliminated)
}

func TestEliminatedPlayerScoreNeverChanges(t *testing.T) {
	room := domain.NewRoom("ABC123", "h", "Host", "")
	room.AddPlayer("p2", "Bob")
	require.NoError(t, room.BeginGame(testQuestions(5)))

	room.OpenRound()
	room.RecordAnswer("h", "A. right")
	room.RecordAnswer("p2", "B. wrong")
	room.ResolveAnswers(10)
	require.True(t, room.Players["p2"].Eliminated)

	room.RoundIndex++
	room.OpenRound()
	assert.False(t, room.RecordAnswer("p2", "A. right"))
	room.RecordAnswer("h", "A. right")
	room.ResolveAnswers(10)

	assert.Equal(t, 0, room.Players["p2"].Score)
	assert.True(t, room.Players["p2"].Eliminated)
}

func TestTerminationOrder(t *testing.T) {
	t.Run("last man needs more than one player", func(t *testing.T) {
		room := domain.NewRoom("R", "h", "Host", "")
		room.AddPlayer("p2", "Bob")
		require.NoError(t, room.BeginGame(testQuestions(3)))

		reason, over := room.Termination(1)
		assert.True(t, over)
		assert.Equal(t, domain.ReasonLastMan, reason)
	})

	t.Run("solo host falls through to draw", func(t *testing.T) {
		room := domain.NewRoom("R", "h", "Host", "")
		require.NoError(t, room.BeginGame(testQuestions(3)))

		reason, over := room.Termination(0)
		assert.True(t, over)
		assert.Equal(t, domain.ReasonDraw, reason)
	})

	t.Run("solo host surviving mid-game continues", func(t *testing.T) {
		room := domain.NewRoom("R", "h", "Host", "")
		require.NoError(t, room.BeginGame(testQuestions(3)))

		_, over := room.Termination(1)
		assert.False(t, over)
	})

	t.Run("question set exhausted", func(t *testing.T) {
		room := domain.NewRoom("R", "h", "Host", "")
		room.AddPlayer("p2", "Bob")
		require.NoError(t, room.BeginGame(testQuestions(1)))

		reason, over := room.Termination(2)
		assert.True(t, over)
		assert.Equal(t, domain.ReasonFinished, reason)
	})
}

func TestLeaderboardOrdersByScoreWithStableTies(t *testing.T) {
	room := domain.NewRoom("R", "h", "Host", "")
	room.AddPlayer("p2", "Bob")
	room.AddPlayer("p3", "Carol")
	room.Players["p2"].Score = 30
	room.Players["p3"].Score = 30

	board := room.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, "Bob", board[0].Name)
	assert.Equal(t, "Carol", board[1].Name, "ties keep join order")
	assert.Equal(t, "Host", board[2].Name)
}

func TestWinner(t *testing.T) {
	room := domain.NewRoom("R", "h", "Host", "")
	room.AddPlayer("p2", "Bob")
	room.Players["h"].Eliminated = true

	winner, ok := room.Winner()
	require.True(t, ok)
	assert.Equal(t, "Bob", winner.Name)

	room.Players["h"].Eliminated = false
	_, ok = room.Winner()
	assert.False(t, ok, "no single winner while two players are active")
}
