package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldenbell/internal/domain"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(stubSource{questions: stubQuestions(3)}, testSettings(), slog.Default())
	t.Cleanup(hub.Close)
	return hub
}

func TestCreateRoomCodesAreUnique(t *testing.T) {
	hub := newTestHub(t)

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		session, err := hub.CreateRoom("sid", "Host", "")
		require.NoError(t, err)

		code := session.RoomCode()
		assert.Len(t, code, RoomCodeLength)
		for _, c := range code {
			assert.Contains(t, RoomCodeChars, string(c))
		}

		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
	assert.Equal(t, 10000, hub.SessionCount())
}

func TestGetSessionIsCaseInsensitive(t *testing.T) {
	hub := newTestHub(t)
	session, err := hub.CreateRoom("sid", "Host", "")
	require.NoError(t, err)

	found, err := hub.GetSession(strings.ToLower(session.RoomCode()))
	require.NoError(t, err)
	assert.Same(t, session, found)

	_, err = hub.GetSession("NOPE99")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestDeleteRoomNotifiesMembers(t *testing.T) {
	hub := newTestHub(t)
	session, err := hub.CreateRoom("host", "Host", "")
	require.NoError(t, err)

	fc := &fakeClient{sid: "host"}
	session.RegisterClient("host", fc)

	require.NoError(t, hub.DeleteRoom(session.RoomCode()))

	// The closed notice is delivered synchronously, before teardown
	require.Equal(t, 1, fc.countOfType(domain.EventRoomClosed))
	assert.Equal(t, 0, hub.SessionCount())

	_, err = hub.GetSession(session.RoomCode())
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestDeleteRoomUnknownCode(t *testing.T) {
	hub := newTestHub(t)
	assert.ErrorIs(t, hub.DeleteRoom("NOPE99"), domain.ErrRoomNotFound)
}

func TestDeleteRoomCancelsScheduledRound(t *testing.T) {
	hub := newTestHub(t)
	session, err := hub.CreateRoom("host", "Host", "")
	require.NoError(t, err)

	fc := &fakeClient{sid: "host"}
	session.RegisterClient("host", fc)
	p2 := &fakeClient{sid: "p2"}
	session.RegisterClient("p2", p2)
	require.NoError(t, session.Join("p2", "Bob"))

	require.NoError(t, session.StartGame(context.Background(), "host"))
	session.SubmitAnswer("host", "A. right")
	session.SubmitAnswer("p2", "A. right")
	waitForEvent(t, fc, domain.EventRoundResult, 1)

	require.NoError(t, hub.DeleteRoom(session.RoomCode()))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, fc.countOfType(domain.EventNewQuestion))
	assert.Equal(t, domain.StateFinished, session.State())
}

func TestTotalPlayerCount(t *testing.T) {
	hub := newTestHub(t)

	s1, err := hub.CreateRoom("h1", "Alice", "")
	require.NoError(t, err)
	require.NoError(t, s1.Join("p2", "Bob"))

	_, err = hub.CreateRoom("h2", "Carol", "")
	require.NoError(t, err)

	assert.Equal(t, 3, hub.TotalPlayerCount())
}

func TestListRoomsSnapshots(t *testing.T) {
	hub := newTestHub(t)
	session, err := hub.CreateRoom("host", "Alice", "science")
	require.NoError(t, err)

	rooms := hub.ListRooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, session.RoomCode(), rooms[0].Code)
	assert.Equal(t, "Alice", rooms[0].Host)
	assert.Equal(t, 1, rooms[0].PlayerCount)
	assert.Equal(t, domain.StateWaiting, rooms[0].State)
	assert.Equal(t, "science", rooms[0].Category)
}
