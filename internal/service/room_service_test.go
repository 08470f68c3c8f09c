package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/notify"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/store"
)

func newTestEnv() (store.RoomStore, *notify.Notifier, *RoomService, *GameService) {
	st := store.NewMemoryStore()
	n := notify.NewNotifier()
	authSvc := NewAuthService("test-secret")
	roomSvc := NewRoomService(st, n, nil, authSvc)
	gameSvc := NewGameService(st, n, nil)
	return st, n, roomSvc, gameSvc
}

func sampleQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Prompt:        fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: 2,
		}
	}
	return qs
}

func TestCreateRoom_SeedsHost(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "Physics", "Optics", sampleQuestions(3), "u_asha", "")
	require.NoError(t, err)
	assert.Len(t, res.RoomID, 6)
	assert.Equal(t, "u_asha", res.HostID)
	assert.NotEmpty(t, res.HostToken)

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomWaiting, room.Status)
	assert.Equal(t, -1, room.CurrentQuestionIndex)
	assert.Equal(t, "Physics", room.Subject)
	require.Len(t, room.Players, 1)
	host := room.Players["u_asha"]
	require.NotNil(t, host)
	assert.Equal(t, 0, host.Score)
	assert.Equal(t, model.PlayerJoined, host.Status)
	assert.Empty(t, host.Answers)

	// 24h TTL from creation.
	wantExpiry := time.Now().Add(model.RoomTTL).UnixMilli()
	assert.InDelta(t, wantExpiry, room.ExpiresAt, float64(5*time.Second.Milliseconds()))
}

func TestCreateRoom_GuestHostGetsGeneratedID(t *testing.T) {
	_, _, roomSvc, _ := newTestEnv()

	res, err := roomSvc.CreateRoom(context.Background(), "Asha", "", "", nil, "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.HostID)
	assert.NotEqual(t, "Asha", res.HostID)
}

func TestCreateEmptyRoom_ThenConfigure(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateEmptyRoom(ctx, "Asha", "u_asha", "")
	require.NoError(t, err)

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Empty(t, room.Subject)
	assert.Empty(t, room.Questions)

	err = roomSvc.UpdateRoomConfig(ctx, res.RoomID, "History", "WW2", sampleQuestions(5))
	require.NoError(t, err)

	room, err = st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Equal(t, "History", room.Subject)
	assert.Equal(t, "WW2", room.Chapter)
	assert.Len(t, room.Questions, 5)
}

func TestUpdateRoomConfig_RejectedAfterStart(t *testing.T) {
	_, _, roomSvc, gameSvc := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "Math", "Algebra", sampleQuestions(2), "u_asha", "")
	require.NoError(t, err)
	require.NoError(t, gameSvc.StartGame(ctx, res.RoomID, "u_asha"))

	err = roomSvc.UpdateRoomConfig(ctx, res.RoomID, "Math", "Geometry", sampleQuestions(2))
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestJoinRoom_NotFound(t *testing.T) {
	_, _, roomSvc, _ := newTestEnv()

	_, err := roomSvc.JoinRoom(context.Background(), "000000", "Ravi", "u_ravi", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

// Caller-supplied ids land verbatim in mutation paths, so anything
// outside [A-Za-z0-9_-] is rejected before it can touch the roster.
func TestJoinRoom_RejectsPathUnsafeUserID(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)

	for _, userID := range []string{"u.ravi", "a b", "x$y", "players.u2.score"} {
		_, err := roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", userID, "")
		assert.ErrorIs(t, err, ErrInvalidPlayerID, "userId %q", userID)
	}

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Players, 1)
}

func TestCreateRoom_RejectsPathUnsafeUserID(t *testing.T) {
	_, _, roomSvc, _ := newTestEnv()

	_, err := roomSvc.CreateRoom(context.Background(), "Asha", "", "", nil, "u.asha", "")
	assert.ErrorIs(t, err, ErrInvalidPlayerID)
}

// Capacity: the 7th distinct player is rejected while waiting.
func TestJoinRoom_Capacity(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)

	// Host occupies one of the six seats.
	for i := 0; i < model.MaxPlayers-1; i++ {
		_, err := roomSvc.JoinRoom(ctx, res.RoomID, fmt.Sprintf("Player%d", i), fmt.Sprintf("u_%d", i), "")
		require.NoError(t, err)
	}

	_, err = roomSvc.JoinRoom(ctx, res.RoomID, "Late", "u_late", "")
	assert.ErrorIs(t, err, ErrRoomFull)

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Players, model.MaxPlayers)
}

// Idempotent join: same userId twice returns the same playerId and leaves
// the roster unchanged.
func TestJoinRoom_IdempotentByUserID(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)

	first, err := roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	require.NoError(t, err)
	second, err := roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	require.NoError(t, err)

	assert.Equal(t, first.PlayerID, second.PlayerID)

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Players, 2)
}

// Guest reconnection matches by name only when no userId is supplied.
func TestJoinRoom_GuestNameFallback(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)

	first, err := roomSvc.JoinRoom(ctx, res.RoomID, "Guest", "", "")
	require.NoError(t, err)
	second, err := roomSvc.JoinRoom(ctx, res.RoomID, "Guest", "", "")
	require.NoError(t, err)
	assert.Equal(t, first.PlayerID, second.PlayerID)

	// An authenticated user with the same display name is a new player.
	third, err := roomSvc.JoinRoom(ctx, res.RoomID, "Guest", "u_guest", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.PlayerID, third.PlayerID)

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Players, 3)
}

// Once started, only existing players may (re)join.
func TestJoinRoom_AfterStart(t *testing.T) {
	_, _, roomSvc, gameSvc := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", sampleQuestions(1), "u_asha", "")
	require.NoError(t, err)
	joined, err := roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	require.NoError(t, err)

	require.NoError(t, gameSvc.StartGame(ctx, res.RoomID, "u_asha"))

	// Reconnect-after-refresh recovers the same id.
	rejoined, err := roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	require.NoError(t, err)
	assert.Equal(t, joined.PlayerID, rejoined.PlayerID)

	_, err = roomSvc.JoinRoom(ctx, res.RoomID, "New", "u_new", "")
	assert.ErrorIs(t, err, ErrGameStarted)
}

// Lazy expiration: the first join attempt after expiry deletes the room.
func TestJoinRoom_Expired(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, st.Apply(ctx, res.RoomID, store.Set("expiresAt", past)))

	_, err = roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	assert.ErrorIs(t, err, ErrRoomExpired)

	_, err = st.Get(ctx, res.RoomID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLeaveRoom(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)
	joined, err := roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	require.NoError(t, err)

	require.NoError(t, roomSvc.LeaveRoom(ctx, res.RoomID, joined.PlayerID))

	room, err := st.Get(ctx, res.RoomID)
	require.NoError(t, err)
	assert.Len(t, room.Players, 1)
	assert.NotContains(t, room.Players, joined.PlayerID)
}

// Leaving a room that vanished concurrently is a no-op success.
func TestLeaveRoom_MissingRoomIsNoop(t *testing.T) {
	_, _, roomSvc, _ := newTestEnv()

	err := roomSvc.LeaveRoom(context.Background(), "999999", "u_ravi")
	assert.NoError(t, err)
}

func TestReap_DeletesExpiredRooms(t *testing.T) {
	st, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	expired, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)
	alive, err := roomSvc.CreateRoom(ctx, "Bela", "", "", nil, "u_bela", "")
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, st.Apply(ctx, expired.RoomID, store.Set("expiresAt", past)))

	n, err := roomSvc.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = st.Get(ctx, expired.RoomID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(ctx, alive.RoomID)
	assert.NoError(t, err)
}

func TestListenToRoom_DeliversInitialSnapshotAndMutations(t *testing.T) {
	_, _, roomSvc, _ := newTestEnv()
	ctx := context.Background()

	res, err := roomSvc.CreateRoom(ctx, "Asha", "", "", nil, "u_asha", "")
	require.NoError(t, err)

	sub, err := roomSvc.ListenToRoom(ctx, res.RoomID)
	require.NoError(t, err)
	defer sub.Close()

	initial := <-sub.C
	assert.Equal(t, res.RoomID, initial.RoomID)
	assert.Len(t, initial.Players, 1)

	_, err = roomSvc.JoinRoom(ctx, res.RoomID, "Ravi", "u_ravi", "")
	require.NoError(t, err)

	next := <-sub.C
	assert.Len(t, next.Players, 2)
}

func TestListenToRoom_NotFound(t *testing.T) {
	_, _, roomSvc, _ := newTestEnv()

	_, err := roomSvc.ListenToRoom(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
