package room

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/config"
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/protocol"
	"github.com/palemoky/wudi/internal/server/session"
	"github.com/palemoky/wudi/internal/server/storage"
	"github.com/palemoky/wudi/internal/testutil"
)

type fixture struct {
	rooms    *RoomManager
	sessions *session.Manager
	store    *storage.Store
}

func newFixture(t *testing.T, rule string) *fixture {
	t.Helper()
	store := storage.NewStore(storage.NewMemoryBackend(), nil)
	for i := range 5 {
		id := fmt.Sprintf("u%d", i)
		require.NoError(t, store.Users.Insert(context.Background(), storage.User{ID: id, Username: id}))
	}
	sessions := session.NewManager(store)
	game := config.Default().Game
	game.OpeningRule = rule
	return &fixture{
		rooms:    NewRoomManager(store, sessions, game, nil),
		sessions: sessions,
		store:    store,
	}
}

// fill 创建房间并让 u1..u3 加入，返回房间
func (f *fixture) fill(t *testing.T) storage.Room {
	t.Helper()
	ctx := context.Background()
	room, err := f.rooms.CreateRoom(ctx, "u0", "test", "")
	require.NoError(t, err)
	for i := 1; i < card.Seats; i++ {
		_, err := f.rooms.JoinRoom(ctx, room.ID, fmt.Sprintf("u%d", i), "")
		require.NoError(t, err)
	}
	return room
}

func (f *fixture) readyAll(t *testing.T, roomID string) {
	t.Helper()
	for i := range card.Seats {
		require.NoError(t, f.rooms.SetReady(context.Background(), roomID, fmt.Sprintf("u%d", i), true))
	}
}

func TestCreateRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.OpeningAlways)
	ctx := context.Background()

	room, err := f.rooms.CreateRoom(ctx, "u0", "大厅", "secret")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), room.JoinCode)
	assert.Equal(t, "u0", room.OwnerID)
	assert.Equal(t, storage.RoomWaiting, room.Status)
	assert.Equal(t, 1, room.CurrentPlayers)

	players, err := f.rooms.Players(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, 0, players[0].SeatPosition)
	assert.False(t, players[0].IsReady)

	_, err = f.rooms.CreateRoom(ctx, "u0", "again", "")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	_, err = f.rooms.CreateRoom(ctx, "ghost", "x", "")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestJoinRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.OpeningAlways)
	ctx := context.Background()

	room, err := f.rooms.CreateRoom(ctx, "u0", "locked", "pw")
	require.NoError(t, err)

	_, err = f.rooms.JoinRoom(ctx, room.ID, "u1", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)

	p, err := f.rooms.JoinRoom(ctx, room.ID, "u1", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, p.SeatPosition)

	_, err = f.rooms.JoinRoom(ctx, room.ID, "u1", "pw")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInRoom)

	p, err = f.rooms.JoinByCode(ctx, room.JoinCode, "u2", "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, p.SeatPosition)

	_, err = f.rooms.JoinByCode(ctx, "000000x", "u3", "pw")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
	_, err = f.rooms.JoinRoom(ctx, "missing", "u3", "")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	_, err = f.rooms.JoinRoom(ctx, room.ID, "u3", "pw")
	require.NoError(t, err)
	_, err = f.rooms.JoinRoom(ctx, room.ID, "u4", "pw")
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	stored, err := f.store.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.CurrentPlayers)

	listed, err := f.rooms.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestLeaveRoom(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.OpeningAlways)
	ctx := context.Background()
	room := f.fill(t)

	// 房主离开，1 号座位接任
	require.NoError(t, f.rooms.LeaveRoom(ctx, room.ID, "u0"))
	stored, err := f.store.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.OwnerID)
	assert.Equal(t, 3, stored.CurrentPlayers)

	assert.ErrorIs(t, f.rooms.LeaveRoom(ctx, room.ID, "u0"), apperrors.ErrNotInRoom)

	// 空出的 0 号座位给下一个加入的人
	p, err := f.rooms.JoinRoom(ctx, room.ID, "u4", "")
	require.NoError(t, err)
	assert.Equal(t, 0, p.SeatPosition)

	listed, err := f.rooms.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		require.NoError(t, f.rooms.LeaveRoom(ctx, room.ID, id))
	}
	_, err = f.store.Rooms.Get(ctx, room.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, f.rooms.LeaveRoom(ctx, room.ID, "u1"), apperrors.ErrRoomNotFound)
}

func TestSetReady(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.OpeningAlways)
	ctx := context.Background()
	room := f.fill(t)

	require.NoError(t, f.rooms.SetReady(ctx, room.ID, "u2", true))
	players, err := f.rooms.Players(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, players[2].IsReady)
	assert.False(t, players[1].IsReady)

	assert.ErrorIs(t, f.rooms.SetReady(ctx, room.ID, "u4", true), apperrors.ErrNotInRoom)
	assert.ErrorIs(t, f.rooms.SetReady(ctx, "missing", "u2", true), apperrors.ErrRoomNotFound)
}

func TestStartMatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.OpeningFirstMatch)
	ctx := context.Background()
	bots := [card.Seats]bool{true, true, true, true}
	room := f.fill(t)

	_, err := f.rooms.StartMatch(ctx, room.ID, bots)
	assert.ErrorIs(t, err, apperrors.ErrNotAllReady)

	f.readyAll(t, room.ID)
	res, err := f.rooms.StartMatch(ctx, room.ID, bots)
	require.NoError(t, err)

	stored, err := f.store.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.RoomPlaying, stored.Status)
	assert.Equal(t, 1, stored.MatchCount)
	assert.Equal(t, res.MatchID, stored.CurrentMatchID)

	record, err := f.store.Matches.Get(ctx, res.MatchID)
	require.NoError(t, err)
	assert.True(t, record.GameState.RequireSpade3)
	assert.Equal(t, 0, record.MatchIndex)

	// 对局中不能加入、离开、准备或再次开局
	_, err = f.rooms.JoinRoom(ctx, room.ID, "u4", "")
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
	assert.ErrorIs(t, f.rooms.LeaveRoom(ctx, room.ID, "u1"), apperrors.ErrGameStarted)
	assert.ErrorIs(t, f.rooms.SetReady(ctx, room.ID, "u1", true), apperrors.ErrGameStarted)
	_, err = f.rooms.StartMatch(ctx, room.ID, bots)
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)

	_, err = f.sessions.AutoPlay(ctx, res.MatchID)
	require.NoError(t, err)
	stored, err = f.store.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.RoomFinished, stored.Status)

	// 准备状态在开局时被重置
	_, err = f.rooms.StartMatch(ctx, room.ID, bots)
	assert.ErrorIs(t, err, apperrors.ErrNotAllReady)

	f.readyAll(t, room.ID)
	second, err := f.rooms.StartMatch(ctx, room.ID, bots)
	require.NoError(t, err)
	record, err = f.store.Matches.Get(ctx, second.MatchID)
	require.NoError(t, err)
	assert.False(t, record.GameState.RequireSpade3)
	assert.Equal(t, 1, record.MatchIndex)
}

type failingDealer struct{ err error }

func (d failingDealer) Deal(context.Context, session.DealRequest) (*session.DealResult, error) {
	return nil, d.err
}

func TestStartMatch_DealFailureKeepsRoomWaiting(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.OpeningAlways)
	boom := errors.New("boom")
	f.rooms.dealer = failingDealer{err: boom}
	ctx := context.Background()
	room := f.fill(t)
	f.readyAll(t, room.ID)

	_, err := f.rooms.StartMatch(ctx, room.ID, [card.Seats]bool{})
	assert.ErrorIs(t, err, boom)

	stored, err := f.store.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.RoomWaiting, stored.Status)
	assert.Zero(t, stored.MatchCount)
}

func TestGenerateRoomCode(t *testing.T) {
	t.Parallel()

	for range 50 {
		assert.Regexp(t, `^[0-9]{6}$`, generateRoomCode())
	}
}

func TestStorageFailures(t *testing.T) {
	t.Parallel()

	newFailing := func(t *testing.T) (*RoomManager, *testutil.FailingBackend, *storage.Store, *observer.ObservedLogs) {
		t.Helper()
		fb := testutil.NewFailingBackend(storage.NewMemoryBackend())
		store := storage.NewStore(fb, nil)
		for i := range card.Seats {
			id := fmt.Sprintf("u%d", i)
			require.NoError(t, store.Users.Insert(context.Background(), storage.User{ID: id, Username: id}))
		}
		core, logs := observer.New(zap.InfoLevel)
		rm := NewRoomManager(store, session.NewManager(store), config.Default().Game, zap.New(core))
		return rm, fb, store, logs
	}

	t.Run("创建房间失败时删除房间", func(t *testing.T) {
		t.Parallel()
		rm, fb, store, logs := newFailing(t)
		ctx := context.Background()

		fb.FailWrites(protocol.CollectionRoomPlayers, errors.New("connection reset"))
		_, err := rm.CreateRoom(ctx, "u0", "test", "")
		require.Error(t, err)

		rooms, err := store.Rooms.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, rooms)
		assert.Zero(t, logs.FilterMessage("房间已创建").Len())
	})

	t.Run("离开房间失败时不记录离开", func(t *testing.T) {
		t.Parallel()
		rm, fb, store, logs := newFailing(t)
		ctx := context.Background()

		room, err := rm.CreateRoom(ctx, "u0", "test", "")
		require.NoError(t, err)
		_, err = rm.JoinRoom(ctx, room.ID, "u1", "")
		require.NoError(t, err)

		fb.FailWrites(protocol.CollectionRooms, errors.New("connection reset"))
		require.Error(t, rm.LeaveRoom(ctx, room.ID, "u1"))
		assert.Zero(t, logs.FilterMessage("玩家离开房间").Len())
		players, err := rm.Players(ctx, room.ID)
		require.NoError(t, err)
		assert.Len(t, players, 2)

		fb.FailWrites(protocol.CollectionRooms, nil)
		require.NoError(t, rm.LeaveRoom(ctx, room.ID, "u1"))
		assert.Equal(t, 1, logs.FilterMessage("玩家离开房间").Len())

		got, err := store.Rooms.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentPlayers)
	})
}
