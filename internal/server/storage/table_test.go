package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/wudi/internal/protocol"
)

func TestTable_InsertGetUpdateDelete(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			users := NewTable[User](b, protocol.CollectionUsers, nil)

			u := User{ID: "u1", Username: "alice", TotalScore: 3}
			require.NoError(t, users.Insert(ctx, u))
			assert.ErrorIs(t, users.Insert(ctx, u), ErrDuplicate)

			got, err := users.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Username)

			got.TotalScore = 10
			require.NoError(t, users.Update(ctx, got))
			assert.ErrorIs(t, users.Update(ctx, User{ID: "ghost"}), ErrNotFound)

			modified, err := users.Modify(ctx, "u1", func(u *User) error {
				u.GamesPlayed++
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 1, modified.GamesPlayed)
			assert.Equal(t, 10, modified.TotalScore)

			require.NoError(t, users.Delete(ctx, "u1"))
			_, err = users.Get(ctx, "u1")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, users.Delete(ctx, "u1"), ErrNotFound)
		})
	}
}

func TestTable_ModifyError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := NewTable[User](NewMemoryBackend(), protocol.CollectionUsers, nil)
	require.NoError(t, users.Insert(ctx, User{ID: "u1", TotalScore: 1}))

	boom := errors.New("boom")
	_, err := users.Modify(ctx, "u1", func(u *User) error {
		u.TotalScore = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := users.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalScore)

	_, err = users.Modify(ctx, "ghost", func(*User) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTable_Find(t *testing.T) {
	t.Parallel()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			players := NewTable[RoomPlayer](b, protocol.CollectionRoomPlayers, nil)

			for _, p := range []RoomPlayer{
				{ID: "a", RoomID: "r1", UserID: "u1", SeatPosition: 0},
				{ID: "b", RoomID: "r1", UserID: "u2", SeatPosition: 1, IsReady: true},
				{ID: "c", RoomID: "r2", UserID: "u3", SeatPosition: 0},
			} {
				require.NoError(t, players.Insert(ctx, p))
			}

			inRoom, err := players.Find(ctx, Filter{Field: "room_id", Value: "r1"})
			require.NoError(t, err)
			require.Len(t, inRoom, 2)
			assert.Equal(t, "a", inRoom[0].ID)
			assert.Equal(t, "b", inRoom[1].ID)

			// 数字和布尔字段按 JSON 值比较
			seat1, err := players.Find(ctx, Filter{Field: "seat_position", Value: 1})
			require.NoError(t, err)
			require.Len(t, seat1, 1)
			assert.Equal(t, "u2", seat1[0].UserID)

			ready, err := players.Find(ctx, Filter{Field: "is_ready", Value: true})
			require.NoError(t, err)
			assert.Len(t, ready, 1)

			none, err := players.Find(ctx, Filter{Field: "no_such_field", Value: 1})
			require.NoError(t, err)
			assert.Empty(t, none)

			all, err := players.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestTable_SubscribePublishesEachMutation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), nil)

	var events []protocol.ChangeEvent
	cancel, err := store.Rooms.Subscribe(ctx, Filter{Field: "owner_id", Value: "u1"}, func(e protocol.ChangeEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)
	defer cancel()

	room := Room{ID: "r1", OwnerID: "u1", Status: RoomWaiting}
	require.NoError(t, store.Rooms.Insert(ctx, room))
	require.NoError(t, store.Rooms.Insert(ctx, Room{ID: "r2", OwnerID: "u2"}))
	room.Status = RoomPlaying
	require.NoError(t, store.Rooms.Update(ctx, room))
	// 其他集合的变更不会投递
	require.NoError(t, store.Users.Insert(ctx, User{ID: "u1"}))
	require.NoError(t, store.Rooms.Delete(ctx, "r1"))

	// 失败的写入不发布通知
	assert.Error(t, store.Rooms.Insert(ctx, Room{ID: "r2", OwnerID: "u1"}))

	require.Len(t, events, 3)
	assert.Equal(t, protocol.OpInsert, events[0].Op)
	assert.Equal(t, protocol.OpUpdate, events[1].Op)
	assert.Equal(t, protocol.OpDelete, events[2].Op)
	for _, e := range events {
		assert.Equal(t, protocol.CollectionRooms, e.Collection)
		assert.Equal(t, "r1", e.ID)
		assert.False(t, e.At.IsZero())
	}

	status, ok := events[1].Field("status")
	require.True(t, ok)
	assert.Equal(t, RoomPlaying, status)
	// 删除通知带有删除前的记录
	status, _ = events[2].Field("status")
	assert.Equal(t, RoomPlaying, status)
}

func TestFilter_Match(t *testing.T) {
	t.Parallel()

	record := []byte(`{"id":"m1","seat":2,"is_bot":false,"game_state":{"multiplier":4}}`)
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"空过滤", Filter{}, true},
		{"字符串", Filter{Field: "id", Value: "m1"}, true},
		{"整数", Filter{Field: "seat", Value: 2}, true},
		{"整数不等", Filter{Field: "seat", Value: 3}, false},
		{"布尔", Filter{Field: "is_bot", Value: false}, true},
		{"嵌套对象", Filter{Field: "game_state", Value: map[string]int{"multiplier": 4}}, true},
		{"缺失字段", Filter{Field: "winner_id", Value: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Match(record))
		})
	}
	assert.False(t, Filter{Field: "id", Value: "m1"}.Match([]byte("not json")))
}
