package room

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/match"
	"github.com/palemoky/wudi/internal/server/session"
	"github.com/palemoky/wudi/internal/server/storage"
)

// CreateRoom 创建房间，创建者坐在 0 号座位
func (rm *RoomManager) CreateRoom(ctx context.Context, ownerID, name, password string) (storage.Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err := rm.checkUser(ctx, ownerID); err != nil {
		return storage.Room{}, err
	}

	code, err := rm.uniqueCode(ctx)
	if err != nil {
		return storage.Room{}, err
	}

	room := storage.Room{
		ID:             uuid.NewString(),
		Name:           name,
		Password:       password,
		JoinCode:       code,
		OwnerID:        ownerID,
		Status:         storage.RoomWaiting,
		CurrentPlayers: 1,
		CreatedAt:      rm.now(),
	}
	if err := rm.store.Rooms.Insert(ctx, room); err != nil {
		return storage.Room{}, err
	}
	if err := rm.store.RoomPlayers.Insert(ctx, rm.newPlayer(room.ID, ownerID, 0)); err != nil {
		if derr := rm.store.Rooms.Delete(context.WithoutCancel(ctx), room.ID); derr != nil {
			rm.log.Warn("回滚房间失败", zap.String("room_id", room.ID), zap.Error(derr))
		}
		return storage.Room{}, err
	}

	rm.log.Info("房间已创建", zap.String("room_id", room.ID), zap.String("join_code", code), zap.String("owner_id", ownerID))
	return room, nil
}

func (rm *RoomManager) newPlayer(roomID, userID string, seat int) storage.RoomPlayer {
	return storage.RoomPlayer{
		ID:           uuid.NewString(),
		RoomID:       roomID,
		UserID:       userID,
		SeatPosition: seat,
		JoinedAt:     rm.now(),
	}
}

// checkUser 用户必须存在且不在任何房间中
func (rm *RoomManager) checkUser(ctx context.Context, userID string) error {
	if _, err := rm.store.Users.Get(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrUserNotFound, userID)
		}
		return err
	}
	seats, err := rm.store.RoomPlayers.Find(ctx, storage.Filter{Field: "user_id", Value: userID})
	if err != nil {
		return err
	}
	if len(seats) > 0 {
		return apperrors.ErrAlreadyInRoom
	}
	return nil
}

func (rm *RoomManager) uniqueCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code := generateRoomCode()
		rooms, err := rm.store.Rooms.Find(ctx, storage.Filter{Field: "join_code", Value: code})
		if err != nil {
			return "", err
		}
		if len(rooms) == 0 {
			return code, nil
		}
	}
	return "", errors.New("无法生成唯一的房间号")
}

func (rm *RoomManager) getRoom(ctx context.Context, roomID string) (storage.Room, error) {
	room, err := rm.store.Rooms.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return room, fmt.Errorf("%w: %s", apperrors.ErrRoomNotFound, roomID)
		}
		return room, err
	}
	return room, nil
}

// Players 房间里的座位，按座位号排序
func (rm *RoomManager) Players(ctx context.Context, roomID string) ([]storage.RoomPlayer, error) {
	players, err := rm.store.RoomPlayers.Find(ctx, storage.Filter{Field: "room_id", Value: roomID})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(players, func(a, b storage.RoomPlayer) int { return a.SeatPosition - b.SeatPosition })
	return players, nil
}

// JoinRoom 加入房间，坐到编号最小的空座位
func (rm *RoomManager) JoinRoom(ctx context.Context, roomID, userID, password string) (storage.RoomPlayer, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, err := rm.getRoom(ctx, roomID)
	if err != nil {
		return storage.RoomPlayer{}, err
	}
	if room.Password != "" && room.Password != password {
		return storage.RoomPlayer{}, apperrors.ErrWrongPassword
	}
	if room.Status == storage.RoomPlaying {
		return storage.RoomPlayer{}, apperrors.ErrGameStarted
	}
	if err := rm.checkUser(ctx, userID); err != nil {
		return storage.RoomPlayer{}, err
	}

	players, err := rm.Players(ctx, roomID)
	if err != nil {
		return storage.RoomPlayer{}, err
	}
	if len(players) >= maxPlayers {
		return storage.RoomPlayer{}, apperrors.ErrRoomFull
	}

	var taken [maxPlayers]bool
	for _, p := range players {
		taken[p.SeatPosition] = true
	}
	seat := slices.Index(taken[:], false)

	player := rm.newPlayer(roomID, userID, seat)
	if err := rm.store.RoomPlayers.Insert(ctx, player); err != nil {
		return storage.RoomPlayer{}, err
	}
	if _, err := rm.store.Rooms.Modify(ctx, roomID, func(r *storage.Room) error {
		r.CurrentPlayers = len(players) + 1
		return nil
	}); err != nil {
		return storage.RoomPlayer{}, err
	}

	rm.log.Info("玩家加入房间", zap.String("room_id", roomID), zap.String("user_id", userID), zap.Int("seat", seat))
	return player, nil
}

// JoinByCode 用 6 位房间号加入房间
func (rm *RoomManager) JoinByCode(ctx context.Context, code, userID, password string) (storage.RoomPlayer, error) {
	rooms, err := rm.store.Rooms.Find(ctx, storage.Filter{Field: "join_code", Value: code})
	if err != nil {
		return storage.RoomPlayer{}, err
	}
	if len(rooms) == 0 {
		return storage.RoomPlayer{}, fmt.Errorf("%w: 房间号 %s", apperrors.ErrRoomNotFound, code)
	}
	return rm.JoinRoom(ctx, rooms[0].ID, userID, password)
}

func (rm *RoomManager) findPlayer(ctx context.Context, roomID, userID string) (storage.RoomPlayer, []storage.RoomPlayer, error) {
	players, err := rm.Players(ctx, roomID)
	if err != nil {
		return storage.RoomPlayer{}, nil, err
	}
	for _, p := range players {
		if p.UserID == userID {
			return p, players, nil
		}
	}
	return storage.RoomPlayer{}, players, apperrors.ErrNotInRoom
}

// SetReady 设置准备状态
func (rm *RoomManager) SetReady(ctx context.Context, roomID, userID string, ready bool) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, err := rm.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status == storage.RoomPlaying {
		return apperrors.ErrGameStarted
	}
	player, _, err := rm.findPlayer(ctx, roomID, userID)
	if err != nil {
		return err
	}
	_, err = rm.store.RoomPlayers.Modify(ctx, player.ID, func(p *storage.RoomPlayer) error {
		p.IsReady = ready
		return nil
	})
	return err
}

// LeaveRoom 离开房间。房主离开时由座位号最小的玩家接任，最后一人离开时删除房间
func (rm *RoomManager) LeaveRoom(ctx context.Context, roomID, userID string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, err := rm.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status == storage.RoomPlaying {
		return apperrors.ErrGameStarted
	}
	player, players, err := rm.findPlayer(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if err := rm.store.RoomPlayers.Delete(ctx, player.ID); err != nil {
		return err
	}

	remaining := slices.DeleteFunc(players, func(p storage.RoomPlayer) bool { return p.ID == player.ID })
	if len(remaining) == 0 {
		if err := rm.store.Rooms.Delete(ctx, roomID); err != nil {
			return err
		}
		rm.log.Info("房间已解散", zap.String("room_id", roomID))
		return nil
	}

	if _, err := rm.store.Rooms.Modify(ctx, roomID, func(r *storage.Room) error {
		r.CurrentPlayers = len(remaining)
		if r.OwnerID == userID {
			r.OwnerID = remaining[0].UserID
		}
		return nil
	}); err != nil {
		if rerr := rm.store.RoomPlayers.Insert(context.WithoutCancel(ctx), player); rerr != nil {
			rm.log.Warn("恢复座位失败", zap.String("room_player_id", player.ID), zap.Error(rerr))
		}
		return err
	}
	rm.log.Info("玩家离开房间", zap.String("room_id", roomID), zap.String("user_id", userID), zap.Int("seat", player.SeatPosition))
	return nil
}

// StartMatch 4 名玩家都准备后开局。bots 按座位号指定托管座位
func (rm *RoomManager) StartMatch(ctx context.Context, roomID string, bots [card.Seats]bool) (*session.DealResult, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, err := rm.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == storage.RoomPlaying {
		return nil, apperrors.ErrGameStarted
	}
	players, err := rm.Players(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(players) != maxPlayers {
		return nil, apperrors.ErrNotAllReady
	}

	var seats [card.Seats]string
	for _, p := range players {
		if !p.IsReady {
			return nil, apperrors.ErrNotAllReady
		}
		seats[p.SeatPosition] = p.UserID
	}

	res, err := rm.dealer.Deal(ctx, session.DealRequest{
		RoomID:     roomID,
		MatchIndex: room.MatchCount,
		Seats:      seats,
		Bots:       bots,
		Options: match.Options{
			BaseScore:            rm.game.BaseScore,
			RequireSpade3Opening: rm.game.RequireSpade3(room.MatchCount),
			FirstSeat:            match.SeatSpade3,
		},
	})
	if err != nil {
		return nil, err
	}

	if _, err := rm.store.Rooms.Modify(ctx, roomID, func(r *storage.Room) error {
		r.Status = storage.RoomPlaying
		r.MatchCount++
		r.CurrentMatchID = res.MatchID
		return nil
	}); err != nil {
		return nil, err
	}
	// 下一局需要重新准备
	for _, p := range players {
		if _, err := rm.store.RoomPlayers.Modify(ctx, p.ID, func(p *storage.RoomPlayer) error {
			p.IsReady = false
			return nil
		}); err != nil {
			rm.log.Warn("重置准备状态失败", zap.String("room_player_id", p.ID), zap.Error(err))
		}
	}

	rm.log.Info("房间开局",
		zap.String("room_id", roomID),
		zap.String("match_id", res.MatchID),
		zap.Int("match_index", room.MatchCount))
	return res, nil
}

// ListRooms 可以加入的房间：等待中或上一局已结束，且没有坐满
func (rm *RoomManager) ListRooms(ctx context.Context) ([]storage.Room, error) {
	rooms, err := rm.store.Rooms.All(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(rooms, func(r storage.Room) bool {
		return r.Status == storage.RoomPlaying || r.CurrentPlayers >= maxPlayers
	}), nil
}
