package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/room"
	"github.com/palemoky/wudi/internal/logger"
	"github.com/palemoky/wudi/internal/protocol"
	"github.com/palemoky/wudi/internal/server/session"
	"github.com/palemoky/wudi/internal/server/storage"
	"github.com/palemoky/wudi/internal/ui/view"
)

// 四个托管玩家，按入座顺序
var botUsers = [card.Seats]storage.User{
	{ID: "bot-east", Username: "东风", Email: "east@wudi.local"},
	{ID: "bot-south", Username: "南风", Email: "south@wudi.local"},
	{ID: "bot-west", Username: "西风", Email: "west@wudi.local"},
	{ID: "bot-north", Username: "北风", Email: "north@wudi.local"},
}

var allBots = [card.Seats]bool{true, true, true, true}

type simulator struct {
	store    *storage.Store
	sessions *session.Manager
	rooms    *room.RoomManager
	board    storage.Leaderboard // 可为 nil
	log      *zap.Logger
	out      io.Writer
	events   atomic.Int64
}

// summary 一次模拟的结果
type summary struct {
	Matches int
	Totals  []view.Total
	Events  int64
}

func (s *simulator) registerUsers(ctx context.Context) error {
	for _, u := range botUsers {
		u.CreatedAt = time.Now()
		err := s.store.Users.Insert(ctx, u)
		if err != nil && !errors.Is(err, storage.ErrDuplicate) {
			return fmt.Errorf("注册玩家 %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *simulator) seatRoom(ctx context.Context) (storage.Room, error) {
	r, err := s.rooms.CreateRoom(ctx, botUsers[0].ID, "模拟房间", "")
	if err != nil {
		return storage.Room{}, err
	}
	for _, u := range botUsers[1:] {
		if _, err := s.rooms.JoinByCode(ctx, r.JoinCode, u.ID, ""); err != nil {
			return storage.Room{}, err
		}
	}
	return r, nil
}

func (s *simulator) leaveRoom(ctx context.Context, roomID string) {
	for _, u := range botUsers {
		if err := s.rooms.LeaveRoom(ctx, roomID, u.ID); err != nil {
			s.log.Warn("离开房间失败", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
}

func (s *simulator) run(ctx context.Context, matches int) (*summary, error) {
	cancel, err := s.store.Backend.Subscribe(ctx, func(protocol.ChangeEvent) {
		s.events.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("订阅变更通知: %w", err)
	}
	defer cancel()

	if err := s.registerUsers(ctx); err != nil {
		return nil, err
	}
	r, err := s.seatRoom(ctx)
	if err != nil {
		return nil, err
	}
	defer s.leaveRoom(context.WithoutCancel(ctx), r.ID)

	played := 0
	for i := range matches {
		if err := s.playSafe(ctx, r.ID, i); err != nil {
			return nil, fmt.Errorf("第 %d 局: %w", i+1, err)
		}
		played++
	}

	totals, err := s.totals(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(s.out, view.RenderTotals(totals, played))

	if s.board != nil {
		s.printLeaderboard(ctx)
	}
	return &summary{Matches: played, Totals: totals, Events: s.events.Load()}, nil
}

// playSafe 一局中的 panic 转成错误，不影响后面的清理
func (s *simulator) playSafe(ctx context.Context, roomID string, index int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			err = fmt.Errorf("对局异常: %v", r)
		}
	}()
	return s.playOne(ctx, roomID, index)
}

func (s *simulator) playOne(ctx context.Context, roomID string, index int) error {
	for _, u := range botUsers {
		if err := s.rooms.SetReady(ctx, roomID, u.ID, true); err != nil {
			return err
		}
	}
	res, err := s.rooms.StartMatch(ctx, roomID, allBots)
	if err != nil {
		return err
	}
	steps, err := s.sessions.AutoPlay(ctx, res.MatchID)
	if err != nil {
		return err
	}
	mt, err := s.sessions.Snapshot(res.MatchID)
	if err != nil {
		return err
	}
	result, err := mt.Settlement()
	if err != nil {
		return err
	}
	// 结束的对局不再需要留在内存里
	defer s.sessions.Forget(res.MatchID)

	names := s.names(mt.Seats)
	teams := mt.Teams()
	fmt.Fprintln(s.out, view.RenderTitle(fmt.Sprintf("第 %d 局 (%d 手)", index+1, steps)))
	for seat := range card.Seats {
		fmt.Fprintln(s.out, view.RenderHand(names[seat], mt.DealtHand(seat), teams.IsInvincible(seat)))
	}
	fmt.Fprint(s.out, view.RenderMoveLog(mt.Moves(), names))
	fmt.Fprintln(s.out, view.RenderSettlement(result, teams, names))
	return nil
}

func (s *simulator) names(seats [card.Seats]string) view.Names {
	var names view.Names
	for seat, id := range seats {
		for _, u := range botUsers {
			if u.ID == id {
				names[seat] = u.Username
			}
		}
	}
	return names
}

func (s *simulator) totals(ctx context.Context) ([]view.Total, error) {
	totals := make([]view.Total, 0, len(botUsers))
	for _, b := range botUsers {
		u, err := s.store.Users.Get(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		totals = append(totals, view.Total{Name: u.Username, Score: u.TotalScore, Wins: u.GamesWon})
	}
	return totals, nil
}

func (s *simulator) printLeaderboard(ctx context.Context) {
	entries, err := s.board.GetLeaderboard(ctx, storage.BoardTotal, 0, 10)
	if err != nil {
		s.log.Warn("读取排行榜失败", zap.Error(err))
		return
	}
	fmt.Fprintln(s.out, view.RenderLeaderboard("排行榜 TOP 10", entries))

	for _, u := range botUsers {
		stats, err := s.board.GetPlayerStats(ctx, u.ID)
		if err != nil || stats == nil {
			continue
		}
		rank, err := s.board.GetPlayerRank(ctx, u.ID)
		if err != nil {
			rank = -1
		}
		fmt.Fprintln(s.out, view.RenderStats(stats, rank))
	}
}
