package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/match"
	"github.com/palemoky/wudi/internal/protocol/convert"
	"github.com/palemoky/wudi/internal/server/storage"
)

// fillRecord 把对局的当前公开状态写入记录
func fillRecord(r *storage.MatchRecord, mt *match.Match) {
	r.CurrentSeat = mt.Turn()
	r.CurrentPlayerID = mt.Seats[mt.Turn()]
	r.GameState.Multiplier = mt.Multiplier()
	r.GameState.LeadSeat = -1
	if lead, ok := mt.Lead(); ok {
		r.GameState.LeadSeat = lead.Seat
	}
}

// persistMove 保存一手操作后的座位、对局状态和出牌记录，返回新的对局记录。
// 出牌记录最后写入；任何一步失败都会把已经写入的座位和对局恢复原样
func (m *Manager) persistMove(ctx context.Context, e *entry, next *match.Match, mv match.Move) (storage.MatchRecord, error) {
	var deltas [card.Seats]int
	result, err := next.Settlement()
	terminal := err == nil
	if terminal {
		deltas = result.Deltas
	}

	// 出牌只影响出牌的座位；终局时四个座位都要写入得分
	var seats []int
	switch {
	case terminal:
		seats = []int{0, 1, 2, 3}
	case !mv.IsPass():
		seats = []int{mv.Seat}
	}
	prev := make([]storage.MatchPlayer, 0, len(seats))
	for _, seat := range seats {
		hand := next.Hand(seat)
		plays := next.Plays()[seat]
		var old storage.MatchPlayer
		_, err := m.store.MatchPlayers.Modify(ctx, e.players[seat], func(p *storage.MatchPlayer) error {
			old = *p
			p.HandCards = convert.CardsToInfos(hand)
			p.CardsCount = len(hand)
			p.PlayedTimes = plays
			p.ScoreChange = deltas[seat]
			return nil
		})
		if err != nil {
			m.rollbackMove(ctx, prev, nil)
			return storage.MatchRecord{}, fmt.Errorf("保存座位 %d: %w", seat, err)
		}
		prev = append(prev, old)
	}

	record := e.record
	fillRecord(&record, next)
	if terminal {
		finished := m.now()
		record.Status = storage.MatchFinished
		record.WinnerID = next.Seats[result.Winner]
		record.FinishedAt = &finished
		record.GameState.Spring = result.Spring
		record.GameState.FinalMultiplier = result.Multiplier
	}
	if err := m.store.Matches.Update(ctx, record); err != nil {
		m.rollbackMove(ctx, prev, nil)
		return storage.MatchRecord{}, fmt.Errorf("保存对局: %w", err)
	}

	row := storage.MoveRecord{
		ID:          uuid.NewString(),
		MatchID:     next.ID,
		PlayerID:    next.Seats[mv.Seat],
		Seat:        mv.Seat,
		Seq:         mv.Seq,
		MoveType:    storage.MoveTypePlay,
		PlayedAt:    m.now(),
		CardsPlayed: convert.CardsToInfos(mv.Cards),
	}
	if mv.IsPass() {
		row.MoveType = storage.MoveTypePass
	} else {
		row.Pattern = mv.TypeKey()
	}
	if err := m.store.Moves.Insert(ctx, row); err != nil {
		m.rollbackMove(ctx, prev, &e.record)
		return storage.MatchRecord{}, fmt.Errorf("保存出牌记录: %w", err)
	}
	return record, nil
}

// rollbackMove 恢复 persistMove 已经写入的座位和对局记录
func (m *Manager) rollbackMove(ctx context.Context, players []storage.MatchPlayer, record *storage.MatchRecord) {
	ctx = context.WithoutCancel(ctx)
	if record != nil {
		if err := m.store.Matches.Update(ctx, *record); err != nil {
			m.log.Warn("回滚对局记录失败", zap.String("match_id", record.ID), zap.Error(err))
		}
	}
	for _, p := range players {
		if err := m.store.MatchPlayers.Update(ctx, p); err != nil {
			m.log.Warn("回滚座位失败", zap.String("match_player_id", p.ID), zap.Error(err))
		}
	}
}

// settleAccounts 对局结束后更新用户累计得分、房间状态和排行榜。
// 这时对局已经结束，这里的失败只记录日志
func (m *Manager) settleAccounts(ctx context.Context, e *entry) {
	result, err := e.m.Settlement()
	if err != nil {
		return
	}
	log := m.log.With(zap.String("match_id", e.m.ID))
	log.Info("对局结束",
		zap.Int("winner", result.Winner),
		zap.String("mode", result.Mode.String()),
		zap.Bool("spring", result.Spring),
		zap.Int("multiplier", result.Multiplier),
		zap.Ints("deltas", result.Deltas[:]))

	teams := e.m.Teams()
	for seat, userID := range e.m.Seats {
		delta := result.Deltas[seat]
		won := result.Won(seat)
		user, err := m.store.Users.Modify(ctx, userID, func(u *storage.User) error {
			u.TotalScore += delta
			u.GamesPlayed++
			if won {
				u.GamesWon++
			}
			return nil
		})
		name := userID
		switch {
		case err == nil:
			name = user.Username
		case errors.Is(err, storage.ErrNotFound):
			log.Warn("结算时找不到用户", zap.String("user_id", userID))
		default:
			log.Error("更新用户得分失败", zap.String("user_id", userID), zap.Error(err))
		}

		if m.board == nil {
			continue
		}
		if err := m.board.RecordGameResult(ctx, storage.GameResult{
			PlayerID:   userID,
			PlayerName: name,
			Invincible: teams.IsInvincible(seat),
			Won:        won,
			Spring:     result.Spring,
			Delta:      delta,
		}); err != nil {
			log.Error("记录排行榜失败", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if e.record.RoomID == "" {
		return
	}
	if _, err := m.store.Rooms.Modify(ctx, e.record.RoomID, func(r *storage.Room) error {
		if r.CurrentMatchID == e.m.ID {
			r.Status = storage.RoomFinished
		}
		return nil
	}); err != nil {
		log.Error("更新房间状态失败", zap.String("room_id", e.record.RoomID), zap.Error(err))
	}
}
