package session

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
	"github.com/palemoky/wudi/internal/game/settle"
	"github.com/palemoky/wudi/internal/protocol/convert"
	"github.com/palemoky/wudi/internal/server/storage"
)

// DealRequest 开一局需要的信息
type DealRequest struct {
	RoomID     string
	MatchIndex int                // 房间中的第几局，从 0 开始
	Seats      [card.Seats]string // 按出牌顺序排列的用户 ID
	Bots       [card.Seats]bool   // 托管座位
	Options    match.Options
}

// DealResult 发牌结果
type DealResult struct {
	MatchID   string
	Hands     [card.Seats][]card.Card
	FirstSeat int
	Teams     settle.Teams
}

// Deal 洗牌、发牌并开始一局
func (m *Manager) Deal(ctx context.Context, req DealRequest) (*DealResult, error) {
	deck := card.NewDeck()
	m.shuffle(deck)
	hands, err := card.Deal(deck)
	if err != nil {
		return nil, err
	}
	return m.DealHands(ctx, req, hands)
}

// DealHands 用指定的手牌开始一局
func (m *Manager) DealHands(ctx context.Context, req DealRequest, hands [card.Seats][]card.Card) (*DealResult, error) {
	mt, err := match.New(uuid.NewString(), req.Seats, hands, req.Options)
	if err != nil {
		return nil, err
	}

	e := &entry{m: mt, bots: req.Bots}
	e.record = storage.MatchRecord{
		ID:         mt.ID,
		RoomID:     req.RoomID,
		MatchIndex: req.MatchIndex,
		Status:     storage.MatchPlaying,
		StartedAt:  m.now(),
		GameState: storage.MatchState{
			BaseScore:     mt.Options().BaseScore,
			Mode:          mt.Teams().Mode.String(),
			FirstSeat:     mt.Turn(),
			RequireSpade3: mt.Options().RequireSpade3Opening,
		},
	}
	fillRecord(&e.record, mt)

	if err := m.store.Matches.Insert(ctx, e.record); err != nil {
		return nil, fmt.Errorf("保存对局: %w", err)
	}
	inserted := make([]string, 0, card.Seats)
	for seat := range card.Seats {
		p := newMatchPlayer(mt, seat, req.Bots[seat])
		if err := m.store.MatchPlayers.Insert(ctx, p); err != nil {
			m.rollbackDeal(ctx, mt.ID, inserted)
			return nil, fmt.Errorf("保存座位 %d: %w", seat, err)
		}
		e.players[seat] = p.ID
		inserted = append(inserted, p.ID)
	}
	m.register(e)

	m.log.Info("对局开始",
		zap.String("match_id", mt.ID),
		zap.String("room_id", req.RoomID),
		zap.String("mode", mt.Teams().Mode.String()),
		zap.Int("first_seat", mt.Turn()),
		zap.Bool("require_spade3", mt.Options().RequireSpade3Opening))

	res := &DealResult{MatchID: mt.ID, FirstSeat: mt.Turn(), Teams: mt.Teams()}
	for seat := range card.Seats {
		res.Hands[seat] = mt.Hand(seat)
	}
	return res, nil
}

func (m *Manager) rollbackDeal(ctx context.Context, matchID string, players []string) {
	for _, id := range players {
		if err := m.store.MatchPlayers.Delete(ctx, id); err != nil {
			m.log.Warn("回滚座位记录失败", zap.String("id", id), zap.Error(err))
		}
	}
	if err := m.store.Matches.Delete(ctx, matchID); err != nil {
		m.log.Warn("回滚对局记录失败", zap.String("match_id", matchID), zap.Error(err))
	}
}

func newMatchPlayer(mt *match.Match, seat int, bot bool) storage.MatchPlayer {
	teams := mt.Teams()
	hand := mt.Hand(seat)
	return storage.MatchPlayer{
		ID:           uuid.NewString(),
		MatchID:      mt.ID,
		UserID:       mt.Seats[seat],
		Seat:         seat,
		IsBot:        bot,
		HandCards:    convert.CardsToInfos(hand),
		CardsCount:   len(hand),
		IsInvincible: teams.IsInvincible(seat),
		IsH2Owner:    teams.Heart2Owner == seat,
		IsD2Owner:    teams.Diamond2Owner == seat,
	}
}

// Load 从存储中的对局、座位和出牌记录重建一局并接管它，用于进程重启后恢复
func (m *Manager) Load(ctx context.Context, matchID string) (*match.Match, error) {
	if e, err := m.lookup(matchID); err == nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.m.Clone(), nil
	}

	record, err := m.store.Matches.Get(ctx, matchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	players, err := m.store.MatchPlayers.Find(ctx, storage.Filter{Field: "game_id", Value: matchID})
	if err != nil {
		return nil, err
	}
	if len(players) != card.Seats {
		return nil, fmt.Errorf("对局 %s 有 %d 个座位记录", matchID, len(players))
	}
	rows, err := m.store.Moves.Find(ctx, storage.Filter{Field: "game_id", Value: matchID})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(rows, func(a, b storage.MoveRecord) int { return a.Seq - b.Seq })

	e := &entry{record: record}
	var seats [card.Seats]string
	var hands [card.Seats][]card.Card
	for _, p := range players {
		if p.Seat < 0 || p.Seat >= card.Seats {
			return nil, fmt.Errorf("座位记录 %s 的座位号 %d 无效", p.ID, p.Seat)
		}
		hand, err := convert.InfosToCards(p.HandCards)
		if err != nil {
			return nil, err
		}
		seats[p.Seat] = p.UserID
		hands[p.Seat] = hand
		e.players[p.Seat] = p.ID
		e.bots[p.Seat] = p.IsBot
	}

	// 当前手牌加上打出去的牌就是发到的牌
	moves := make([]match.Move, 0, len(rows))
	for _, r := range rows {
		mv := match.Move{Seq: r.Seq, Seat: r.Seat, Kind: match.MovePass}
		if r.MoveType == storage.MoveTypePlay {
			cards, err := convert.InfosToCards(r.CardsPlayed)
			if err != nil {
				return nil, err
			}
			mv.Kind = match.MovePlay
			mv.Cards = cards
			hands[r.Seat] = append(hands[r.Seat], cards...)
		}
		moves = append(moves, mv)
	}

	opts := match.Options{
		BaseScore:            record.GameState.BaseScore,
		RequireSpade3Opening: record.GameState.RequireSpade3,
		FirstSeat:            record.GameState.FirstSeat,
	}
	mt, err := match.Replay(matchID, seats, hands, opts, moves)
	if err != nil {
		return nil, fmt.Errorf("恢复对局 %s: %w", matchID, err)
	}
	e.m = mt
	m.register(e)

	m.log.Info("对局已恢复", zap.String("match_id", matchID), zap.Int("moves", len(moves)))
	return mt.Clone(), nil
}
