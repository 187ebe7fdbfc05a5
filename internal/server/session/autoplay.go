package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/bot"
	"github.com/palemoky/wudi/internal/game/match"
)

// SetBot 切换一个座位的托管状态
func (m *Manager) SetBot(matchID string, seat int, enabled bool) error {
	e, err := m.lookup(matchID)
	if err != nil {
		return err
	}
	if seat < 0 || seat >= len(e.bots) {
		return apperrors.ErrSeatOutOfRange
	}
	e.mu.Lock()
	e.bots[seat] = enabled
	e.mu.Unlock()
	return nil
}

// AutoPlay 依次替托管座位出牌，直到轮到非托管座位或对局结束，返回执行的操作数
func (m *Manager) AutoPlay(ctx context.Context, matchID string) (int, error) {
	e, err := m.lookup(matchID)
	if err != nil {
		return 0, err
	}

	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		if steps == m.autoPlayLimit {
			if m.botToAct(e) {
				return steps, fmt.Errorf("%w: %d", apperrors.ErrAutoPlayExhausted, m.autoPlayLimit)
			}
			return steps, nil
		}

		done, err := m.autoStep(ctx, e)
		if err != nil || done {
			return steps, err
		}
	}
}

func (m *Manager) botToAct(e *entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.m.IsTerminal() && e.bots[e.m.Turn()]
}

// autoStep 执行一步托管，没有可执行的操作时返回 done
func (m *Manager) autoStep(ctx context.Context, e *entry) (done bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.m.IsTerminal() || !e.bots[e.m.Turn()] {
		return true, nil
	}

	seat := e.m.Turn()
	mv := match.Move{Seat: seat, Kind: match.MovePass}
	if cards := bot.Choose(e.m.View(seat)); cards != nil {
		mv = match.Move{Seat: seat, Kind: match.MovePlay, Cards: cards}
	}
	if err := m.apply(ctx, e, mv); err != nil {
		m.log.Error("托管出牌失败", zap.String("match_id", e.m.ID), zap.Int("seat", seat), zap.Error(err))
		return false, err
	}
	return false, nil
}
