// Package session 对局的命令入口：发牌、出牌、过牌、结算。
//
// Manager 按对局 ID 分片持有进行中的 match.Match。每个操作先在副本上执行，
// 持久化成功后才替换内存中的对局，所以被拒绝或写入失败的操作不会改变状态。
package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/match"
	"github.com/palemoky/wudi/internal/game/settle"
	"github.com/palemoky/wudi/internal/server/storage"
)

const (
	shardCount           = 16
	defaultAutoPlayLimit = 200
)

type shard struct {
	mu      sync.RWMutex
	matches map[string]*entry
}

// entry 一局进行中的牌，mu 保证同一局只有一个写者
type entry struct {
	mu      sync.Mutex
	m       *match.Match
	record  storage.MatchRecord
	players [card.Seats]string // MatchPlayer 记录的 ID
	bots    [card.Seats]bool
}

// Manager 对局管理器
type Manager struct {
	store         *storage.Store
	board         storage.Leaderboard
	log           *zap.Logger
	autoPlayLimit int
	now           func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	shards [shardCount]*shard
}

// Option 配置 Manager
type Option func(*Manager)

// WithLeaderboard 对局结束时记录排行榜
func WithLeaderboard(board storage.Leaderboard) Option {
	return func(m *Manager) { m.board = board }
}

// WithLogger 设置日志
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithRand 使用固定的随机源洗牌，便于复现
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithAutoPlayLimit 一次 AutoPlay 最多执行的操作数
func WithAutoPlayLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.autoPlayLimit = n
		}
	}
}

// NewManager 创建对局管理器
func NewManager(store *storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		log:           zap.NewNop(),
		autoPlayLimit: defaultAutoPlayLimit,
		now:           time.Now,
	}
	for i := range m.shards {
		m.shards[i] = &shard{matches: make(map[string]*entry)}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) shardFor(matchID string) *shard {
	return m.shards[xxhash.Sum64String(matchID)%shardCount]
}

func (m *Manager) lookup(matchID string) (*entry, error) {
	sh := m.shardFor(matchID)
	sh.mu.RLock()
	e, ok := sh.matches[matchID]
	sh.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMatchNotFound, matchID)
	}
	return e, nil
}

func (m *Manager) register(e *entry) {
	sh := m.shardFor(e.m.ID)
	sh.mu.Lock()
	sh.matches[e.m.ID] = e
	sh.mu.Unlock()
}

// Forget 从内存中移除一局，已持久化的记录不受影响
func (m *Manager) Forget(matchID string) {
	sh := m.shardFor(matchID)
	sh.mu.Lock()
	delete(sh.matches, matchID)
	sh.mu.Unlock()
}

func (m *Manager) shuffle(deck card.Deck) {
	if m.rng == nil {
		deck.Shuffle()
		return
	}
	m.rngMu.Lock()
	deck.ShuffleWith(m.rng)
	m.rngMu.Unlock()
}

// Play 出牌。被拒绝时返回分类好的 *apperrors.GameError，对局不变
func (m *Manager) Play(ctx context.Context, matchID string, seat int, cards []card.Card) error {
	e, err := m.lookup(matchID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.apply(ctx, e, match.Move{Seat: seat, Kind: match.MovePlay, Cards: cards})
}

// Pass 过牌
func (m *Manager) Pass(ctx context.Context, matchID string, seat int) error {
	e, err := m.lookup(matchID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return m.apply(ctx, e, match.Move{Seat: seat, Kind: match.MovePass})
}

// apply 在副本上执行操作，持久化成功后替换。调用方持有 e.mu
func (m *Manager) apply(ctx context.Context, e *entry, mv match.Move) error {
	next := e.m.Clone()
	applied, err := next.Apply(mv)
	if err != nil {
		m.log.Debug("操作被拒绝",
			zap.String("match_id", e.m.ID),
			zap.Int("seat", mv.Seat),
			zap.String("kind", mv.Kind.String()),
			zap.String("reason", apperrors.KindOf(err)))
		return err
	}

	record, err := m.persistMove(ctx, e, next, applied)
	if err != nil {
		m.log.Error("保存出牌失败", zap.String("match_id", e.m.ID), zap.Int("seq", applied.Seq), zap.Error(err))
		return err
	}
	e.m = next
	e.record = record

	if next.IsTerminal() {
		m.settleAccounts(ctx, e)
	}
	return nil
}

// Settle 终局的结算结果，未结束时返回 ErrMatchNotTerminal
func (m *Manager) Settle(_ context.Context, matchID string) (settle.Settlement, error) {
	e, err := m.lookup(matchID)
	if err != nil {
		return settle.Settlement{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.Settlement()
}

// View seat 视角的牌局
func (m *Manager) View(matchID string, seat int) (match.View, error) {
	if seat < 0 || seat >= card.Seats {
		return match.View{}, apperrors.ErrSeatOutOfRange
	}
	e, err := m.lookup(matchID)
	if err != nil {
		return match.View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.View(seat), nil
}

// SeatOf 用户在这一局中的座位
func (m *Manager) SeatOf(matchID, userID string) (int, error) {
	e, err := m.lookup(matchID)
	if err != nil {
		return -1, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	seat, ok := e.m.SeatOf(userID)
	if !ok {
		return -1, fmt.Errorf("%w: %s 不在对局 %s 中", apperrors.ErrSeatOutOfRange, userID, matchID)
	}
	return seat, nil
}

// Moves 出牌记录
func (m *Manager) Moves(matchID string) ([]match.Move, error) {
	e, err := m.lookup(matchID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.Moves(), nil
}

// Snapshot 对局的深拷贝
func (m *Manager) Snapshot(matchID string) (*match.Match, error) {
	e, err := m.lookup(matchID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.Clone(), nil
}
