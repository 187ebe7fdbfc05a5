// Package match 一局牌的状态机：出牌、过牌、轮转和终局结算。
//
// Match 是单写者对象，不做任何同步；并发访问由调用方（session）按对局加锁。
// 任何被拒绝的操作都不会修改状态。
package match

import (
	"fmt"
	"slices"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/rule"
	"github.com/palemoky/wudi/internal/game/settle"
)

// State 对局状态
type State int

const (
	AwaitingLead     State = iota // 自由出牌，当前座位必须出牌
	AwaitingResponse              // 桌上有别人的牌，可以压或过
	Terminal                      // 已有人出完牌
)

var stateNames = map[State]string{
	AwaitingLead:     "awaiting_lead",
	AwaitingResponse: "awaiting_response",
	Terminal:         "terminal",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// SeatSpade3 让黑桃3的持有者先出
const SeatSpade3 = -1

// Options 每局的配置
type Options struct {
	BaseScore            int
	RequireSpade3Opening bool // 第一手必须包含黑桃3
	FirstSeat            int  // 先出的座位，SeatSpade3 表示黑桃3的持有者
}

// DefaultOptions 底分 1，黑桃3先出且必须出黑桃3
func DefaultOptions() Options {
	return Options{BaseScore: 1, RequireSpade3Opening: true, FirstSeat: SeatSpade3}
}

// Match 一局牌
type Match struct {
	ID    string
	Seats [card.Seats]string // 按出牌顺序排列的玩家 ID

	opts       Options
	dealt      [card.Seats][]card.Card
	hands      [card.Seats][]card.Card
	teams      settle.Teams
	state      State
	turn       int
	lead       int // 当前最大的一手在 moves 中的下标，-1 表示没有
	leadHand   rule.ParsedHand
	moves      []Move
	plays      [card.Seats]int
	multiplier int
	winner     int
	result     *settle.Settlement
}

// New 用发好的牌创建一局。hands 必须是一副完整的 52 张牌，每人 13 张
func New(id string, seats [card.Seats]string, hands [card.Seats][]card.Card, opts Options) (*Match, error) {
	if err := validateDeal(hands); err != nil {
		return nil, err
	}
	if opts.BaseScore < 1 {
		opts.BaseScore = 1
	}

	teams, err := settle.InferTeams(hands)
	if err != nil {
		return nil, err
	}

	m := &Match{
		ID:         id,
		Seats:      seats,
		opts:       opts,
		teams:      teams,
		state:      AwaitingLead,
		lead:       -1,
		multiplier: 1,
		winner:     -1,
	}
	for seat, hand := range hands {
		m.dealt[seat] = card.Sorted(hand)
		m.hands[seat] = card.Sorted(hand)
	}

	switch {
	case opts.FirstSeat == SeatSpade3:
		m.turn = holderOf(hands, card.Spade3)
	case opts.FirstSeat >= 0 && opts.FirstSeat < card.Seats:
		m.turn = opts.FirstSeat
	default:
		return nil, fmt.Errorf("%w: 先出座位 %d", apperrors.ErrSeatOutOfRange, opts.FirstSeat)
	}
	return m, nil
}

func validateDeal(hands [card.Seats][]card.Card) error {
	seen := make(map[card.Card]struct{}, card.DeckSize)
	for seat, hand := range hands {
		if len(hand) != card.HandSize {
			return fmt.Errorf("%w: 座位 %d 有 %d 张牌", apperrors.ErrInvalidDeal, seat, len(hand))
		}
		for _, c := range hand {
			if !c.Rank.Valid() || c.Suit < card.Diamond || c.Suit > card.Spade {
				return fmt.Errorf("%w: 无法识别的牌 %v", apperrors.ErrInvalidDeal, c)
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("%w: %s 重复", apperrors.ErrInvalidDeal, c)
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

func holderOf(hands [card.Seats][]card.Card, c card.Card) int {
	for seat, hand := range hands {
		if card.Has(hand, c) {
			return seat
		}
	}
	return 0
}

func nextSeat(seat int) int {
	return (seat + 1) % card.Seats
}

// Play 出牌。成功时返回追加到牌局记录中的 Move
func (m *Match) Play(seat int, cards []card.Card) (Move, error) {
	if err := m.checkActor(seat); err != nil {
		return Move{}, err
	}

	hand := m.hands[seat]
	if err := card.ContainsAll(hand, cards); err != nil {
		return Move{}, fmt.Errorf("%w: %v", apperrors.ErrCardsNotInHand, err)
	}

	cards = card.Sorted(cards)
	opening := m.opts.RequireSpade3Opening && len(m.moves) == 0
	parsed, err := rule.ValidatePlay(cards, rule.PlayContext{
		HandSize:    len(hand),
		Lead:        m.leadHand,
		OpeningLead: opening,
		HoldsSpade3: card.Has(hand, card.Spade3),
	})
	if err != nil {
		return Move{}, err
	}

	// 校验全部通过，开始修改状态
	mv := Move{Seq: len(m.moves), Seat: seat, Kind: MovePlay, Cards: cards}
	m.moves = append(m.moves, mv)
	m.hands[seat] = card.RemoveCards(hand, cards)
	m.plays[seat]++
	m.lead = mv.Seq
	m.leadHand = parsed

	switch parsed.Type {
	case rule.Bomb:
		m.multiplier *= 2
	case rule.InvincibleBomb:
		m.multiplier *= 4
	}

	if len(m.hands[seat]) == 0 {
		m.finish(seat)
		return mv, nil
	}

	m.state = AwaitingResponse
	m.turn = nextSeat(seat)
	return mv, nil
}

// Pass 过牌。自由出牌时不能过
func (m *Match) Pass(seat int) (Move, error) {
	if err := m.checkActor(seat); err != nil {
		return Move{}, err
	}
	if m.state != AwaitingResponse || m.moves[m.lead].Seat == seat {
		return Move{}, apperrors.ErrMustLead
	}

	mv := Move{Seq: len(m.moves), Seat: seat, Kind: MovePass}
	m.moves = append(m.moves, mv)
	m.turn = nextSeat(seat)

	// 其余三家都过了，牌权回到出牌的人手里
	if m.turn == m.moves[m.lead].Seat {
		m.lead = -1
		m.leadHand = rule.ParsedHand{}
		m.state = AwaitingLead
	}
	return mv, nil
}

// Apply 按 Move 的类型出牌或过牌
func (m *Match) Apply(mv Move) (Move, error) {
	if mv.Kind == MovePass {
		return m.Pass(mv.Seat)
	}
	return m.Play(mv.Seat, mv.Cards)
}

func (m *Match) checkActor(seat int) error {
	if m.state == Terminal {
		return apperrors.ErrMatchAlreadyTerminal
	}
	if seat < 0 || seat >= card.Seats {
		return apperrors.ErrSeatOutOfRange
	}
	if seat != m.turn {
		return apperrors.ErrWrongTurn
	}
	return nil
}

func (m *Match) finish(winner int) {
	m.state = Terminal
	m.winner = winner
	result := settle.Compute(m.teams, winner, m.plays, m.multiplier, m.opts.BaseScore)
	m.result = &result
}

// State 当前状态
func (m *Match) State() State { return m.state }

// Turn 当前该出牌的座位
func (m *Match) Turn() int { return m.turn }

// Options 创建时的配置
func (m *Match) Options() Options { return m.opts }

// Teams 由发牌推断出的队伍
func (m *Match) Teams() settle.Teams { return m.teams }

// Multiplier 炸弹累积的倍数（不含春天）
func (m *Match) Multiplier() int { return m.multiplier }

// Plays 每个座位的出牌次数（不含过）
func (m *Match) Plays() [card.Seats]int { return m.plays }

// IsTerminal 是否已经结束
func (m *Match) IsTerminal() bool { return m.state == Terminal }

// Winner 最先出完牌的座位
func (m *Match) Winner() (int, bool) {
	return m.winner, m.state == Terminal
}

// Settlement 终局结算，未结束时返回 ErrMatchNotTerminal
func (m *Match) Settlement() (settle.Settlement, error) {
	if m.result == nil {
		return settle.Settlement{}, apperrors.ErrMatchNotTerminal
	}
	s := *m.result
	s.Winners = slices.Clone(s.Winners)
	return s, nil
}

// Lead 当前桌面上最大的一手，自由出牌时返回 false
func (m *Match) Lead() (Move, bool) {
	if m.lead < 0 {
		return Move{}, false
	}
	return m.moves[m.lead].clone(), true
}

// LeadHand 当前最大一手的牌型
func (m *Match) LeadHand() rule.ParsedHand { return m.leadHand }

// Hand 某个座位的手牌副本
func (m *Match) Hand(seat int) []card.Card {
	if seat < 0 || seat >= card.Seats {
		return nil
	}
	return slices.Clone(m.hands[seat])
}

// DealtHand 某个座位最初发到的牌
func (m *Match) DealtHand(seat int) []card.Card {
	if seat < 0 || seat >= card.Seats {
		return nil
	}
	return slices.Clone(m.dealt[seat])
}

// HandSizes 每个座位剩余的牌数
func (m *Match) HandSizes() [card.Seats]int {
	var sizes [card.Seats]int
	for seat, hand := range m.hands {
		sizes[seat] = len(hand)
	}
	return sizes
}

// Moves 全部出牌记录的副本
func (m *Match) Moves() []Move {
	moves := make([]Move, len(m.moves))
	for i, mv := range m.moves {
		moves[i] = mv.clone()
	}
	return moves
}

// SeatOf 玩家 ID 对应的座位
func (m *Match) SeatOf(playerID string) (int, bool) {
	for seat, id := range m.Seats {
		if id == playerID {
			return seat, true
		}
	}
	return -1, false
}

// Clone 深拷贝，用于先在副本上执行操作
func (m *Match) Clone() *Match {
	c := *m
	for seat := range card.Seats {
		c.dealt[seat] = slices.Clone(m.dealt[seat])
		c.hands[seat] = slices.Clone(m.hands[seat])
	}
	if m.moves != nil {
		c.moves = m.Moves()
	}
	c.leadHand.Cards = slices.Clone(m.leadHand.Cards)
	if m.result != nil {
		r := *m.result
		r.Winners = slices.Clone(r.Winners)
		c.result = &r
	}
	return &c
}

// Replay 从发牌和出牌记录重建一局，用于观察者恢复状态
func Replay(id string, seats [card.Seats]string, hands [card.Seats][]card.Card, opts Options, moves []Move) (*Match, error) {
	m, err := New(id, seats, hands, opts)
	if err != nil {
		return nil, err
	}
	for i, mv := range moves {
		if _, err := m.Apply(mv); err != nil {
			return nil, fmt.Errorf("重放第 %d 手失败: %w", i, err)
		}
	}
	return m, nil
}
