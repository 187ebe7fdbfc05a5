// Package settle 结算：组队判定、春天判定、倍数和每个座位的得分
package settle

import (
	"fmt"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
)

// Mode 对局模式
type Mode int

const (
	// TeamMode 红桃2和方块2在两个人手里，两人一队（2v2）
	TeamMode Mode = iota
	// InvincibleMode 红桃2和方块2在同一个人手里，无敌一打三（1v3）
	InvincibleMode
)

func (m Mode) String() string {
	if m == InvincibleMode {
		return "1v3"
	}
	return "2v2"
}

// Teams 由发牌结果推断出的队伍
type Teams struct {
	Mode          Mode
	Invincible    int // 无敌座位，TeamMode 下为 -1
	Heart2Owner   int
	Diamond2Owner int
	side          [card.Seats]int // 同值为队友；InvincibleMode 下无敌为 1，其余为 0
}

// InferTeams 根据红桃2和方块2的归属推断队伍
func InferTeams(hands [card.Seats][]card.Card) (Teams, error) {
	t := Teams{Invincible: -1, Heart2Owner: -1, Diamond2Owner: -1}
	for seat, hand := range hands {
		if card.Has(hand, card.Heart2) {
			t.Heart2Owner = seat
		}
		if card.Has(hand, card.Diamond2) {
			t.Diamond2Owner = seat
		}
	}
	if t.Heart2Owner < 0 || t.Diamond2Owner < 0 {
		return Teams{}, fmt.Errorf("%w: 找不到红桃2或方块2", apperrors.ErrInvalidDeal)
	}

	if t.Heart2Owner == t.Diamond2Owner {
		t.Mode = InvincibleMode
		t.Invincible = t.Heart2Owner
		t.side[t.Invincible] = 1
		return t, nil
	}

	t.Mode = TeamMode
	t.side[t.Heart2Owner] = 1
	t.side[t.Diamond2Owner] = 1
	return t, nil
}

// SameTeam 两个座位是否同队
func (t Teams) SameTeam(a, b int) bool {
	return t.side[a] == t.side[b]
}

// IsInvincible 该座位是否是一打三的无敌
func (t Teams) IsInvincible(seat int) bool {
	return t.Mode == InvincibleMode && seat == t.Invincible
}

// Members 与 seat 同队的所有座位（含自己），按座位号升序
func (t Teams) Members(seat int) []int {
	var seats []int
	for s := range card.Seats {
		if t.SameTeam(s, seat) {
			seats = append(seats, s)
		}
	}
	return seats
}

// Opponents 与 seat 不同队的所有座位
func (t Teams) Opponents(seat int) []int {
	var seats []int
	for s := range card.Seats {
		if !t.SameTeam(s, seat) {
			seats = append(seats, s)
		}
	}
	return seats
}

// Settlement 一局的结算结果
type Settlement struct {
	Mode           Mode            `json:"mode"`
	Winner         int             `json:"winner"`  // 最先出完牌的座位
	Winners        []int           `json:"winners"` // 获胜一方的所有座位
	Spring         bool            `json:"spring"`
	BombMultiplier int             `json:"bomb_multiplier"` // 春天翻倍前的倍数
	Multiplier     int             `json:"multiplier"`
	BaseScore      int             `json:"base_score"`
	Score          int             `json:"score"` // 底分 × 倍数
	Deltas         [card.Seats]int `json:"deltas"`
}

// Won 该座位是否属于获胜一方
func (s Settlement) Won(seat int) bool {
	return s.Deltas[seat] > 0
}

// Compute 计算结算。plays 是每个座位的出牌次数（不含过），
// multiplier 是炸弹累积的倍数
func Compute(teams Teams, winner int, plays [card.Seats]int, multiplier, baseScore int) Settlement {
	if multiplier < 1 {
		multiplier = 1
	}
	if baseScore < 1 {
		baseScore = 1
	}

	s := Settlement{
		Mode:           teams.Mode,
		Winner:         winner,
		Winners:        teams.Members(winner),
		BombMultiplier: multiplier,
		BaseScore:      baseScore,
	}

	s.Spring = isSpring(teams, winner, plays)
	s.Multiplier = multiplier
	if s.Spring {
		s.Multiplier *= 2
	}
	s.Score = baseScore * s.Multiplier

	switch teams.Mode {
	case InvincibleMode:
		sign := -1
		if teams.IsInvincible(winner) {
			sign = 1
		}
		for seat := range card.Seats {
			if teams.IsInvincible(seat) {
				s.Deltas[seat] = sign * 3 * s.Score
			} else {
				s.Deltas[seat] = -sign * s.Score
			}
		}
	default:
		for seat := range card.Seats {
			if teams.SameTeam(seat, winner) {
				s.Deltas[seat] = s.Score
			} else {
				s.Deltas[seat] = -s.Score
			}
		}
	}
	return s
}

func isSpring(teams Teams, winner int, plays [card.Seats]int) bool {
	if teams.Mode == InvincibleMode && !teams.IsInvincible(winner) {
		// 农民赢：无敌只出过一手（反春）
		return plays[teams.Invincible] == 1
	}
	// 无敌赢或 2v2：输的一方一张牌都没出过
	for _, seat := range teams.Opponents(winner) {
		if plays[seat] != 0 {
			return false
		}
	}
	return true
}
