package match

import (
	"slices"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/rule"
)

// MoveKind 出牌或过牌
type MoveKind int

const (
	MovePlay MoveKind = iota
	MovePass
)

func (k MoveKind) String() string {
	if k == MovePass {
		return "pass"
	}
	return "play"
}

// Move 牌局记录中的一手，创建后不再修改
type Move struct {
	Seq   int         `json:"seq"`
	Seat  int         `json:"seat"`
	Kind  MoveKind    `json:"kind"`
	Cards []card.Card `json:"cards,omitempty"`
}

// IsPass 是否是过牌
func (m Move) IsPass() bool {
	return m.Kind == MovePass
}

// Pattern 重新计算这手牌的牌型，过牌返回空牌型
func (m Move) Pattern() rule.ParsedHand {
	if m.IsPass() {
		return rule.ParsedHand{}
	}
	hand, err := rule.ParseHand(m.Cards)
	if err != nil {
		return rule.ParsedHand{}
	}
	return hand
}

// TypeKey 用于存储的出牌类型，如 "pass"、"bomb"、"sequence"
func (m Move) TypeKey() string {
	if m.IsPass() {
		return MovePass.String()
	}
	return m.Pattern().Type.Key()
}

func (m Move) clone() Move {
	m.Cards = slices.Clone(m.Cards)
	return m
}
