package match

import (
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/rule"
)

// View 某个座位能看到的信息：自己的手牌和公开信息，不含别人的手牌
type View struct {
	MatchID     string
	Seat        int
	Hand        []card.Card
	HandSizes   [card.Seats]int
	State       State
	Turn        int
	Lead        rule.ParsedHand
	LeadSeat    int  // -1 表示自由出牌
	OpeningLead bool // 这一手是本局第一手，且要求包含黑桃3
	Moves       []Move
	Multiplier  int
}

// View 返回 seat 视角的牌局
func (m *Match) View(seat int) View {
	v := View{
		MatchID:     m.ID,
		Seat:        seat,
		Hand:        m.Hand(seat),
		HandSizes:   m.HandSizes(),
		State:       m.state,
		Turn:        m.turn,
		Lead:        m.leadHand,
		LeadSeat:    -1,
		OpeningLead: m.opts.RequireSpade3Opening && len(m.moves) == 0,
		Moves:       m.Moves(),
		Multiplier:  m.multiplier,
	}
	if lead, ok := m.Lead(); ok {
		v.LeadSeat = lead.Seat
		v.Lead = lead.Pattern()
	}
	return v
}

// MyTurn 是否轮到自己
func (v View) MyTurn() bool {
	return v.State != Terminal && v.Turn == v.Seat
}

// CanPass 当前是否允许过牌
func (v View) CanPass() bool {
	return v.MyTurn() && v.State == AwaitingResponse && v.LeadSeat != v.Seat
}

// PlayContext 按当前视角构造出牌校验的上下文
func (v View) PlayContext() rule.PlayContext {
	return rule.PlayContext{
		HandSize:    len(v.Hand),
		Lead:        v.Lead,
		OpeningLead: v.OpeningLead,
		HoldsSpade3: card.Has(v.Hand, card.Spade3),
	}
}
