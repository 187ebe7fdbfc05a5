package rule

import (
	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
)

// PlayContext 出牌时的上下文
type PlayContext struct {
	HandSize    int        // 出牌前剩余手牌数
	Lead        ParsedHand // 当前桌面上最大的牌，空表示自由出牌
	OpeningLead bool       // 本局第一手（且启用了黑桃3首出规则）
	HoldsSpade3 bool       // 出牌者手中有黑桃3
}

// ValidatePlay 按顺序校验一次出牌，返回解析后的牌型。
// 返回的错误都是 apperrors 中的哨兵错误，可以直接用 errors.Is 判断。
func ValidatePlay(cards []card.Card, pc PlayContext) (ParsedHand, error) {
	if len(cards) == 0 {
		return ParsedHand{}, apperrors.ErrInvalidShape
	}

	if pc.OpeningLead && pc.HoldsSpade3 && !card.Has(cards, card.Spade3) {
		return ParsedHand{}, apperrors.ErrOpeningLeadMissingRequiredCard
	}

	hand, err := ParseHand(cards)
	if err != nil {
		return ParsedHand{}, apperrors.ErrInvalidShape
	}

	if hand.Type == TrioWithOne && pc.HandSize != 4 {
		return ParsedHand{}, apperrors.ErrWingSizeMismatch
	}

	if pc.Lead.IsEmpty() {
		return hand, nil
	}

	if !CanBeat(hand, pc.Lead) {
		return ParsedHand{}, apperrors.ErrIllegalBeat
	}
	return hand, nil
}
