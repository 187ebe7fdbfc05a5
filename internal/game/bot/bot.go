// Package bot 托管座位的出牌选择。只使用本座位能看到的信息
package bot

import (
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/match"
	"github.com/palemoky/wudi/internal/game/rule"
)

// Choose 为 view.Seat 选择这一手要出的牌，返回 nil 表示过。
// 返回的牌一定能通过出牌校验；不该自己出牌时返回 nil
func Choose(view match.View) []card.Card {
	if !view.MyTurn() || len(view.Hand) == 0 {
		return nil
	}
	pc := view.PlayContext()

	for _, candidate := range candidates(view, pc) {
		if _, err := rule.ValidatePlay(candidate, pc); err == nil {
			return candidate
		}
	}

	if view.CanPass() {
		return nil
	}
	return smallest(view.Hand)
}

func candidates(view match.View, pc rule.PlayContext) [][]card.Card {
	hand := view.Hand

	// 首出：有两三张3就一起出，否则只出黑桃3
	if pc.OpeningLead && pc.HoldsSpade3 {
		threes := cardsOfRank(hand, card.Rank3)
		if len(threes) >= 2 && len(threes) <= 3 {
			return [][]card.Card{threes, {card.Spade3}}
		}
		return [][]card.Card{{card.Spade3}}
	}

	// 自由出牌：一手能出完就全出，否则出最小的单张
	if pc.Lead.IsEmpty() {
		return [][]card.Card{hand, smallest(hand)}
	}

	// 整手牌都压不过就直接过
	if !rule.CanBeatWithHand(hand, pc.Lead) {
		return nil
	}
	if beat := rule.FindSmallestBeatingCards(hand, pc.Lead); beat != nil {
		return [][]card.Card{beat}
	}
	return nil
}

func smallest(hand []card.Card) []card.Card {
	sorted := card.Sorted(hand)
	return []card.Card{sorted[len(sorted)-1]}
}

func cardsOfRank(hand []card.Card, rank card.Rank) []card.Card {
	var result []card.Card
	for _, c := range hand {
		if c.Rank == rank {
			result = append(result, c)
		}
	}
	return result
}
