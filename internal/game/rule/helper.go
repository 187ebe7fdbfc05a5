package rule

import (
	"github.com/palemoky/wudi/internal/game/card"
)

// FindSmallestBeatingCards 找到能打过 opponentHand 的最小牌组
// 如果找不到，返回 nil
func FindSmallestBeatingCards(playerHand []card.Card, opponentHand ParsedHand) []card.Card {
	// 如果是新一轮，出最小的单牌
	if opponentHand.IsEmpty() {
		if len(playerHand) > 0 {
			sorted := card.Sorted(playerHand)
			return []card.Card{sorted[len(sorted)-1]}
		}
		return nil
	}

	hand := card.Sorted(playerHand)
	analysis := analyzeCards(hand)

	// 优先尝试找同类型的最小牌
	var result []card.Card

	switch opponentHand.Type {
	case Single:
		result = findSmallestBeatingSingle(hand, analysis, opponentHand)
	case Pair:
		result = findSmallestBeatingPair(hand, analysis, opponentHand)
	case Trio:
		result = findSmallestBeatingTrio(hand, analysis, opponentHand)
	case TrioWithTwo, TrioWithOne:
		result = findSmallestBeatingTrioWing(hand, analysis, opponentHand)
	case Straight:
		result = findSmallestBeatingRun(hand, analysis, opponentHand, 1)
	case PairStraight:
		result = findSmallestBeatingRun(hand, analysis, opponentHand, 2)
	case Plane:
		result = findSmallestBeatingPlane(hand, analysis, opponentHand, 0)
	case PlaneWithWings:
		result = findSmallestBeatingPlane(hand, analysis, opponentHand, 2)
	case InvincibleBomb:
		return nil
	}

	// 如果找到了同类型的牌，返回
	if result != nil {
		return result
	}

	// 否则尝试用最小的炸弹
	result = findSmallestBomb(hand, analysis, opponentHand)
	if result != nil {
		return result
	}

	// 最后才用无敌
	if card.Has(hand, card.Heart2) && card.Has(hand, card.Diamond2) {
		return []card.Card{card.Heart2, card.Diamond2}
	}

	return nil
}

// findSmallestBeatingSingle 找到能打过的最小单牌，尽量不拆对子和三张
func findSmallestBeatingSingle(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand) []card.Card {
	for _, group := range [][]card.Rank{analysis.ones, analysis.pairs, analysis.trios, analysis.fours} {
		for _, r := range group {
			if r > opponentHand.KeyRank {
				return findCardsWithRank(playerHand, r, 1)
			}
		}
	}
	return nil
}

// findSmallestBeatingPair 找到能打过的最小对子
func findSmallestBeatingPair(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand) []card.Card {
	for _, group := range [][]card.Rank{analysis.pairs, analysis.trios, analysis.fours} {
		for _, r := range group {
			if r > opponentHand.KeyRank {
				return findCardsWithRank(playerHand, r, 2)
			}
		}
	}
	return nil
}

// findSmallestBeatingTrio 找到能打过的最小三张（不带）
func findSmallestBeatingTrio(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand) []card.Card {
	for _, group := range [][]card.Rank{analysis.trios, analysis.fours} {
		for _, r := range group {
			if r > opponentHand.KeyRank {
				return findCardsWithRank(playerHand, r, 3)
			}
		}
	}
	return nil
}

// findSmallestBeatingTrioWing 三带二或三带一；三带一只在正好剩四张时使用
func findSmallestBeatingTrioWing(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand) []card.Card {
	for _, group := range [][]card.Rank{analysis.trios, analysis.fours} {
		for _, r := range group {
			if r <= opponentHand.KeyRank {
				continue
			}
			result := findCardsWithRank(playerHand, r, 3)
			exclude := map[card.Rank]bool{r: true}
			if kickers := findSmallestKickers(playerHand, analysis, exclude, 2); kickers != nil {
				return append(result, kickers...)
			}
			if analysis.total == 4 && analysis.counts[r] == 3 {
				return append(result, findSmallestKickers(playerHand, analysis, exclude, 1)...)
			}
		}
	}
	return nil
}

// findSmallestBeatingRun 找到能打过的最小顺子 (width=1) 或连对 (width=2)
func findSmallestBeatingRun(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand, width int) []card.Card {
	length := opponentHand.Length / width

	var ranks []card.Rank
	for r := card.Rank3; r < card.Rank2; r++ {
		if analysis.counts[r] >= width {
			ranks = append(ranks, r)
		}
	}

	for i := 0; i+length <= len(ranks); i++ {
		if ranks[i] <= opponentHand.KeyRank || !isContinuous(ranks[i:i+length]) {
			continue
		}
		var result []card.Card
		for _, r := range ranks[i : i+length] {
			result = append(result, findCardsWithRank(playerHand, r, width)...)
		}
		return result
	}
	return nil
}

// findSmallestBeatingPlane 找到能打过的最小飞机，wingsPerTrio 为每个三张带的牌数
func findSmallestBeatingPlane(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand, wingsPerTrio int) []card.Card {
	length := opponentHand.Length / (3 + wingsPerTrio)
	trioRanks := analysis.planeRanks()

	for i := 0; i+length <= len(trioRanks); i++ {
		body := trioRanks[i : i+length]
		if body[0] <= opponentHand.KeyRank || !isContinuous(body) {
			continue
		}
		var result []card.Card
		exclude := make(map[card.Rank]bool, length)
		for _, r := range body {
			result = append(result, findCardsWithRank(playerHand, r, 3)...)
			exclude[r] = true
		}
		if wingsPerTrio == 0 {
			return result
		}
		if kickers := findSmallestKickers(playerHand, analysis, exclude, length*wingsPerTrio); kickers != nil {
			return append(result, kickers...)
		}
	}
	return nil
}

// findSmallestBomb 找到最小的炸弹
func findSmallestBomb(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand) []card.Card {
	for _, r := range analysis.fours {
		if opponentHand.Type != Bomb || r > opponentHand.KeyRank {
			return findCardsWithRank(playerHand, r, 4)
		}
	}
	return nil
}

// findSmallestKickers 从不在 exclude 中的点数里取 needed 张最小的带牌，
// 先取单牌，再拆对子、三张、炸弹
func findSmallestKickers(playerHand []card.Card, analysis HandAnalysis, exclude map[card.Rank]bool, needed int) []card.Card {
	var kickers []card.Card

	for _, group := range [][]card.Rank{analysis.ones, analysis.pairs, analysis.trios, analysis.fours} {
		for _, r := range group {
			if exclude[r] {
				continue
			}
			kickers = append(kickers, findCardsWithRank(playerHand, r, needed-len(kickers))...)
			if len(kickers) >= needed {
				return kickers
			}
		}
	}
	return nil
}

// findCardsWithRank 从手牌中找到指定点数的牌
func findCardsWithRank(playerHand []card.Card, rank card.Rank, count int) []card.Card {
	var result []card.Card
	for _, c := range playerHand {
		if c.Rank == rank {
			result = append(result, c)
			if len(result) >= count {
				return result
			}
		}
	}
	return result
}
