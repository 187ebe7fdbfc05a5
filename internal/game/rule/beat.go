package rule

import (
	"slices"

	"github.com/palemoky/wudi/internal/game/card"
)

// CanBeat 判断 newHand 是否能大过 lastHand
func CanBeat(newHand, lastHand ParsedHand) bool {
	if newHand.IsEmpty() {
		return false
	}
	if lastHand.IsEmpty() {
		return true
	}

	// 无敌最大，也没有牌能大过无敌
	if newHand.Type == InvincibleBomb {
		return true
	}
	if lastHand.Type == InvincibleBomb {
		return false
	}

	// 炸弹可以大过任何非炸弹的牌
	if newHand.Type == Bomb && lastHand.Type != Bomb {
		return true
	}
	if newHand.Type != Bomb && lastHand.Type == Bomb {
		return false
	}

	// 同牌型同张数比关键点数（含炸弹盖炸弹）
	if newHand.Type == lastHand.Type && newHand.Length == lastHand.Length {
		return newHand.KeyRank > lastHand.KeyRank
	}

	// 三带一和三带二只比三张的点数
	if newHand.Type.isTrioWing() && lastHand.Type.isTrioWing() {
		return newHand.KeyRank > lastHand.KeyRank
	}

	return false
}

// CanBeatWithHand 检查一个玩家的整手牌中是否存在任何可以打过 opponentHand 的组合
func CanBeatWithHand(playerHand []card.Card, opponentHand ParsedHand) bool {
	// 1. 如果是新一轮，总是有牌可出
	if opponentHand.IsEmpty() {
		return len(playerHand) > 0
	}

	analysis := analyzeCards(playerHand)

	// 2. 检查是否有炸弹或无敌
	if hasWinningBomb(playerHand, analysis, opponentHand) {
		return true
	}

	switch opponentHand.Type {
	case Single:
		return findWinningSingle(analysis, opponentHand)
	case Pair:
		return findWinningPair(analysis, opponentHand)
	case Trio:
		return findWinningTrio(analysis, opponentHand)
	case TrioWithTwo, TrioWithOne:
		return findWinningTrioWing(analysis, opponentHand)
	case Straight:
		return findWinningRun(analysis, opponentHand, 1)
	case PairStraight:
		return findWinningRun(analysis, opponentHand, 2)
	case Plane:
		return findWinningPlane(analysis, opponentHand, 0)
	case PlaneWithWings:
		return findWinningPlane(analysis, opponentHand, 2)
	}
	return false
}

// hasWinningBomb checks for any bomb or the invincible pair that can beat the opponent's hand.
func hasWinningBomb(playerHand []card.Card, analysis HandAnalysis, opponentHand ParsedHand) bool {
	if opponentHand.Type == InvincibleBomb {
		return false
	}
	if card.Has(playerHand, card.Heart2) && card.Has(playerHand, card.Diamond2) {
		return true
	}
	for _, r := range analysis.fours {
		if opponentHand.Type != Bomb || r > opponentHand.KeyRank {
			return true
		}
	}
	return false
}

// findWinningSingle checks for any single card that can win.
func findWinningSingle(analysis HandAnalysis, opponentHand ParsedHand) bool {
	for r := range analysis.counts {
		if r > opponentHand.KeyRank {
			return true
		}
	}
	return false
}

// findWinningPair checks for any pair that can win.
func findWinningPair(analysis HandAnalysis, opponentHand ParsedHand) bool {
	for r, count := range analysis.counts {
		if count >= 2 && r > opponentHand.KeyRank {
			return true
		}
	}
	return false
}

// findWinningTrio checks for a bare trio that can win.
func findWinningTrio(analysis HandAnalysis, opponentHand ParsedHand) bool {
	for r, count := range analysis.counts {
		if count >= 3 && r > opponentHand.KeyRank {
			return true
		}
	}
	return false
}

// findWinningTrioWing checks the trio+wing family. A higher trio wins with two
// wing cards of other ranks, or with exactly one when it empties the hand.
func findWinningTrioWing(analysis HandAnalysis, opponentHand ParsedHand) bool {
	for r, count := range analysis.counts {
		if count < 3 || r <= opponentHand.KeyRank {
			continue
		}
		others := analysis.total - count
		if others >= 2 {
			return true
		}
		if count == 3 && analysis.total == 4 {
			return true
		}
	}
	return false
}

// findWinningRun checks for a straight (width 1) or pair straight (width 2)
// of the same card count with a higher lowest rank.
func findWinningRun(analysis HandAnalysis, opponentHand ParsedHand, width int) bool {
	length := opponentHand.Length / width

	var ranks []card.Rank
	for r, count := range analysis.counts {
		if count >= width && r < card.Rank2 {
			ranks = append(ranks, r)
		}
	}
	slices.Sort(ranks)

	for i := 0; i+length <= len(ranks); i++ {
		if ranks[i] > opponentHand.KeyRank && isContinuous(ranks[i:i+length]) {
			return true
		}
	}
	return false
}

// findWinningPlane checks for a winning plane with or without wings.
func findWinningPlane(analysis HandAnalysis, opponentHand ParsedHand, wingsPerTrio int) bool {
	length := opponentHand.Length / (3 + wingsPerTrio)
	trioRanks := analysis.planeRanks()

	for i := 0; i+length <= len(trioRanks); i++ {
		if trioRanks[i] <= opponentHand.KeyRank || !isContinuous(trioRanks[i:i+length]) {
			continue
		}
		if analysis.total-length*3 >= length*wingsPerTrio {
			return true
		}
	}
	return false
}
