package rule

import (
	"fmt"
	"slices"

	"github.com/palemoky/wudi/internal/apperrors"
	"github.com/palemoky/wudi/internal/game/card"
)

// HandType 定义牌型
type HandType int

const (
	Invalid     HandType = iota
	Single               // 单张
	Pair                 // 对子
	Trio                 // 三张不带
	TrioWithTwo          // 三带二（两张可以是对子也可以是两张单牌）
	TrioWithOne          // 三带一（只能作为最后四张打出）

	Straight       // 顺子（5张或以上连续单张）
	PairStraight   // 连对（2对或以上）
	Plane          // 飞机不带翅膀（2个或以上连续三张）
	PlaneWithWings // 飞机带翅膀（每个三张带两张任意牌）

	Bomb           // 炸弹（四张相同）
	InvincibleBomb // 无敌（红桃2 + 方块2）
)

// InvincibleRank 无敌的比较值，高于任何点数
const InvincibleRank card.Rank = 999

// handTypeNames 牌型名称映射表
var handTypeNames = map[HandType]string{
	Single:         "单张",
	Pair:           "对子",
	Trio:           "三张",
	TrioWithTwo:    "三带二",
	TrioWithOne:    "三带一",
	Straight:       "顺子",
	PairStraight:   "连对",
	Plane:          "飞机",
	PlaneWithWings: "飞机带翅膀",
	Bomb:           "炸弹",
	InvincibleBomb: "无敌",
}

// handTypeKeys 稳定的英文标识，用于存储和日志
var handTypeKeys = map[HandType]string{
	Single:         "single",
	Pair:           "pair",
	Trio:           "triple",
	TrioWithTwo:    "triple_with_two",
	TrioWithOne:    "triple_with_one",
	Straight:       "sequence",
	PairStraight:   "pair_sequence",
	Plane:          "plane",
	PlaneWithWings: "plane_with_wings",
	Bomb:           "bomb",
	InvincibleBomb: "invincible_bomb",
}

func (h HandType) String() string {
	if name, ok := handTypeNames[h]; ok {
		return name
	}
	return "无效"
}

// Key 返回牌型的英文标识
func (h HandType) Key() string {
	if key, ok := handTypeKeys[h]; ok {
		return key
	}
	return "invalid"
}

// IsBomb 炸弹或无敌
func (h HandType) IsBomb() bool {
	return h == Bomb || h == InvincibleBomb
}

// isTrioWing 三带一和三带二属于同一族，可以互相压
func (h HandType) isTrioWing() bool {
	return h == TrioWithOne || h == TrioWithTwo
}

// ParsedHand 解析后的手牌，用于比较
type ParsedHand struct {
	Type    HandType
	KeyRank card.Rank   // 决定大小的关键牌的点数 (例如 33345 中的 3, 或 34567 中的 3)
	Length  int         // 牌数
	Cards   []card.Card // 这手牌包含的卡牌
}

func (p ParsedHand) IsEmpty() bool {
	return p.Type == Invalid
}

func (p ParsedHand) String() string {
	if p.IsEmpty() {
		return "无"
	}
	return fmt.Sprintf("%s(%s)", p.Type, card.FormatCards(card.Sorted(p.Cards)))
}

// HandAnalysis 对一手牌进行预分析，统计不同点数的牌出现了几次
type HandAnalysis struct {
	counts map[card.Rank]int // 每种点数牌的数量
	total  int
	// 为了方便，提前将不同数量的牌分组
	fours []card.Rank
	trios []card.Rank
	pairs []card.Rank
	ones  []card.Rank
}

// analyzeCards 分析手牌，返回一个包含所有统计信息的结构
func analyzeCards(cards []card.Card) HandAnalysis {
	analysis := HandAnalysis{
		counts: make(map[card.Rank]int),
		total:  len(cards),
	}
	for _, c := range cards {
		analysis.counts[c.Rank]++
	}

	for r, count := range analysis.counts {
		switch count {
		case 4:
			analysis.fours = append(analysis.fours, r)
		case 3:
			analysis.trios = append(analysis.trios, r)
		case 2:
			analysis.pairs = append(analysis.pairs, r)
		case 1:
			analysis.ones = append(analysis.ones, r)
		}
	}

	// 对结果进行排序，方便后续判断连续性
	slices.Sort(analysis.fours)
	slices.Sort(analysis.trios)
	slices.Sort(analysis.pairs)
	slices.Sort(analysis.ones)

	return analysis
}

// planeRanks 数量不少于 3 且不是 2 的点数（升序），飞机只能由它们组成
func (a HandAnalysis) planeRanks() []card.Rank {
	var ranks []card.Rank
	for r, count := range a.counts {
		if count >= 3 && r < card.Rank2 {
			ranks = append(ranks, r)
		}
	}
	slices.Sort(ranks)
	return ranks
}

// isContinuous 检查给定的点数切片是否连续，并且不能包含 2
func isContinuous(ranks []card.Rank) bool {
	if len(ranks) == 0 {
		return false
	}
	for i, r := range ranks {
		if r >= card.Rank2 { // 顺子、连对、飞机不能包含2
			return false
		}
		if i > 0 && ranks[i-1]+1 != r {
			return false
		}
	}
	return true
}

type handCheck func(HandAnalysis, []card.Card) (ParsedHand, bool)

// checks 按优先级排列，先匹配者生效。带特殊比较值的牌型必须排在只看张数的牌型之前
var checks = []handCheck{
	isInvincibleBomb, // 无敌
	isBomb,           // 炸弹
	isSingle,         // 单张
	isPair,           // 对子
	isTrio,           // 三张
	isTrioWithTwo,    // 三带二
	isTrioWithOne,    // 三带一
	isStraight,       // 顺子
	isPairStraight,   // 连对
	isPlane,          // 飞机
	isPlaneWithWings, // 飞机带翅膀
}

// ParseHand 解析牌型
func ParseHand(cards []card.Card) (ParsedHand, error) {
	if len(cards) == 0 {
		return ParsedHand{}, fmt.Errorf("%w: 不能出空牌", apperrors.ErrInvalidShape)
	}

	analysis := analyzeCards(cards)
	for _, check := range checks {
		if hand, ok := check(analysis, cards); ok {
			hand.Length = len(cards)
			hand.Cards = slices.Clone(cards)
			return hand, nil
		}
	}

	return ParsedHand{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidShape, card.FormatCards(cards))
}

func isInvincibleBomb(_ HandAnalysis, cards []card.Card) (ParsedHand, bool) {
	if len(cards) == 2 && card.Has(cards, card.Heart2) && card.Has(cards, card.Diamond2) {
		return ParsedHand{Type: InvincibleBomb, KeyRank: InvincibleRank}, true
	}
	return ParsedHand{}, false
}

func isBomb(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total == 4 && len(a.fours) == 1 {
		return ParsedHand{Type: Bomb, KeyRank: a.fours[0]}, true
	}
	return ParsedHand{}, false
}

func isSingle(a HandAnalysis, cards []card.Card) (ParsedHand, bool) {
	if a.total == 1 {
		return ParsedHand{Type: Single, KeyRank: cards[0].Rank}, true
	}
	return ParsedHand{}, false
}

func isPair(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total == 2 && len(a.pairs) == 1 {
		return ParsedHand{Type: Pair, KeyRank: a.pairs[0]}, true
	}
	return ParsedHand{}, false
}

func isTrio(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total == 3 && len(a.trios) == 1 {
		return ParsedHand{Type: Trio, KeyRank: a.trios[0]}, true
	}
	return ParsedHand{}, false
}

// isTrioWithTwo 5 张牌中恰好有一个点数是 3 张，其余两张随意
func isTrioWithTwo(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total == 5 && len(a.trios) == 1 {
		return ParsedHand{Type: TrioWithTwo, KeyRank: a.trios[0]}, true
	}
	return ParsedHand{}, false
}

// isTrioWithOne 只做结构判断，能否出由 ValidatePlay 根据剩余手牌决定
func isTrioWithOne(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total == 4 && len(a.trios) == 1 && len(a.ones) == 1 {
		return ParsedHand{Type: TrioWithOne, KeyRank: a.trios[0]}, true
	}
	return ParsedHand{}, false
}

func isStraight(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total >= 5 && len(a.ones) == a.total && isContinuous(a.ones) {
		return ParsedHand{Type: Straight, KeyRank: a.ones[0]}, true
	}
	return ParsedHand{}, false
}

// isPairStraight 每个点数恰好两张，四张相同不能拆成两对
func isPairStraight(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if a.total >= 4 && a.total%2 == 0 && len(a.pairs)*2 == a.total && isContinuous(a.pairs) {
		return ParsedHand{Type: PairStraight, KeyRank: a.pairs[0]}, true
	}
	return ParsedHand{}, false
}

func isPlane(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if key, ok := findPlaneBody(a, 0); ok {
		return ParsedHand{Type: Plane, KeyRank: key}, true
	}
	return ParsedHand{}, false
}

func isPlaneWithWings(a HandAnalysis, _ []card.Card) (ParsedHand, bool) {
	if key, ok := findPlaneBody(a, 2); ok {
		return ParsedHand{Type: PlaneWithWings, KeyRank: key}, true
	}
	return ParsedHand{}, false
}

// findPlaneBody 寻找一段连续三张，使总牌数恰好等于 段长*(3+wingsPerTrio)。
// 段越长越优先，同样长度取最大的一段；返回这段中最小的点数。
func findPlaneBody(a HandAnalysis, wingsPerTrio int) (card.Rank, bool) {
	ranks := a.planeRanks()
	for length := len(ranks); length >= 2; length-- {
		if a.total != length*(3+wingsPerTrio) {
			continue
		}
		for start := len(ranks) - length; start >= 0; start-- {
			if isContinuous(ranks[start : start+length]) {
				return ranks[start], true
			}
		}
	}
	return 0, false
}
