package card

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// charToRank 用于快速查找字符对应的 Rank
var charToRank = map[rune]Rank{
	'3': Rank3,
	'4': Rank4,
	'5': Rank5,
	'6': Rank6,
	'7': Rank7,
	'8': Rank8,
	'9': Rank9,
	'T': Rank10,
	'J': RankJ,
	'Q': RankQ,
	'K': RankK,
	'A': RankA,
	'2': Rank2,
}

// charToSuit 花色字母或符号
var charToSuit = map[rune]Suit{
	'S': Spade,
	'H': Heart,
	'C': Club,
	'D': Diamond,
	'♠': Spade,
	'♥': Heart,
	'♣': Club,
	'♦': Diamond,
}

// RankFromChar 解析单个点数字符，10 用 T 表示
func RankFromChar(char rune) (Rank, error) {
	if rank, ok := charToRank[char]; ok {
		return rank, nil
	}
	return -1, fmt.Errorf("无法识别的点数: %c", char)
}

// ParseCard 解析一张牌，如 "3S"、"10H"、"TH"、"2♦"
func ParseCard(s string) (Card, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	raw = strings.ReplaceAll(raw, "10", "T")
	runes := []rune(raw)
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("无法识别的牌: %q", s)
	}
	rank, err := RankFromChar(runes[0])
	if err != nil {
		return Card{}, err
	}
	suit, ok := charToSuit[runes[1]]
	if !ok {
		return Card{}, fmt.Errorf("无法识别的花色: %q", s)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards 解析以空格或逗号分隔的一组牌
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards 同 ParseCards，解析失败时 panic，仅用于测试和常量
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// ErrDuplicateCard 同一组牌中出现重复的牌
var ErrDuplicateCard = errors.New("牌组中有重复的牌")

// ContainsAll 检查 cards 中的每一张牌都在 hand 中，且 cards 自身没有重复
func ContainsAll(hand, cards []Card) error {
	seen := make(map[Card]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c]; dup {
			return ErrDuplicateCard
		}
		seen[c] = struct{}{}
		if !slices.Contains(hand, c) {
			return fmt.Errorf("手牌中没有 %s", c)
		}
	}
	return nil
}

// Has 手牌中是否有某张牌
func Has(hand []Card, c Card) bool {
	return slices.Contains(hand, c)
}

// RemoveCards 从手牌中移除指定的牌，返回新切片，不修改原手牌
func RemoveCards(hand, toRemove []Card) []Card {
	result := make([]Card, 0, len(hand))
	for _, hCard := range hand {
		if !slices.Contains(toRemove, hCard) {
			result = append(result, hCard)
		}
	}
	return result
}

// FormatCards 以紧凑记法输出一组牌
func FormatCards(cards []Card) string {
	codes := make([]string, len(cards))
	for i, c := range cards {
		codes[i] = c.Code()
	}
	return strings.Join(codes, " ")
}
