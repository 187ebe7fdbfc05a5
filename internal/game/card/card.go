package card

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
)

// Suit 定义花色，数值越大花色越大（黑桃 > 红心 > 梅花 > 方块）
type Suit int

// Rank 定义点数，同时也是比较大小用的牌值 (3..15)
type Rank int

// Card 定义一张牌，52 张牌各不相同，可直接用 == 比较
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

const (
	Diamond Suit = iota // 方块
	Club                // 梅花
	Heart               // 红心
	Spade               // 黑桃
)

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Club:    "♣",
	Diamond: "♦",
}

// suitLetters 花色字母，用于紧凑记法 (3S, 10H)
var suitLetters = map[Suit]string{
	Spade:   "S",
	Heart:   "H",
	Club:    "C",
	Diamond: "D",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// Letter 返回花色的字母记法
func (s Suit) Letter() string {
	return suitLetters[s]
}

// IsRed 红心和方块为红色
func (s Suit) IsRed() bool {
	return s == Heart || s == Diamond
}

const (
	Rank3 Rank = iota + 3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
	Rank2 // 2 最大
)

// rankNames 牌面值字符串映射表
var rankNames = map[Rank]string{
	Rank3:  "3",
	Rank4:  "4",
	Rank5:  "5",
	Rank6:  "6",
	Rank7:  "7",
	Rank8:  "8",
	Rank9:  "9",
	Rank10: "10",
	RankJ:  "J",
	RankQ:  "Q",
	RankK:  "K",
	RankA:  "A",
	Rank2:  "2",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// Valid 判断点数是否在 3..2 之间
func (r Rank) Valid() bool {
	return r >= Rank3 && r <= Rank2
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Code 返回紧凑记法，如 "10H"、"3S"
func (c Card) Code() string {
	return c.Rank.String() + c.Suit.Letter()
}

// 几张规则中有特殊含义的牌
var (
	Spade3   = Card{Suit: Spade, Rank: Rank3}
	Heart2   = Card{Suit: Heart, Rank: Rank2}
	Diamond2 = Card{Suit: Diamond, Rank: Rank2}
)

const (
	// DeckSize 一副牌（无大小王）
	DeckSize = 52
	// Seats 座位数
	Seats = 4
	// HandSize 每人 13 张，没有底牌
	HandSize = DeckSize / Seats
)

// Deck 定义一副牌
type Deck []Card

// NewDeck 创建 52 张牌，不含大小王
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for s := Diamond; s <= Spade; s++ {
		for r := Rank3; r <= Rank2; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle 均匀随机洗牌
func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// ShuffleWith 使用指定随机源洗牌，便于复现
func (d Deck) ShuffleWith(r *rand.Rand) {
	r.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Deal 把整副牌依次发给 4 个座位，每人 13 张，发完后各自排序
func Deal(d Deck) ([Seats][]Card, error) {
	var hands [Seats][]Card
	if len(d) != DeckSize {
		return hands, fmt.Errorf("牌数必须为 %d 张，实际 %d 张", DeckSize, len(d))
	}
	for i := range hands {
		hands[i] = make([]Card, 0, HandSize)
	}
	for i, c := range d {
		seat := i % Seats
		hands[seat] = append(hands[seat], c)
	}
	for i := range hands {
		SortCards(hands[i])
	}
	return hands, nil
}

// Less 按显示顺序比较：点数大的在前，点数相同时花色大的在前
func Less(a, b Card) bool {
	if a.Rank != b.Rank {
		return a.Rank > b.Rank
	}
	return a.Suit > b.Suit
}

// SortCards 原地排序（从大到小），最后一张即为最小的牌
func SortCards(cards []Card) {
	slices.SortFunc(cards, func(a, b Card) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		default:
			return 0
		}
	})
}

// Sorted 返回排好序的副本
func Sorted(cards []Card) []Card {
	out := slices.Clone(cards)
	SortCards(out)
	return out
}
