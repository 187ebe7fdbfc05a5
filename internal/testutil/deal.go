//go:build !production

package testutil

import (
	"fmt"

	"github.com/palemoky/wudi/internal/game/card"
)

// FixedDeal 构造一副合法的发牌：pinned 中的牌固定发给对应座位，
// 其余的牌按从小到大的顺序补给还没满 13 张的座位
func FixedDeal(pinned map[int][]card.Card) ([card.Seats][]card.Card, error) {
	var hands [card.Seats][]card.Card
	used := make(map[card.Card]bool, card.DeckSize)

	for seat, cards := range pinned {
		if seat < 0 || seat >= card.Seats {
			return hands, fmt.Errorf("座位 %d 超出范围", seat)
		}
		if len(cards) > card.HandSize {
			return hands, fmt.Errorf("座位 %d 固定了 %d 张牌", seat, len(cards))
		}
		for _, c := range cards {
			if used[c] {
				return hands, fmt.Errorf("%s 被固定了两次", c)
			}
			used[c] = true
			hands[seat] = append(hands[seat], c)
		}
	}

	// 从小到大补牌：点数优先，使补上的牌尽量不干扰测试关心的牌型
	seat := 0
	for r := card.Rank3; r <= card.Rank2; r++ {
		for s := card.Diamond; s <= card.Spade; s++ {
			c := card.Card{Suit: s, Rank: r}
			if used[c] {
				continue
			}
			for len(hands[seat]) >= card.HandSize {
				seat = (seat + 1) % card.Seats
			}
			hands[seat] = append(hands[seat], c)
			seat = (seat + 1) % card.Seats
		}
	}

	for i := range hands {
		card.SortCards(hands[i])
	}
	return hands, nil
}

// MustFixedDeal 同 FixedDeal，出错时 panic，仅用于测试
func MustFixedDeal(pinned map[int][]card.Card) [card.Seats][]card.Card {
	hands, err := FixedDeal(pinned)
	if err != nil {
		panic(err)
	}
	return hands
}

// RiggedHands 用紧凑记法固定每个座位的部分手牌，如 {0: "3S 4S", 2: "2H 2D"}
func RiggedHands(pinned map[int]string) [card.Seats][]card.Card {
	cards := make(map[int][]card.Card, len(pinned))
	for seat, s := range pinned {
		cards[seat] = card.MustParseCards(s)
	}
	return MustFixedDeal(cards)
}

// Seats 四个测试用的玩家 ID
func Seats() [card.Seats]string {
	return [card.Seats]string{"p0", "p1", "p2", "p3"}
}
