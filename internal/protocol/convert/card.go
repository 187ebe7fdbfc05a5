package convert

import (
	"fmt"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/protocol"
)

var suitNames = map[card.Suit]string{
	card.Diamond: "diamonds",
	card.Club:    "clubs",
	card.Heart:   "hearts",
	card.Spade:   "spades",
}

var nameToSuit = map[string]card.Suit{
	"diamonds": card.Diamond,
	"clubs":    card.Club,
	"hearts":   card.Heart,
	"spades":   card.Spade,
}

// cardID 与整副牌的生成顺序一致：花色从方块到黑桃，点数从 3 到 2
func cardID(c card.Card) string {
	return fmt.Sprintf("card-%d", int(c.Suit)*card.HandSize+int(c.Rank-card.Rank3))
}

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		Suit:  suitNames[c.Suit],
		Rank:  c.Rank.String(),
		Value: int(c.Rank),
		ID:    cardID(c),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card，以 suit 和 rank 为准
func InfoToCard(info protocol.CardInfo) (card.Card, error) {
	suit, ok := nameToSuit[info.Suit]
	if !ok {
		return card.Card{}, fmt.Errorf("无法识别的花色: %q", info.Suit)
	}
	c, err := card.ParseCard(info.Rank + suit.Letter())
	if err != nil {
		return card.Card{}, err
	}
	return c, nil
}

// InfosToCards 将 []protocol.CardInfo 转换为 []card.Card
func InfosToCards(infos []protocol.CardInfo) ([]card.Card, error) {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		c, err := InfoToCard(info)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}
