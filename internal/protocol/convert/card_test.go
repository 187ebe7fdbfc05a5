package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/protocol"
)

func TestCardToInfo(t *testing.T) {
	t.Parallel()

	info := CardToInfo(card.Heart2)
	assert.Equal(t, protocol.CardInfo{Suit: "hearts", Rank: "2", Value: 15, ID: "card-38"}, info)

	info = CardToInfo(card.Card{Suit: card.Diamond, Rank: card.Rank3})
	assert.Equal(t, "card-0", info.ID)

	info = CardToInfo(card.Card{Suit: card.Spade, Rank: card.Rank10})
	assert.Equal(t, "10", info.Rank)
	assert.Equal(t, 10, info.Value)
}

func TestCardsRoundTrip(t *testing.T) {
	t.Parallel()

	originals := card.NewDeck()
	infos := CardsToInfos(originals)

	ids := make(map[string]bool)
	for _, info := range infos {
		ids[info.ID] = true
	}
	assert.Len(t, ids, card.DeckSize)

	results, err := InfosToCards(infos)
	require.NoError(t, err)
	assert.Equal(t, []card.Card(originals), results)
}

func TestInfoToCard_JSON(t *testing.T) {
	t.Parallel()

	var info protocol.CardInfo
	require.NoError(t, json.Unmarshal([]byte(`{"suit":"spades","rank":"3","value":3,"id":"card-39"}`), &info))

	c, err := InfoToCard(info)
	require.NoError(t, err)
	assert.Equal(t, card.Spade3, c)
}

func TestInfoToCard_Invalid(t *testing.T) {
	t.Parallel()

	_, err := InfoToCard(protocol.CardInfo{Suit: "stars", Rank: "3"})
	assert.Error(t, err)

	_, err = InfosToCards([]protocol.CardInfo{{Suit: "hearts", Rank: "1"}})
	assert.Error(t, err)
}
