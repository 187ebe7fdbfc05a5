package card

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	require.Len(t, deck, DeckSize)

	seen := make(map[Card]bool, DeckSize)
	for _, c := range deck {
		assert.True(t, c.Rank.Valid(), "invalid rank %d", c.Rank)
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.True(t, seen[Spade3])
	assert.True(t, seen[Heart2])
	assert.True(t, seen[Diamond2])
}

func TestDeal(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	deck.ShuffleWith(rand.New(rand.NewPCG(1, 2)))

	hands, err := Deal(deck)
	require.NoError(t, err)

	total := 0
	seen := make(map[Card]bool, DeckSize)
	for _, h := range hands {
		assert.Len(t, h, HandSize)
		for _, c := range h {
			assert.False(t, seen[c])
			seen[c] = true
		}
		total += len(h)
	}
	assert.Equal(t, DeckSize, total)
}

func TestDeal_WrongSize(t *testing.T) {
	t.Parallel()

	_, err := Deal(NewDeck()[:51])
	assert.Error(t, err)
}

func TestShuffleWith_Deterministic(t *testing.T) {
	t.Parallel()

	a, b := NewDeck(), NewDeck()
	a.ShuffleWith(rand.New(rand.NewPCG(7, 7)))
	b.ShuffleWith(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, NewDeck(), a)
}

func TestSortCards(t *testing.T) {
	t.Parallel()

	cards := MustParseCards("3D 2H 3S KC 3H 3C 2D")
	SortCards(cards)

	// 点数从大到小，同点数按 黑桃 > 红心 > 梅花 > 方块
	assert.Equal(t, MustParseCards("2H 2D KC 3S 3H 3C 3D"), cards)
}

func TestSuitIsRed(t *testing.T) {
	t.Parallel()

	assert.True(t, Heart.IsRed())
	assert.True(t, Diamond.IsRed())
	assert.False(t, Spade.IsRed())
	assert.False(t, Club.IsRed())
}
