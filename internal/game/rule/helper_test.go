package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/wudi/internal/game/card"
)

func TestFindSmallestBeatingCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		playerHand   string
		opponentHand string
		expected     string // 空字符串表示要不起
	}{
		{"单张：4压3", "5H 4S", "3D", "4S"},
		{"单张：A压不过2", "AS KH", "2D", ""},
		{"单张：尽量不拆对子", "9S 9D JH", "8C", "JH"},
		{"对子：4压3", "4S 4H 5C", "3D 3C", "4S 4H"},
		{"对子：拆三张", "7S 7H 7C 9D", "6S 6D", "7S 7H"},
		{"三张", "4S 4H 4C", "3D 3C 3H", "4S 4H 4C"},
		{"三带二：带最小的两张单牌", "9S 9D 9C 3H 5C KD", "4S 4D 4C 6H 7H", "9S 9D 9C 3H 5C"},
		{"三带二：翅膀可以拆对子", "9S 9D 9C 3H 3C", "4S 4D 4C 6H 7H", "9S 9D 9C 3H 3C"},
		{"三带一只在最后四张时出", "9S 9D 9C 3H", "4S 4D 4C 6H 7H", "9S 9D 9C 3H"},
		{"顺子", "3S 5D 6C 7S 8D 9H TH", "4S 5S 6S 7H 8H", "5D 6C 7S 8D 9H"},
		{"连对", "5S 5D 6S 6D 9C", "3S 3D 4S 4D", "5S 5D 6S 6D"},
		{"飞机", "5S 5D 5C 6S 6D 6C", "3S 3D 3C 4S 4D 4C", "5S 5D 5C 6S 6D 6C"},
		{
			"飞机带翅膀",
			"5S 5D 5C 6S 6D 6C 3H 4H 7H 8H KS",
			"3S 3D 3C 4S 4D 4C 7D 8D 9H 9D",
			"5S 5D 5C 6S 6D 6C 3H 4H 7H 8H",
		},
		{"没有同牌型就用炸弹", "8S 8H 8D 8C 3C", "2D", "8S 8H 8D 8C"},
		{"用最小的能压过的炸弹", "5S 5H 5D 5C 9S 9H 9D 9C", "7S 7H 7D 7C", "9S 9H 9D 9C"},
		{"最后才用无敌", "2H 2D 3C", "AS AH AD AC", "2H 2D"},
		{"同牌型优先于炸弹", "8S 8H 8D 8C KD", "QS", "KD"},
		{"没有牌能压过无敌", "2S 2C 3S 3H 3D 3C", "2H 2D", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opponent, err := ParseHand(card.MustParseCards(tt.opponentHand))
			require.NoError(t, err)

			result := FindSmallestBeatingCards(card.MustParseCards(tt.playerHand), opponent)
			if tt.expected == "" {
				assert.Nil(t, result)
				return
			}
			assert.ElementsMatch(t, card.MustParseCards(tt.expected), result)

			// 给出的提示一定能压过对手
			hand, err := ParseHand(result)
			require.NoError(t, err)
			assert.True(t, CanBeat(hand, opponent))
		})
	}
}

func TestFindSmallestBeatingCards_FreeTurn(t *testing.T) {
	t.Parallel()

	result := FindSmallestBeatingCards(card.MustParseCards("KS 3D 9H"), ParsedHand{})
	assert.Equal(t, card.MustParseCards("3D"), result)

	assert.Nil(t, FindSmallestBeatingCards(nil, ParsedHand{}))
}
