package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/match"
	"github.com/palemoky/wudi/internal/game/settle"
	"github.com/palemoky/wudi/internal/server/storage"
	"github.com/palemoky/wudi/internal/testutil"
)

var testNames = Names{"Alice", "Bob", "Carol", "VeryLongPlayerName"}

func TestRenderCards(t *testing.T) {
	t.Parallel()

	out := RenderCards(card.MustParseCards("3S 10H 2D"))
	assert.Contains(t, out, "3♠")
	assert.Contains(t, out, "10♥")
	assert.Contains(t, out, "2♦")

	assert.Contains(t, RenderCards(nil), "(无)")
}

func TestRenderHand(t *testing.T) {
	t.Parallel()

	out := RenderHand("Alice", card.MustParseCards("3S 4S 5H"), true)
	assert.Contains(t, out, "(3张)")
	assert.Contains(t, out, "👑")

	assert.Contains(t, RenderHand("Bob", nil, false), "无手牌")
}

func TestRenderMoveLog(t *testing.T) {
	t.Parallel()

	moves := []match.Move{
		{Seq: 0, Seat: 0, Kind: match.MovePlay, Cards: card.MustParseCards("3S 3D")},
		{Seq: 1, Seat: 1, Kind: match.MovePass},
		{Seq: 2, Seat: 3, Kind: match.MovePlay, Cards: card.MustParseCards("2H 2D")},
	}
	out := RenderMoveLog(moves, testNames)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "Alice")
	assert.Contains(t, lines[0], "对子")
	assert.Contains(t, lines[1], "过")
	assert.Contains(t, lines[2], "VeryLongP…")
	assert.Contains(t, lines[2], "无敌")
}

func TestRenderSettlement(t *testing.T) {
	t.Parallel()

	hands := testutil.RiggedHands(map[int]string{1: "2H 2D"})
	teams, err := settle.InferTeams(hands)
	require.NoError(t, err)
	s := settle.Compute(teams, 1, [card.Seats]int{0, 3, 0, 0}, 2, 1)

	out := RenderSettlement(s, teams, Names{})
	assert.Contains(t, out, "1v3")
	assert.Contains(t, out, "春天")
	assert.Contains(t, out, "x2")
	assert.Contains(t, out, "+12")
	assert.Contains(t, out, "-4")
	assert.Contains(t, out, "座位1")
}

func TestRenderTotals(t *testing.T) {
	t.Parallel()

	out := RenderTotals([]Total{{Name: "Alice", Score: 5, Wins: 2}, {Name: "Bob", Score: -5}}, 3)
	assert.Contains(t, out, "累计 3 局")
	assert.Contains(t, out, "+5")
	assert.Contains(t, out, "-5")
}

func TestRenderLeaderboard(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, RenderLeaderboard("总榜", nil), "暂无排行数据")
	})

	t.Run("entries", func(t *testing.T) {
		t.Parallel()
		out := RenderLeaderboard("总榜", []*storage.LeaderboardEntry{
			{Rank: 1, PlayerName: "Alice", Score: 45, Wins: 3, WinRate: 75},
			{Rank: 2, PlayerName: "Bob", Score: 10, Wins: 1, WinRate: 25},
		})
		assert.Contains(t, out, "总榜")
		assert.Contains(t, out, " 1.")
		assert.Contains(t, out, "75.0%")
		assert.Contains(t, out, "Bob")
	})
}

func TestRenderStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stats    storage.PlayerStats
		rank     int64
		contains []string
	}{
		{
			name: "win streak",
			stats: storage.PlayerStats{
				PlayerName: "Alice", TotalGames: 4, Wins: 3, Losses: 1,
				InvincibleGames: 2, InvincibleWins: 1, TeamGames: 2, TeamWins: 2,
				CurrentStreak: 2, MaxWinStreak: 2, Springs: 1, TotalDelta: 7,
			},
			rank:     1,
			contains: []string{"#1", "75.0%", "无敌: 1胜/2场 (50.0%)", "组队: 2胜/2场 (100.0%)", "2 连胜", "春天: 1", "+7"},
		},
		{
			name:     "lose streak unranked",
			stats:    storage.PlayerStats{PlayerName: "Bob", TotalGames: 2, Losses: 2, CurrentStreak: -2},
			rank:     -1,
			contains: []string{"未上榜", "2 连败", "无敌: 0胜/0场 (0.0%)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := RenderStats(&tt.stats, tt.rank)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}
