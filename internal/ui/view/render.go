// Package view 把牌局、结算和排行榜渲染成终端文本
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/game/match"
	"github.com/palemoky/wudi/internal/game/settle"
	"github.com/palemoky/wudi/internal/server/storage"
	"github.com/palemoky/wudi/internal/ui/common"
)

const nameWidth = 10

// Names 按座位排列的玩家名
type Names [card.Seats]string

func (n Names) seat(seat int) string {
	if seat < 0 || seat >= card.Seats || n[seat] == "" {
		return fmt.Sprintf("座位%d", seat)
	}
	return common.TruncateName(n[seat], nameWidth)
}

func cardStyle(c card.Card) lipgloss.Style {
	if c.Suit.IsRed() {
		return common.RedStyle
	}
	return common.BlackStyle
}

// RenderTitle 居中的标题行
func RenderTitle(title string) string {
	return lipgloss.PlaceHorizontal(50, lipgloss.Center, common.TitleStyle(title))
}

// RenderCards 把一手牌渲染成一行，红心和方块为红色
func RenderCards(cards []card.Card) string {
	if len(cards) == 0 {
		return common.GrayStyle.Render("(无)")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = cardStyle(c).Render(c.String())
	}
	return strings.Join(parts, " ")
}

// RenderHand 带边框的手牌，点数和花色分两行
func RenderHand(title string, hand []card.Card, invincible bool) string {
	if len(hand) == 0 {
		return common.BoxStyle.Render(title + " (无手牌)")
	}

	var rankStr, suitStr strings.Builder
	for _, c := range hand {
		style := cardStyle(c).Align(lipgloss.Center).Margin(0, 1)
		rankStr.WriteString(style.Render(fmt.Sprintf("%-2s", c.Rank.String())))
		suitStr.WriteString(style.Render(fmt.Sprintf("%-2s", c.Suit.String())))
	}

	icon := common.TeamIcon
	if invincible {
		icon = common.InvincibleIcon
	}
	header := fmt.Sprintf("%s %s (%d张)", title, icon, len(hand))
	content := lipgloss.JoinVertical(lipgloss.Center, header, rankStr.String(), suitStr.String())
	return common.BoxStyle.Render(content)
}

// RenderMoveLog 每手一行：序号、玩家、牌型和出的牌
func RenderMoveLog(moves []match.Move, names Names) string {
	var sb strings.Builder
	for _, mv := range moves {
		fmt.Fprintf(&sb, "%3d. %-*s ", mv.Seq+1, nameWidth, names.seat(mv.Seat))
		if mv.IsPass() {
			sb.WriteString(common.GrayStyle.Render("过"))
		} else {
			fmt.Fprintf(&sb, "%s %s", mv.Pattern().Type, RenderCards(mv.Cards))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderSettlement 一局的结算表
func RenderSettlement(s settle.Settlement, teams settle.Teams, names Names) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle(fmt.Sprintf("%s 结算 (%s)", common.WinnerIcon, s.Mode)) + "\n")
	sb.WriteString(strings.Repeat("─", 40) + "\n")

	fmt.Fprintf(&sb, "先出完: %s\n", names.seat(s.Winner))
	fmt.Fprintf(&sb, "底分 %d × 倍数 %d = %d", s.BaseScore, s.Multiplier, s.Score)
	if s.Spring {
		sb.WriteString("  🌸 春天")
	}
	if s.BombMultiplier > 1 {
		fmt.Fprintf(&sb, "  💣 x%d", s.BombMultiplier)
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", 40) + "\n")

	for seat := range card.Seats {
		icon := common.TeamIcon
		if teams.IsInvincible(seat) {
			icon = common.InvincibleIcon
		}
		result := "负"
		if s.Won(seat) {
			result = "胜"
		}
		fmt.Fprintf(&sb, "%s %-*s %s  %s\n", icon, nameWidth, names.seat(seat), result, common.SignedScore(s.Deltas[seat]))
	}
	return common.BoxStyle.Render(sb.String())
}

// Total 累计得分
type Total struct {
	Name  string
	Score int
	Wins  int
}

// RenderTotals 多局之后的累计得分
func RenderTotals(totals []Total, matches int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 累计 %d 局\n", matches)
	sb.WriteString(strings.Repeat("─", 40) + "\n")
	for _, t := range totals {
		fmt.Fprintf(&sb, "%-*s %s  胜 %d\n", nameWidth, common.TruncateName(t.Name, nameWidth), common.SignedScore(t.Score), t.Wins)
	}
	return common.BoxStyle.Render(sb.String())
}

// RenderLeaderboard 排行榜表格
func RenderLeaderboard(title string, entries []*storage.LeaderboardEntry) string {
	var sb strings.Builder

	titleLine := lipgloss.PlaceHorizontal(50, lipgloss.Center, common.WinnerIcon+" "+title)
	sb.WriteString(titleLine + "\n")
	sb.WriteString(strings.Repeat("─", 50) + "\n")

	if len(entries) == 0 {
		sb.WriteString("暂无排行数据\n")
		return common.BoxStyle.Render(sb.String())
	}

	sb.WriteString("排名\t玩家\t\t积分\t胜场\t胜率\n")
	sb.WriteString(strings.Repeat("─", 50) + "\n")

	for _, e := range entries {
		rankStr := fmt.Sprintf("%2d.", e.Rank)
		fmt.Fprintf(&sb, "%s\t%s\t\t%d\t%d\t%.1f%%\n",
			rankStr, common.TruncateName(e.PlayerName, nameWidth), e.Score, e.Wins, e.WinRate)
	}

	return common.BoxStyle.Render(sb.String())
}

func rate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}

// RenderStats 单个玩家的战绩，rank 小于 1 表示未上榜
func RenderStats(s *storage.PlayerStats, rank int64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s 的战绩\n", s.PlayerName)
	sb.WriteString(strings.Repeat("─", 40) + "\n")

	rankStr := "未上榜"
	if rank > 0 {
		rankStr = fmt.Sprintf("#%d", rank)
	}
	fmt.Fprintf(&sb, "排名: %s  |  积分: %d  |  得分: %s\n", rankStr, s.Score, common.SignedScore(s.TotalDelta))
	sb.WriteString(strings.Repeat("─", 40) + "\n")

	fmt.Fprintf(&sb, "总场次: %d  胜: %d  负: %d  胜率: %.1f%%\n",
		s.TotalGames, s.Wins, s.Losses, rate(s.Wins, s.TotalGames))
	fmt.Fprintf(&sb, "无敌: %d胜/%d场 (%.1f%%)  |  组队: %d胜/%d场 (%.1f%%)\n",
		s.InvincibleWins, s.InvincibleGames, rate(s.InvincibleWins, s.InvincibleGames),
		s.TeamWins, s.TeamGames, rate(s.TeamWins, s.TeamGames))

	streakStr := ""
	if s.CurrentStreak > 0 {
		streakStr = fmt.Sprintf("🔥 %d 连胜!", s.CurrentStreak)
	} else if s.CurrentStreak < 0 {
		streakStr = fmt.Sprintf("💔 %d 连败", -s.CurrentStreak)
	}
	if s.MaxWinStreak > 0 {
		streakStr += fmt.Sprintf("  最高连胜: %d", s.MaxWinStreak)
	}
	if s.Springs > 0 {
		streakStr += fmt.Sprintf("  春天: %d", s.Springs)
	}
	if streakStr != "" {
		sb.WriteString(streakStr + "\n")
	}

	return common.BoxStyle.Render(sb.String())
}
