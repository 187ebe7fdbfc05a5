package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "player:stats:"
	leaderboardKey    = "leaderboard:score"
	dailyLeaderboard  = "leaderboard:daily:"
	weeklyLeaderboard = "leaderboard:weekly:"
)

// 排行榜类型
const (
	BoardTotal  = "total"
	BoardDaily  = "daily"
	BoardWeekly = "weekly"
)

// PlayerStats 玩家统计数据
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`

	// 总计
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`

	// 无敌（一打三）和组队（二打二）分开统计
	InvincibleGames int `json:"invincible_games"`
	InvincibleWins  int `json:"invincible_wins"`
	TeamGames       int `json:"team_games"`
	TeamWins        int `json:"team_wins"`
	Springs         int `json:"springs"` // 以获胜方打出的春天次数

	// 排行积分和结算得分累计
	Score      int `json:"score"`
	TotalDelta int `json:"total_delta"`

	// 连胜/连败
	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// 积分规则
const (
	WinAsInvincible  = 30
	WinInTeam        = 15
	LoseAsInvincible = -20
	LoseInTeam       = -10

	// 连胜加成
	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

// GameResult 一名玩家在一局中的结果
type GameResult struct {
	PlayerID   string
	PlayerName string
	Invincible bool // 一打三中的无敌方
	Won        bool
	Spring     bool
	Delta      int // 结算得分
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// Leaderboard 会话层使用的排行榜接口
type Leaderboard interface {
	RecordGameResult(ctx context.Context, r GameResult) error
	GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error)
	GetPlayerRank(ctx context.Context, playerID string) (int64, error)
	GetLeaderboard(ctx context.Context, boardType string, offset, limit int) ([]*LeaderboardEntry, error)
}

// LeaderboardManager 基于 Redis 有序集合的排行榜
type LeaderboardManager struct {
	redis  *redis.Client
	prefix string
	now    func() time.Time
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client, prefix string) *LeaderboardManager {
	return &LeaderboardManager{redis: client, prefix: prefix, now: time.Now}
}

// GetPlayerStats 获取玩家统计，未参加过对局时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, lm.prefix+playerStatsKey+playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SavePlayerStats 保存玩家统计
func (lm *LeaderboardManager) SavePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, lm.prefix+playerStatsKey+stats.PlayerID, data, 0).Err()
}

func (lm *LeaderboardManager) getOrCreateStats(ctx context.Context, playerID, playerName string) (*PlayerStats, error) {
	stats, err := lm.GetPlayerStats(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &PlayerStats{
			PlayerID:   playerID,
			PlayerName: playerName,
			CreatedAt:  lm.now().Unix(),
		}
	}
	return stats, nil
}

// updateRoleStats 更新角色相关统计并返回基础积分变化
func updateRoleStats(stats *PlayerStats, invincible, won bool) int {
	switch {
	case invincible && won:
		stats.InvincibleGames++
		stats.InvincibleWins++
		return WinAsInvincible
	case invincible:
		stats.InvincibleGames++
		return LoseAsInvincible
	case won:
		stats.TeamGames++
		stats.TeamWins++
		return WinInTeam
	default:
		stats.TeamGames++
		return LoseInTeam
	}
}

// updateWinLossStats 更新胜负统计和连胜/连败
func updateWinLossStats(stats *PlayerStats, won bool) {
	if won {
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
	} else {
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
	}
	stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
}

func calculateStreakBonus(streak int) int {
	switch {
	case streak >= 10:
		return StreakBonus10
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordGameResult 记录一名玩家的一局结果并更新排行榜
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, r GameResult) error {
	stats, err := lm.getOrCreateStats(ctx, r.PlayerID, r.PlayerName)
	if err != nil {
		return err
	}

	stats.PlayerName = r.PlayerName
	stats.TotalGames++
	stats.TotalDelta += r.Delta
	stats.LastPlayedAt = lm.now().Unix()
	if r.Won && r.Spring {
		stats.Springs++
	}

	scoreChange := updateRoleStats(stats, r.Invincible, r.Won)
	updateWinLossStats(stats, r.Won)
	scoreChange += calculateStreakBonus(stats.CurrentStreak)
	stats.Score = max(0, stats.Score+scoreChange)

	if err := lm.SavePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.UpdateLeaderboard(ctx, stats)
}

func (lm *LeaderboardManager) boardKey(boardType string) (string, error) {
	now := lm.now()
	switch boardType {
	case BoardTotal, "":
		return lm.prefix + leaderboardKey, nil
	case BoardDaily:
		return lm.prefix + dailyLeaderboard + now.Format("2006-01-02"), nil
	case BoardWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%s%s%d-W%02d", lm.prefix, weeklyLeaderboard, year, week), nil
	default:
		return "", fmt.Errorf("未知的排行榜类型: %q", boardType)
	}
}

// UpdateLeaderboard 更新总榜、日榜和周榜
func (lm *LeaderboardManager) UpdateLeaderboard(ctx context.Context, stats *PlayerStats) error {
	z := redis.Z{Score: float64(stats.Score), Member: stats.PlayerID}
	boards := []struct {
		boardType string
		ttl       time.Duration
	}{
		{BoardTotal, 0},
		{BoardDaily, 48 * time.Hour},
		{BoardWeekly, 8 * 24 * time.Hour},
	}

	_, err := lm.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, b := range boards {
			key, err := lm.boardKey(b.boardType)
			if err != nil {
				return err
			}
			pipe.ZAdd(ctx, key, z)
			if b.ttl > 0 {
				pipe.Expire(ctx, key, b.ttl)
			}
		}
		return nil
	})
	return err
}

// GetLeaderboard 从高到低获取排行榜
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, boardType string, offset, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	key, err := lm.boardKey(boardType)
	if err != nil {
		return nil, err
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerID, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lm.GetPlayerStats(ctx, playerID)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:       offset + i + 1,
			PlayerID:   playerID,
			PlayerName: stats.PlayerName,
			Score:      int(result.Score),
			Wins:       stats.Wins,
			WinRate:    winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家在总榜的排名，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, lm.prefix+leaderboardKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
