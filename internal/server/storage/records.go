package storage

import (
	"time"

	"github.com/palemoky/wudi/internal/protocol"
)

// Record 可以存进 Table 的记录
type Record interface {
	Key() string
}

// User 用户
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	TotalScore  int       `json:"total_score"`
	GamesPlayed int       `json:"games_played"`
	GamesWon    int       `json:"games_won"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) Key() string { return u.ID }

// 房间状态
const (
	RoomWaiting  = "waiting"
	RoomPlaying  = "playing"
	RoomFinished = "finished"
)

// Room 房间
type Room struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Password       string    `json:"password,omitempty"`
	JoinCode       string    `json:"join_code"`
	OwnerID        string    `json:"owner_id"`
	Status         string    `json:"status"`
	CurrentPlayers int       `json:"current_players"`
	MatchCount     int       `json:"match_count"` // 已经开始过的局数
	CurrentMatchID string    `json:"current_game_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r Room) Key() string { return r.ID }

// RoomPlayer 房间里的一个座位
type RoomPlayer struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	UserID       string    `json:"user_id"`
	IsReady      bool      `json:"is_ready"`
	SeatPosition int       `json:"seat_position"`
	JoinedAt     time.Time `json:"joined_at"`
}

func (p RoomPlayer) Key() string { return p.ID }

// 对局状态
const (
	MatchPlaying  = "playing"
	MatchFinished = "finished"
)

// MatchState 对局的公开状态
type MatchState struct {
	Multiplier      int    `json:"multiplier"`
	BaseScore       int    `json:"base_score"`
	Mode            string `json:"mode"` // 1v3 | 2v2
	FirstSeat       int    `json:"first_seat"`
	LeadSeat        int    `json:"lead_seat"` // -1 表示自由出牌
	RequireSpade3   bool   `json:"require_spade3"`
	Spring          bool   `json:"spring,omitempty"`
	FinalMultiplier int    `json:"final_multiplier,omitempty"`
}

// MatchRecord 一局牌
type MatchRecord struct {
	ID              string     `json:"id"`
	RoomID          string     `json:"room_id"`
	MatchIndex      int        `json:"match_index"`
	Status          string     `json:"status"`
	CurrentPlayerID string     `json:"current_player_id"`
	CurrentSeat     int        `json:"current_seat"`
	WinnerID        string     `json:"winner_id,omitempty"`
	GameState       MatchState `json:"game_state"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

func (m MatchRecord) Key() string { return m.ID }

// MatchPlayer 一局牌中的一个座位
type MatchPlayer struct {
	ID           string              `json:"id"`
	MatchID      string              `json:"game_id"`
	UserID       string              `json:"user_id"`
	Seat         int                 `json:"seat"`
	IsBot        bool                `json:"is_bot"`
	HandCards    []protocol.CardInfo `json:"hand_cards"`
	CardsCount   int                 `json:"cards_count"`
	IsInvincible bool                `json:"is_invincible"`
	IsH2Owner    bool                `json:"is_h2_owner"`
	IsD2Owner    bool                `json:"is_d2_owner"`
	PlayedTimes  int                 `json:"played_times"`
	ScoreChange  int                 `json:"score_change"`
}

func (p MatchPlayer) Key() string { return p.ID }

// 出牌记录类型
const (
	MoveTypePlay = "play"
	MoveTypePass = "pass"
)

// MoveRecord 一手出牌记录
type MoveRecord struct {
	ID          string              `json:"id"`
	MatchID     string              `json:"game_id"`
	PlayerID    string              `json:"player_id"`
	Seat        int                 `json:"seat"`
	Seq         int                 `json:"seq"`
	MoveType    string              `json:"move_type"`
	Pattern     string              `json:"pattern,omitempty"` // 牌型，如 "bomb"
	CardsPlayed []protocol.CardInfo `json:"cards_played"`
	PlayedAt    time.Time           `json:"played_at"`
}

func (m MoveRecord) Key() string { return m.ID }
