// Package room 房间：建房、入座、准备、离开和开局
package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/config"
	"github.com/palemoky/wudi/internal/game/card"
	"github.com/palemoky/wudi/internal/server/session"
	"github.com/palemoky/wudi/internal/server/storage"
)

const (
	roomCodeLength = 6            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集
	maxPlayers     = card.Seats

	maxCodeAttempts = 100
)

// Dealer 开局，由 session.Manager 实现
type Dealer interface {
	Deal(ctx context.Context, req session.DealRequest) (*session.DealResult, error)
}

// RoomManager 房间管理器。房间和座位都保存在 store 中，
// mu 使同一进程内的房间操作串行执行
type RoomManager struct {
	store  *storage.Store
	dealer Dealer
	game   config.GameConfig
	log    *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(store *storage.Store, dealer Dealer, game config.GameConfig, log *zap.Logger) *RoomManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomManager{
		store:  store,
		dealer: dealer,
		game:   game,
		log:    log,
		now:    time.Now,
	}
}

// generateRoomCode 生成房间号
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
	}
	return string(code)
}
