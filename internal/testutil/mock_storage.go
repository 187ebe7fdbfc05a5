//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/wudi/internal/server/storage"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordGameResult(ctx context.Context, r storage.GameResult) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, playerID string) (*storage.PlayerStats, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerStats), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, playerID string) (int64, error) {
	args := m.Called(ctx, playerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, boardType string, offset, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, boardType, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

var _ storage.Leaderboard = (*MockLeaderboard)(nil)

// FailingBackend 包装一个 Backend，在指定集合的写入上返回错误，用于测试写入失败时的回滚
type FailingBackend struct {
	storage.Backend
	mu   sync.Mutex
	fail map[string]error
}

// NewFailingBackend 创建包装
func NewFailingBackend(b storage.Backend) *FailingBackend {
	return &FailingBackend{Backend: b, fail: make(map[string]error)}
}

// FailWrites 之后对 collection 的写入都返回 err，err 为 nil 时恢复
func (f *FailingBackend) FailWrites(collection string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, collection)
		return
	}
	f.fail[collection] = err
}

func (f *FailingBackend) failure(collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[collection]
}

func (f *FailingBackend) Insert(ctx context.Context, collection, id string, data []byte) error {
	if err := f.failure(collection); err != nil {
		return err
	}
	return f.Backend.Insert(ctx, collection, id, data)
}

func (f *FailingBackend) Update(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) ([]byte, error) {
	if err := f.failure(collection); err != nil {
		return nil, err
	}
	return f.Backend.Update(ctx, collection, id, fn)
}
