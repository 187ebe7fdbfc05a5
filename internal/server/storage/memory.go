package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/palemoky/wudi/internal/protocol"
)

// MemoryBackend 进程内存储，变更通知在 Publish 中同步投递给本进程的订阅者
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte

	subMu  sync.RWMutex
	subs   map[int]func(protocol.ChangeEvent)
	nextID int
}

// NewMemoryBackend 创建内存存储
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string]map[string][]byte),
		subs:        make(map[int]func(protocol.ChangeEvent)),
	}
}

func (b *MemoryBackend) Insert(_ context.Context, collection, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.collections[collection]
	if !ok {
		c = make(map[string][]byte)
		b.collections[collection] = c
	}
	if _, exists := c[id]; exists {
		return ErrDuplicate
	}
	c[id] = slices.Clone(data)
	return nil
}

func (b *MemoryBackend) Update(_ context.Context, collection, id string, fn func(old []byte) ([]byte, error)) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	data, err := fn(slices.Clone(old))
	if err != nil {
		return nil, err
	}
	b.collections[collection][id] = slices.Clone(data)
	return data, nil
}

func (b *MemoryBackend) Get(_ context.Context, collection, id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (b *MemoryBackend) Delete(_ context.Context, collection, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(b.collections[collection], id)
	return data, nil
}

// List 按 ID 排序返回集合中的所有记录
func (b *MemoryBackend) List(_ context.Context, collection string) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c := b.collections[collection]
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, slices.Clone(c[id]))
	}
	return out, nil
}

func (b *MemoryBackend) Publish(_ context.Context, e protocol.ChangeEvent) error {
	// 先复制订阅者列表，回调里可以再订阅或取消订阅
	b.subMu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(protocol.ChangeEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, b.subs[id])
	}
	b.subMu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
	return nil
}

func (b *MemoryBackend) Subscribe(_ context.Context, fn func(protocol.ChangeEvent)) (func(), error) {
	b.subMu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.subMu.Lock()
			delete(b.subs, id)
			b.subMu.Unlock()
		})
	}, nil
}

func (b *MemoryBackend) Close() error {
	b.subMu.Lock()
	clear(b.subs)
	b.subMu.Unlock()
	return nil
}
