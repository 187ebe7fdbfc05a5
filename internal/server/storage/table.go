package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/protocol"
)

// Table 一个集合的类型化访问。每次写入成功后发布一条 ChangeEvent
type Table[T Record] struct {
	backend    Backend
	collection string
	log        *zap.Logger
	now        func() time.Time
}

// NewTable 创建集合访问
func NewTable[T Record](backend Backend, collection string, log *zap.Logger) *Table[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table[T]{backend: backend, collection: collection, log: log, now: time.Now}
}

// Collection 集合名称
func (t *Table[T]) Collection() string { return t.collection }

// Insert 写入新记录，ID 已存在时返回 ErrDuplicate
func (t *Table[T]) Insert(ctx context.Context, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", t.collection, err)
	}
	if err := t.backend.Insert(ctx, t.collection, rec.Key(), data); err != nil {
		return fmt.Errorf("写入 %s/%s: %w", t.collection, rec.Key(), err)
	}
	t.publish(ctx, protocol.OpInsert, rec.Key(), data)
	return nil
}

// Update 整条替换已有记录，记录不存在时返回 ErrNotFound
func (t *Table[T]) Update(ctx context.Context, rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化 %s 失败: %w", t.collection, err)
	}
	if _, err := t.backend.Update(ctx, t.collection, rec.Key(), func([]byte) ([]byte, error) {
		return data, nil
	}); err != nil {
		return fmt.Errorf("更新 %s/%s: %w", t.collection, rec.Key(), err)
	}
	t.publish(ctx, protocol.OpUpdate, rec.Key(), data)
	return nil
}

// Modify 读出记录交给 fn 修改后写回。并发修改时 fn 可能被调用多次
func (t *Table[T]) Modify(ctx context.Context, id string, fn func(rec *T) error) (T, error) {
	var out T
	data, err := t.backend.Update(ctx, t.collection, id, func(old []byte) ([]byte, error) {
		var rec T
		if err := json.Unmarshal(old, &rec); err != nil {
			return nil, fmt.Errorf("反序列化 %s 失败: %w", t.collection, err)
		}
		if err := fn(&rec); err != nil {
			return nil, err
		}
		out = rec
		return json.Marshal(rec)
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("修改 %s/%s: %w", t.collection, id, err)
	}
	t.publish(ctx, protocol.OpUpdate, id, data)
	return out, nil
}

// Delete 删除记录，记录不存在时返回 ErrNotFound
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	old, err := t.backend.Delete(ctx, t.collection, id)
	if err != nil {
		return fmt.Errorf("删除 %s/%s: %w", t.collection, id, err)
	}
	t.publish(ctx, protocol.OpDelete, id, old)
	return nil
}

// Get 按 ID 读取
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var rec T
	data, err := t.backend.Get(ctx, t.collection, id)
	if err != nil {
		return rec, fmt.Errorf("读取 %s/%s: %w", t.collection, id, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("反序列化 %s 失败: %w", t.collection, err)
	}
	return rec, nil
}

// Find 返回满足过滤条件的记录，按 ID 排序
func (t *Table[T]) Find(ctx context.Context, f Filter) ([]T, error) {
	rows, err := t.backend.List(ctx, t.collection)
	if err != nil {
		return nil, fmt.Errorf("列出 %s: %w", t.collection, err)
	}

	var out []T
	for _, data := range rows {
		if !f.Match(data) {
			continue
		}
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("反序列化 %s 失败: %w", t.collection, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// All 返回集合中的全部记录
func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	return t.Find(ctx, Filter{})
}

// Subscribe 订阅本集合中满足过滤条件的变更
func (t *Table[T]) Subscribe(ctx context.Context, f Filter, fn func(protocol.ChangeEvent)) (func(), error) {
	return t.backend.Subscribe(ctx, func(e protocol.ChangeEvent) {
		if e.Collection != t.collection || !f.Match(e.Record) {
			return
		}
		fn(e)
	})
}

// publish 写入已经成功，通知失败只记录日志
func (t *Table[T]) publish(ctx context.Context, op protocol.Op, id string, data []byte) {
	e := protocol.ChangeEvent{
		Op:         op,
		Collection: t.collection,
		ID:         id,
		Record:     data,
		At:         t.now(),
	}
	if err := t.backend.Publish(ctx, e); err != nil {
		t.log.Warn("发布变更通知失败",
			zap.String("collection", t.collection),
			zap.String("id", id),
			zap.String("op", string(op)),
			zap.Error(err))
	}
}
