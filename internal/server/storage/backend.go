package storage

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/palemoky/wudi/internal/protocol"
)

var (
	ErrNotFound  = errors.New("记录不存在")
	ErrDuplicate = errors.New("记录已存在")
)

// Backend 按集合和 ID 存取 JSON 记录，并负责投递变更通知
type Backend interface {
	// Insert 写入新记录，ID 已存在时返回 ErrDuplicate
	Insert(ctx context.Context, collection, id string, data []byte) error
	// Update 用 fn 的返回值替换已有记录，记录不存在时返回 ErrNotFound
	Update(ctx context.Context, collection, id string, fn func(old []byte) ([]byte, error)) ([]byte, error)
	Get(ctx context.Context, collection, id string) ([]byte, error)
	// Delete 删除并返回删除前的记录
	Delete(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)

	Publish(ctx context.Context, e protocol.ChangeEvent) error
	// Subscribe 注册变更回调，返回的函数用于取消订阅
	Subscribe(ctx context.Context, fn func(protocol.ChangeEvent)) (func(), error)
	Close() error
}

// Filter 按一个顶层 JSON 字段做相等过滤，Field 为空时匹配所有记录
type Filter struct {
	Field string
	Value any
}

// Match 判断一条 JSON 记录是否满足过滤条件
func (f Filter) Match(record []byte) bool {
	if f.Field == "" {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(record, &fields); err != nil {
		return false
	}
	got, ok := fields[f.Field]
	if !ok {
		return false
	}
	want, err := normalize(f.Value)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(got, want)
}

// normalize 把 Go 值转成 JSON 解码后的形式，使 int 和 float64 等可以比较
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(data, &out)
	return out, err
}
