package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/wudi/internal/protocol"
	"github.com/palemoky/wudi/internal/protocol/codec"
)

const (
	// Redis key 前缀，实际 key 前面还有配置的 channel_prefix
	recordKeyPrefix = "record:"
	indexKeyPrefix  = "index:"
	changesChannel  = "changes"

	// WATCH 冲突时的最大重试次数
	maxTxRetries = 16
)

// RedisBackend Redis 存储。每条记录是一个 JSON 字符串 key，
// 每个集合用一个 SET 记录 ID；变更通知通过 PUBLISH 跨进程投递
type RedisBackend struct {
	client *redis.Client
	prefix string
	log    *zap.Logger

	mu   sync.Mutex
	subs map[*redis.PubSub]struct{}
}

// NewRedisBackend 创建 Redis 存储
func NewRedisBackend(client *redis.Client, prefix string, log *zap.Logger) *RedisBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBackend{
		client: client,
		prefix: prefix,
		log:    log,
		subs:   make(map[*redis.PubSub]struct{}),
	}
}

func (b *RedisBackend) recordKey(collection, id string) string {
	return b.prefix + recordKeyPrefix + collection + ":" + id
}

func (b *RedisBackend) indexKey(collection string) string {
	return b.prefix + indexKeyPrefix + collection
}

func (b *RedisBackend) channel() string {
	return b.prefix + changesChannel
}

func (b *RedisBackend) Insert(ctx context.Context, collection, id string, data []byte) error {
	ok, err := b.client.SetNX(ctx, b.recordKey(collection, id), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrDuplicate
	}
	return b.client.SAdd(ctx, b.indexKey(collection), id).Err()
}

// watch 在 WATCH key 的事务中执行 txf，冲突时重试
func (b *RedisBackend) watch(ctx context.Context, key string, txf func(tx *redis.Tx) error) error {
	for range maxTxRetries {
		err := b.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%s 并发冲突次数过多", key)
}

func (b *RedisBackend) Update(ctx context.Context, collection, id string, fn func(old []byte) ([]byte, error)) ([]byte, error) {
	key := b.recordKey(collection, id)
	var out []byte
	err := b.watch(ctx, key, func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		data, err := fn(old)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		out = data
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *RedisBackend) Get(ctx context.Context, collection, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.recordKey(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (b *RedisBackend) Delete(ctx context.Context, collection, id string) ([]byte, error) {
	key := b.recordKey(collection, id)
	var old []byte
	err := b.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, b.indexKey(collection), id)
			return nil
		})
		old = data
		return err
	})
	if err != nil {
		return nil, err
	}
	return old, nil
}

// List 按 ID 排序返回集合中的所有记录
func (b *RedisBackend) List(ctx context.Context, collection string) ([][]byte, error) {
	ids, err := b.client.SMembers(ctx, b.indexKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.recordKey(collection, id)
	}
	values, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(values))
	for _, v := range values {
		// 索引和记录之间可能短暂不一致，跳过已经删除的
		if s, ok := v.(string); ok {
			out = append(out, []byte(s))
		}
	}
	return out, nil
}

func (b *RedisBackend) Publish(ctx context.Context, e protocol.ChangeEvent) error {
	data, err := codec.Encode(e)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel(), data).Err()
}

// Subscribe 订阅变更频道。返回时订阅已经确认，回调在单独的 goroutine 中按顺序执行
func (b *RedisBackend) Subscribe(ctx context.Context, fn func(protocol.ChangeEvent)) (func(), error) {
	ps := b.client.Subscribe(ctx, b.channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("订阅变更频道失败: %w", err)
	}

	b.mu.Lock()
	b.subs[ps] = struct{}{}
	b.mu.Unlock()

	ch := ps.Channel()
	go func() {
		for msg := range ch {
			e, err := codec.Decode([]byte(msg.Payload))
			if err != nil {
				b.log.Warn("丢弃无法解码的变更通知", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			fn(e)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ps)
			b.mu.Unlock()
			_ = ps.Close()
		})
	}, nil
}

// Close 关闭所有订阅，redis.Client 由调用方关闭
func (b *RedisBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for ps := range b.subs {
		errs = append(errs, ps.Close())
	}
	clear(b.subs)
	return errors.Join(errs...)
}
