package kvstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Sink 状态上报的键值存储抽象
type Sink interface {
	Put(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// RedisSink 基于Redis的状态上报实现
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink 创建Redis状态存储
func NewRedisSink(addr, password string, db int) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping 检查Redis连通性
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Put 序列化为JSON后写入，不设置过期时间
func (s *RedisSink) Put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal status value: %w", err)
	}
	return s.client.Set(ctx, key, data, 0).Err()
}

// Get 读取原始JSON
func (s *RedisSink) Get(ctx context.Context, key string) ([]byte, error) {
	return s.client.Get(ctx, key).Bytes()
}

// Close 关闭底层连接
func (s *RedisSink) Close() error {
	return s.client.Close()
}

// MemorySink 进程内状态存储，Redis未启用时使用，也便于测试
type MemorySink struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemorySink 创建进程内状态存储
func NewMemorySink() *MemorySink {
	return &MemorySink{values: map[string][]byte{}}
}

func (s *MemorySink) Put(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal status value: %w", err)
	}
	s.mu.Lock()
	s.values[key] = data
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.values[key]
	if !ok {
		return nil, redis.Nil
	}
	return data, nil
}

func (s *MemorySink) Close() error { return nil }
