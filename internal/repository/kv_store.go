package repository

import (
	"context"
	"encoding/json"
	"errors"
	"hiring_tool_backend/internal/util"
	"sync"
)

// KVStore 键值持久化后端
type KVStore interface {
	// Get 键不存在时返回 util.ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove 删除不存在的键不报错
	Remove(ctx context.Context, key string) error
}

// MemoryKVStore 内存实现，用于测试与 kv_backend=memory
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string]string)}
}

func (s *MemoryKVStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", util.ErrKeyNotFound
	}
	return v, nil
}

func (s *MemoryKVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryKVStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len 当前键数量
func (s *MemoryKVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// loadJSON 读取并反序列化，键不存在时 found=false
func loadJSON(ctx context.Context, store KVStore, key string, out interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, util.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, util.StorageUnavailable(err)
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, err
	}
	return true, nil
}

func saveJSON(ctx context.Context, store KVStore, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, string(b)); err != nil {
		return util.StorageUnavailable(err)
	}
	return nil
}

// LoadJSON 供服务层读取会话类键值
func LoadJSON(ctx context.Context, store KVStore, key string, out interface{}) (bool, error) {
	return loadJSON(ctx, store, key, out)
}

func SaveJSON(ctx context.Context, store KVStore, key string, v interface{}) error {
	return saveJSON(ctx, store, key, v)
}
