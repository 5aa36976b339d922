package repository

import (
	"context"
	"hiring_tool_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "hiring_tool:"

type RedisKVStore struct {
	Client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{Client: client}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.Client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", util.ErrKeyNotFound
	}
	return v, err
}

func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	return s.Client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (s *RedisKVStore) Remove(ctx context.Context, key string) error {
	return s.Client.Del(ctx, redisKeyPrefix+key).Err()
}
