package repository

import (
	"context"
	"errors"
	"hiring_tool_backend/internal/util"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore 模拟后端不可用
type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (brokenStore) Set(ctx context.Context, key, value string) error {
	return errors.New("connection refused")
}

func (brokenStore) Remove(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func exerciseKVStore(t *testing.T, store KVStore) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, util.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, util.KeyAuthToken, "token_1"))
	v, err := store.Get(ctx, util.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "token_1", v)

	require.NoError(t, store.Set(ctx, util.KeyAuthToken, "token_2"))
	v, err = store.Get(ctx, util.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "token_2", v)

	require.NoError(t, store.Remove(ctx, util.KeyAuthToken))
	_, err = store.Get(ctx, util.KeyAuthToken)
	assert.ErrorIs(t, err, util.ErrKeyNotFound)

	// 删除不存在的键不报错
	assert.NoError(t, store.Remove(ctx, util.KeyAuthToken))
}

func TestMemoryKVStore(t *testing.T) {
	exerciseKVStore(t, NewMemoryKVStore())
}

func TestRedisKVStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisKVStore(client)
	exerciseKVStore(t, store)

	require.NoError(t, store.Set(context.Background(), util.KeyTodos, "[]"))
	assert.True(t, mr.Exists("hiring_tool:todos"))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKVStore()

	var out []string
	found, err := LoadJSON(ctx, store, "list", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(ctx, store, "list", []string{"a", "b"}))
	found, err = LoadJSON(ctx, store, "list", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestJSONHelpersWrapBackendErrors(t *testing.T) {
	ctx := context.Background()

	var out []string
	_, err := LoadJSON(ctx, brokenStore{}, "list", &out)
	assert.Equal(t, util.KindStorageUnavailable, util.KindOf(err))

	err = SaveJSON(ctx, brokenStore{}, "list", []string{"a"})
	assert.Equal(t, util.KindStorageUnavailable, util.KindOf(err))
}
