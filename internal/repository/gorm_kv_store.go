package repository

import (
	"context"
	"errors"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKVStore 以 kv_entries 表作为键值后端
type GormKVStore struct {
	DB *gorm.DB
}

func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{DB: db}
}

// key 是保留字，交给 gorm 按方言引用列名
func keyEq(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (s *GormKVStore) Get(ctx context.Context, key string) (string, error) {
	var entry model.KVEntry
	err := s.DB.WithContext(ctx).Where(keyEq(key)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *GormKVStore) Set(ctx context.Context, key, value string) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormKVStore) Remove(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where(keyEq(key)).Delete(&model.KVEntry{}).Error
}
