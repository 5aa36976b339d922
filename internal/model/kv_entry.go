package model

import "time"

// KVEntry 数据库键值存储后端使用的表
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
