package entity

import (
	"time"

	"gorm.io/datatypes"
)

// StoreEntry 键值存储表：一行保存一个键对应的整块JSON。
// Value 在 PostgreSQL 中为 jsonb，在 MySQL 中为 json。
type StoreEntry struct {
	Key       string         `json:"key" gorm:"column:entry_key;primaryKey;size:191"`
	Value     datatypes.JSON `json:"value" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (StoreEntry) TableName() string {
	return "kv_entries"
}
