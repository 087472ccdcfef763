package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKV 数据库键值存储（PostgreSQL / MySQL）
type GormKV struct {
	db *gorm.DB
}

// NewGormKV 创建数据库存储
func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

// Migrate 创建 kv_entries 表
func (r *GormKV) Migrate() error {
	return r.db.AutoMigrate(&entity.StoreEntry{})
}

func (r *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var e entity.StoreEntry
	err := r.db.WithContext(ctx).Where("entry_key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(e.Value), nil
}

func (r *GormKV) Put(ctx context.Context, key string, value []byte) error {
	e := entity.StoreEntry{Key: key, Value: datatypes.JSON(value), UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (r *GormKV) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&entity.StoreEntry{}).Error
}
