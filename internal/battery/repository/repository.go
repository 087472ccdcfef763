package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// 存储键（与浏览器本地存储保持一致）
const (
	KeyBatteries = "batteries"
	KeySettings  = "settings"
)

// ImageKey 单个电池的图片存储键，phase 为 before/after
func ImageKey(phase, btCode string) string {
	return fmt.Sprintf("%sRepairImages_%s", phase, btCode)
}

// KVStore 键值存储：每个键保存一整块JSON
type KVStore interface {
	// Get 读取键值，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Repositories 仓库集合
type Repositories struct {
	Record   *RecordRepository
	Settings *SettingsRepository
	Image    *ImageRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(kv KVStore, logger *zap.Logger) *Repositories {
	return &Repositories{
		Record:   NewRecordRepository(kv, logger),
		Settings: NewSettingsRepository(kv, logger),
		Image:    NewImageRepository(kv, logger),
	}
}

// Init 数据不存在时写入初始值（空记录列表与默认设置）
func (r *Repositories) Init(ctx context.Context) error {
	if err := r.Record.ensure(ctx); err != nil {
		return fmt.Errorf("init batteries: %w", err)
	}
	if err := r.Settings.ensure(ctx); err != nil {
		return fmt.Errorf("init settings: %w", err)
	}
	return nil
}
