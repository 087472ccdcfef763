package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"go.uber.org/zap"
)

// SettingsRepository 系统设置仓库
type SettingsRepository struct {
	kv     KVStore
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSettingsRepository 创建系统设置仓库
func NewSettingsRepository(kv KVStore, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{kv: kv, logger: logger}
}

func (r *SettingsRepository) ensure(ctx context.Context) error {
	if _, err := r.kv.Get(ctx, KeySettings); errors.Is(err, ErrNotFound) {
		return r.Save(ctx, entity.DefaultSettings())
	} else if err != nil {
		return err
	}
	return nil
}

// Get 读取设置；不存在或不是合法JSON时返回默认设置，缺失的列表用默认值补齐
func (r *SettingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	data, err := r.kv.Get(ctx, KeySettings)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return entity.DefaultSettings(), nil
		}
		return nil, err
	}

	var settings entity.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		if !json.Valid(data) {
			r.logger.Warn("Malformed settings data, using defaults", zap.Error(err))
			return entity.DefaultSettings(), nil
		}
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	settings.FillDefaults()
	return &settings, nil
}

// Save 整体写回设置
func (r *SettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return r.kv.Put(ctx, KeySettings, data)
}

// Modify 在锁内读取、修改并写回设置
func (r *SettingsRepository) Modify(ctx context.Context, fn func(*entity.Settings) error) (*entity.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(settings); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
