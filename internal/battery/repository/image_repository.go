package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"go.uber.org/zap"
)

// ImageRepository 按电池BT码保存维修前/后图片列表
type ImageRepository struct {
	kv     KVStore
	logger *zap.Logger
}

// NewImageRepository 创建图片仓库
func NewImageRepository(kv KVStore, logger *zap.Logger) *ImageRepository {
	return &ImageRepository{kv: kv, logger: logger}
}

// Get 读取图片列表，不存在时返回空列表
func (r *ImageRepository) Get(ctx context.Context, phase, btCode string) ([]entity.Image, error) {
	data, err := r.kv.Get(ctx, ImageKey(phase, btCode))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []entity.Image{}, nil
		}
		return nil, err
	}
	var images []entity.Image
	if err := json.Unmarshal(data, &images); err != nil {
		r.logger.Warn("Malformed image data, treating as empty",
			zap.String("bt_code", btCode), zap.String("phase", phase), zap.Error(err))
		return []entity.Image{}, nil
	}
	if images == nil {
		images = []entity.Image{}
	}
	return images, nil
}

// Save 整体写回图片列表，空列表时删除键
func (r *ImageRepository) Save(ctx context.Context, phase, btCode string, images []entity.Image) error {
	if len(images) == 0 {
		return r.kv.Delete(ctx, ImageKey(phase, btCode))
	}
	data, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	return r.kv.Put(ctx, ImageKey(phase, btCode), data)
}
