package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 图片阶段
const (
	PhaseBefore = "before"
	PhaseAfter  = "after"
)

// ImageService 维修图片服务
type ImageService struct {
	repo   *repository.ImageRepository
	blobs  storage.BlobStore
	logger *zap.Logger
}

// NewImageService 创建图片服务，blobs 为 nil 时图片内联保存
func NewImageService(repo *repository.ImageRepository, blobs storage.BlobStore, logger *zap.Logger) *ImageService {
	return &ImageService{repo: repo, blobs: blobs, logger: logger}
}

func validPhase(phase string) bool {
	return phase == PhaseBefore || phase == PhaseAfter
}

// Offload 补齐图片ID；配置了外部存储时把 data-URL 内容转存并改为URL引用
func (s *ImageService) Offload(ctx context.Context, images []entity.Image) []entity.Image {
	out := make([]entity.Image, 0, len(images))
	for _, img := range images {
		if img.ID == "" {
			img.ID = uuid.New().String()
		}
		if s.blobs != nil && img.URL == "" && strings.HasPrefix(img.Data, "data:") {
			if err := s.store(ctx, &img); err != nil {
				// 转存失败时保留内联数据
				s.logger.Warn("Offload image failed, keeping inline data",
					zap.String("image_id", img.ID), zap.String("name", img.Name), zap.Error(err))
			}
		}
		out = append(out, img)
	}
	return out
}

func (s *ImageService) store(ctx context.Context, img *entity.Image) error {
	contentType, data, err := storage.DecodeDataURL(img.Data)
	if err != nil {
		return err
	}
	name := img.Name
	if name == "" {
		name = img.ID
	}
	url, err := s.blobs.Put(ctx, name, contentType, data)
	if err != nil {
		return err
	}
	img.URL = url
	img.Data = ""
	if img.Type == "" {
		img.Type = contentType
	}
	if img.Size == 0 {
		img.Size = int64(len(data))
	}
	return nil
}

// Upload 保存上传的图片文件
func (s *ImageService) Upload(ctx context.Context, name, contentType string, data []byte) (*entity.Image, error) {
	img := &entity.Image{
		ID:   uuid.New().String(),
		Name: name,
		Size: int64(len(data)),
		Type: contentType,
	}
	if s.blobs == nil {
		img.Data = storage.EncodeDataURL(contentType, data)
		return img, nil
	}
	url, err := s.blobs.Put(ctx, name, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	img.URL = url
	return img, nil
}

// Get 获取某电池某阶段的图片
func (s *ImageService) Get(ctx context.Context, phase, btCode string) ([]entity.Image, error) {
	if !validPhase(phase) {
		return nil, ErrInvalidImagePhase
	}
	return s.repo.Get(ctx, phase, btCode)
}

// Save 保存某电池某阶段的图片（整体替换）
func (s *ImageService) Save(ctx context.Context, phase, btCode string, images []entity.Image) ([]entity.Image, error) {
	if !validPhase(phase) {
		return nil, ErrInvalidImagePhase
	}
	images = s.Offload(ctx, images)
	if err := s.repo.Save(ctx, phase, btCode, images); err != nil {
		return nil, err
	}
	return images, nil
}
