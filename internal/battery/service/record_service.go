package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"github.com/samber/lo"
)

// 记录变更动作
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
	ActionRestored = "restored"
	ActionDeduped  = "deduped"
)

var imageFields = []string{"beforeRepairImages", "afterRepairImages"}

// RecordService 维修记录服务
type RecordService struct {
	repo   *repository.RecordRepository
	images *ImageService
	hub    *sse.Hub
}

// NewRecordService 创建维修记录服务
func NewRecordService(repo *repository.RecordRepository, images *ImageService, hub *sse.Hub) *RecordService {
	return &RecordService{repo: repo, images: images, hub: hub}
}

// List 获取全部记录
func (s *RecordService) List(ctx context.Context) ([]entity.Record, error) {
	return s.repo.GetAll(ctx)
}

// Query 过滤并分页
func (s *RecordService) Query(ctx context.Context, q ListQuery) (*ListResult, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(FilterRecords(records, q), q.Page, q.PageSize), nil
}

// Get 获取单条记录
func (s *RecordService) Get(ctx context.Context, id string) (*entity.Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Create 创建记录
func (s *RecordService) Create(ctx context.Context, rec entity.Record) (*entity.Record, error) {
	rec.Normalize()
	rec.BeforeImages = s.images.Offload(ctx, rec.BeforeImages)
	rec.AfterImages = s.images.Offload(ctx, rec.AfterImages)

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	s.hub.PublishBatteryUpdate(created.ID, ActionCreated, 1)
	return created, nil
}

// Update 浅合并更新
func (s *RecordService) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*entity.Record, error) {
	for _, field := range imageFields {
		raw, ok := patch[field]
		if !ok {
			continue
		}
		var images []entity.Image
		if err := json.Unmarshal(raw, &images); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", repository.ErrInvalidPatch, field, err)
		}
		encoded, err := json.Marshal(s.images.Offload(ctx, images))
		if err != nil {
			return nil, fmt.Errorf("marshal images: %w", err)
		}
		patch[field] = encoded
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.hub.PublishBatteryUpdate(id, ActionUpdated, 1)
	return updated, nil
}

// Delete 删除记录
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.hub.PublishBatteryUpdate(id, ActionDeleted, 1)
	return nil
}

// DedupeResult 去重结果
type DedupeResult struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

// Dedupe 按电池BT码去重，保留最后出现（最新）的记录；没有BT码的记录保留
func (s *RecordService) Dedupe(ctx context.Context) (*DedupeResult, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	kept := DedupeByBtCode(records)
	if len(kept) != len(records) {
		if _, err := s.repo.ReplaceAll(ctx, kept); err != nil {
			return nil, fmt.Errorf("save deduped records: %w", err)
		}
		s.hub.PublishBatteryUpdate("", ActionDeduped, len(records)-len(kept))
	}
	return &DedupeResult{Before: len(records), After: len(kept)}, nil
}

// DedupeByBtCode 同一BT码只保留最后一条，保持原有相对顺序
func DedupeByBtCode(records []entity.Record) []entity.Record {
	last := make(map[string]int, len(records))
	for i, rec := range records {
		if rec.BatteryBtCode != "" {
			last[rec.BatteryBtCode] = i
		}
	}
	return lo.Filter(records, func(rec entity.Record, i int) bool {
		if rec.BatteryBtCode == "" {
			return true
		}
		return last[rec.BatteryBtCode] == i
	})
}
