package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"github.com/samber/lo"
)

// SettingsService 系统设置服务
type SettingsService struct {
	repo *repository.SettingsRepository
	hub  *sse.Hub
	now  func() time.Time
}

// NewSettingsService 创建系统设置服务
func NewSettingsService(repo *repository.SettingsRepository, hub *sse.Hub) *SettingsService {
	return &SettingsService{repo: repo, hub: hub, now: time.Now}
}

// EntryRequest 新增/编辑设置条目
type EntryRequest struct {
	Code         string  `json:"code" binding:"required,max=64"`
	Name         string  `json:"name" binding:"required,max=128"`
	Description  *string `json:"description"`
	ContactPhone *string `json:"contactPhone"`
}

// Get 获取设置
func (s *SettingsService) Get(ctx context.Context) (*entity.Settings, error) {
	return s.repo.Get(ctx)
}

// Merge 顶层合并：请求中出现的列表整体替换当前列表
func (s *SettingsService) Merge(ctx context.Context, patch map[string]json.RawMessage) (*entity.Settings, error) {
	settings, err := s.repo.Modify(ctx, func(cur *entity.Settings) error {
		for name, raw := range patch {
			list := cur.List(name)
			if list == nil {
				continue
			}
			var entries []entity.SettingsEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, name, err)
			}
			if entries == nil {
				entries = []entity.SettingsEntry{}
			}
			*list = entries
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.hub.PublishSettingsUpdate("", ActionUpdated)
	return settings, nil
}

// AddEntry 新增条目：ID 为当前最大ID+1，创建日期为当天
func (s *SettingsService) AddEntry(ctx context.Context, listName string, req EntryRequest) (*entity.SettingsEntry, error) {
	var added entity.SettingsEntry
	_, err := s.repo.Modify(ctx, func(cur *entity.Settings) error {
		list := cur.List(listName)
		if list == nil {
			return ErrUnknownList
		}
		maxID := lo.Reduce(*list, func(m int, e entity.SettingsEntry, _ int) int {
			return max(m, e.ID)
		}, 0)
		added = entity.SettingsEntry{
			ID:        maxID + 1,
			Code:      req.Code,
			Name:      req.Name,
			CreatedAt: s.now().Format("2006-01-02"),
		}
		if req.Description != nil {
			added.Description = *req.Description
		}
		if req.ContactPhone != nil {
			added.ContactPhone = *req.ContactPhone
		}
		*list = append(*list, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.hub.PublishSettingsUpdate(listName, ActionCreated)
	return &added, nil
}

// UpdateEntry 编辑条目：合并 code/name 以及提交了的 description/contactPhone
func (s *SettingsService) UpdateEntry(ctx context.Context, listName string, id int, req EntryRequest) (*entity.SettingsEntry, error) {
	var updated entity.SettingsEntry
	_, err := s.repo.Modify(ctx, func(cur *entity.Settings) error {
		list := cur.List(listName)
		if list == nil {
			return ErrUnknownList
		}
		_, index, ok := lo.FindIndexOf(*list, func(e entity.SettingsEntry) bool { return e.ID == id })
		if !ok {
			return repository.ErrNotFound
		}
		e := &(*list)[index]
		e.Code = req.Code
		e.Name = req.Name
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.ContactPhone != nil {
			e.ContactPhone = *req.ContactPhone
		}
		updated = *e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.hub.PublishSettingsUpdate(listName, ActionUpdated)
	return &updated, nil
}

// DeleteEntry 按ID删除条目；引用该条目的记录保留原文本
func (s *SettingsService) DeleteEntry(ctx context.Context, listName string, id int) error {
	_, err := s.repo.Modify(ctx, func(cur *entity.Settings) error {
		list := cur.List(listName)
		if list == nil {
			return ErrUnknownList
		}
		filtered := lo.Reject(*list, func(e entity.SettingsEntry, _ int) bool { return e.ID == id })
		if len(filtered) == len(*list) {
			return repository.ErrNotFound
		}
		*list = filtered
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.PublishSettingsUpdate(listName, ActionDeleted)
	return nil
}
