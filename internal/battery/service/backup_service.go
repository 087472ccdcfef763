package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"golang.org/x/sync/errgroup"
)

// BackupService 数据备份与恢复
type BackupService struct {
	records  *repository.RecordRepository
	settings *repository.SettingsRepository
	hub      *sse.Hub
	now      func() time.Time
}

// NewBackupService 创建备份服务
func NewBackupService(records *repository.RecordRepository, settings *repository.SettingsRepository, hub *sse.Hub) *BackupService {
	return &BackupService{records: records, settings: settings, hub: hub, now: time.Now}
}

// Backup 备份快照
type Backup struct {
	Batteries []entity.Record  `json:"batteries"`
	Settings  *entity.Settings `json:"settings"`
	Timestamp string           `json:"timestamp"`
}

// RestoreRequest 恢复请求，只写入提供了的部分
type RestoreRequest struct {
	Batteries *[]entity.Record `json:"batteries"`
	Settings  *entity.Settings `json:"settings"`
}

// Backup 同时读取记录和设置
func (s *BackupService) Backup(ctx context.Context) (*Backup, error) {
	var (
		records  []entity.Record
		settings *entity.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.records.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Backup{
		Batteries: records,
		Settings:  settings,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}, nil
}

// Restore 用备份覆盖记录和/或设置
func (s *BackupService) Restore(ctx context.Context, req RestoreRequest) error {
	if req.Batteries == nil && req.Settings == nil {
		return ErrEmptyBackup
	}
	if req.Batteries != nil {
		records := *req.Batteries
		for i := range records {
			records[i].Normalize()
		}
		restored, err := s.records.ReplaceAll(ctx, records)
		if err != nil {
			return fmt.Errorf("restore batteries: %w", err)
		}
		s.hub.PublishBatteryUpdate("", ActionRestored, len(restored))
	}
	if req.Settings != nil {
		req.Settings.FillDefaults()
		if err := s.settings.Save(ctx, req.Settings); err != nil {
			return fmt.Errorf("restore settings: %w", err)
		}
		s.hub.PublishSettingsUpdate("", ActionRestored)
	}
	return nil
}
