package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/storage"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrMissingHeaders    = errors.New("missing required headers")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnknownList       = errors.New("unknown settings list")
	ErrInvalidImagePhase = errors.New("invalid image phase")
	ErrInvalidImportMode = errors.New("invalid import mode")
	ErrInvalidSettings   = errors.New("invalid settings")
	ErrEmptyBackup       = errors.New("backup contains neither batteries nor settings")
	ErrNoData            = errors.New("没有找到可导入的数据")
)

// MissingHeadersError 导入文件缺少规范字段
type MissingHeadersError struct {
	Source string // CSV / Excel
	Fields []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("%s文件缺少必要字段: %s", e.Source, strings.Join(e.Fields, ", "))
}

func (e *MissingHeadersError) Unwrap() error {
	return ErrMissingHeaders
}

// Options 服务配置
type Options struct {
	// StrictImport 导入时要求18个规范字段全部存在
	StrictImport bool
	// Blobs 图片存储，nil 表示图片以 data-URL 内联保存
	Blobs storage.BlobStore
}

// Services 服务集合
type Services struct {
	Record    *RecordService
	Settings  *SettingsService
	Import    *ImportService
	Export    *ExportService
	Dashboard *DashboardService
	Backup    *BackupService
	Image     *ImageService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, hub *sse.Hub, opts Options, logger *zap.Logger) *Services {
	imageSvc := NewImageService(repos.Image, opts.Blobs, logger)
	return &Services{
		Record:    NewRecordService(repos.Record, imageSvc, hub),
		Settings:  NewSettingsService(repos.Settings, hub),
		Import:    NewImportService(repos.Record, hub, opts.StrictImport, logger),
		Export:    NewExportService(repos.Record),
		Dashboard: NewDashboardService(repos.Record),
		Backup:    NewBackupService(repos.Record, repos.Settings, hub),
		Image:     imageSvc,
	}
}
