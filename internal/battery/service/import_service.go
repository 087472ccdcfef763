package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/importer"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"go.uber.org/zap"
)

// 导入模式
const (
	ImportAppend  = "append"
	ImportReplace = "replace"
)

// ImportService 批量导入服务
type ImportService struct {
	repo   *repository.RecordRepository
	hub    *sse.Hub
	strict bool
	logger *zap.Logger
}

// NewImportService 创建导入服务
func NewImportService(repo *repository.RecordRepository, hub *sse.Hub, strict bool, logger *zap.Logger) *ImportService {
	return &ImportService{repo: repo, hub: hub, strict: strict, logger: logger}
}

// ImportResult 导入结果
type ImportResult struct {
	Mode     string   `json:"mode"`
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Missing  []string `json:"missing,omitempty"`
}

// Parse 按扩展名解析导入文件
func (s *ImportService) Parse(filename string, data []byte) (*importer.Result, string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		res, err := importer.ParseCSVBytes(data)
		return res, "CSV", err
	case ".xlsx", ".xlsm", ".xls":
		res, err := importer.ParseWorkbook(bytes.NewReader(data))
		return res, "Excel", err
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
}

// Import 解析文件并追加或替换全部记录；严格模式下缺少任一规范字段则整体拒绝，
// 只有表头没有数据行时同样拒绝
func (s *ImportService) Import(ctx context.Context, filename string, data []byte, mode string) (*ImportResult, error) {
	if mode == "" {
		mode = ImportAppend
	}
	if mode != ImportAppend && mode != ImportReplace {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImportMode, mode)
	}

	res, source, err := s.Parse(filename, data)
	if err != nil {
		return nil, err
	}
	if s.strict && !res.Complete() {
		return nil, &MissingHeadersError{Source: source, Fields: res.Missing}
	}
	if len(res.Records) == 0 {
		return nil, ErrNoData
	}

	records := make([]entity.Record, len(res.Records))
	for i, rec := range res.Records {
		rec.Normalize()
		records[i] = rec
	}

	if mode == ImportReplace {
		_, err = s.repo.ReplaceAll(ctx, records)
	} else {
		_, err = s.repo.Append(ctx, records)
	}
	if err != nil {
		return nil, fmt.Errorf("save imported records: %w", err)
	}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Records imported",
		zap.String("file", filename),
		zap.String("mode", mode),
		zap.Int("imported", len(records)),
		zap.Int("total", len(all)),
		zap.Strings("missing", res.Missing))
	s.hub.PublishBatteryUpdate("", ActionImported, len(records))

	return &ImportResult{Mode: mode, Imported: len(records), Total: len(all), Missing: res.Missing}, nil
}
