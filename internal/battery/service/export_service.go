package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/exporter"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
)

// ExportService 导出服务
type ExportService struct {
	repo *repository.RecordRepository
	now  func() time.Time
}

// NewExportService 创建导出服务
func NewExportService(repo *repository.RecordRepository) *ExportService {
	return &ExportService{repo: repo, now: time.Now}
}

// FileName 当天的导出文件名
func (s *ExportService) FileName(format string) string {
	return exporter.FileName(format, s.now())
}

// Export 导出记录；查询条件为空时导出全部，否则只导出当前筛选结果（忽略分页）
func (s *ExportService) Export(ctx context.Context, format string, q ListQuery, w io.Writer) error {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	records := FilterRecords(all, q)
	switch format {
	case exporter.FormatCSV:
		return exporter.WriteCSV(w, records)
	case exporter.FormatXLSX:
		f, err := exporter.BuildWorkbook(records)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Write(w)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// Template 导入模板
func (s *ExportService) Template(format string, w io.Writer) error {
	if format != exporter.FormatCSV && format != exporter.FormatXLSX {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return exporter.Template(w, format)
}
