package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/exporter"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/importer"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var contentTypes = map[string]string{
	exporter.FormatCSV:  "text/csv; charset=utf-8",
	exporter.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// TransferHandler 导入导出处理器
type TransferHandler struct {
	importSvc *service.ImportService
	exportSvc *service.ExportService
	maxSize   int64
	logger    *zap.Logger
}

// NewTransferHandler 创建导入导出处理器
func NewTransferHandler(importSvc *service.ImportService, exportSvc *service.ExportService, maxSize int64, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{importSvc: importSvc, exportSvc: exportSvc, maxSize: maxSize, logger: logger}
}

// Import 导入CSV/Excel文件
// POST /api/batteries/import?mode=append|replace  (multipart: file)
func (h *TransferHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			Error(c, http.StatusRequestEntityTooLarge, "上传文件过大")
			return
		}
		BadRequest(c, "请选择要导入的文件")
		return
	}
	if h.maxSize > 0 && fileHeader.Size > h.maxSize {
		Error(c, http.StatusRequestEntityTooLarge, "上传文件过大")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, h.logger, "读取上传文件失败", err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		InternalError(c, h.logger, "读取上传文件失败", err)
		return
	}

	result, err := h.importSvc.Import(c.Request.Context(), fileHeader.Filename, data, c.Query("mode"))
	if err != nil {
		var missing *service.MissingHeadersError
		switch {
		case errors.As(err, &missing):
			BadRequest(c, missing.Error())
		case errors.Is(err, importer.ErrEmptyInput):
			BadRequest(c, importer.ErrEmptyInput.Error())
		case errors.Is(err, service.ErrNoData):
			BadRequest(c, service.ErrNoData.Error())
		case errors.Is(err, service.ErrUnsupportedFormat):
			BadRequest(c, "不支持的文件格式，请上传CSV或Excel文件")
		case errors.Is(err, service.ErrInvalidImportMode):
			BadRequest(c, "导入模式只能是 append 或 replace")
		default:
			InternalError(c, h.logger, "导入数据失败", err)
		}
		return
	}
	Success(c, result)
}

// Export 导出记录，可带列表筛选条件只导出当前筛选结果
// GET /api/batteries/export?format=csv|xlsx&search=&status=&dateRange=
func (h *TransferHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", exporter.FormatXLSX)
	contentType, ok := contentTypes[format]
	if !ok {
		BadRequest(c, "不支持的导出格式: "+format)
		return
	}
	var q service.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, "查询参数错误")
		return
	}

	var buf bytes.Buffer
	if err := h.exportSvc.Export(c.Request.Context(), format, q, &buf); err != nil {
		InternalError(c, h.logger, "导出数据失败", err)
		return
	}
	attachment(c, h.exportSvc.FileName(format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Template 下载导入模板
// GET /api/batteries/template?format=csv|xlsx
func (h *TransferHandler) Template(c *gin.Context) {
	format := c.DefaultQuery("format", exporter.FormatXLSX)
	contentType, ok := contentTypes[format]
	if !ok {
		BadRequest(c, "不支持的模板格式: "+format)
		return
	}

	var buf bytes.Buffer
	if err := h.exportSvc.Template(format, &buf); err != nil {
		InternalError(c, h.logger, "生成导入模板失败", err)
		return
	}
	attachment(c, fmt.Sprintf("%s导入模板.%s", exporter.SheetName, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
}
