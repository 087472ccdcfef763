package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadHandler 图片上传处理器
type UploadHandler struct {
	svc     *service.ImageService
	maxSize int64
	logger  *zap.Logger
}

// NewUploadHandler 创建图片上传处理器
func NewUploadHandler(svc *service.ImageService, maxSize int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, maxSize: maxSize, logger: logger}
}

// Upload 处理图片上传，返回可直接写入记录的图片对象
// POST /api/upload  (multipart: files 或 file)
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		if isTooLarge(err) {
			Error(c, http.StatusRequestEntityTooLarge, "上传文件过大")
			return
		}
		BadRequest(c, "无法解析上传文件: "+err.Error())
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		// 也尝试获取单文件
		files = form.File["file"]
	}
	if len(files) == 0 {
		BadRequest(c, "没有上传文件")
		return
	}

	uploaded := make([]entity.Image, 0, len(files))
	for _, fileHeader := range files {
		if h.maxSize > 0 && fileHeader.Size > h.maxSize {
			Error(c, http.StatusRequestEntityTooLarge, "上传文件过大: "+fileHeader.Filename)
			return
		}
		contentType := fileHeader.Header.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, "image/") {
			BadRequest(c, "只能上传图片文件: "+fileHeader.Filename)
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			InternalError(c, h.logger, "读取上传文件失败", err)
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			InternalError(c, h.logger, "读取上传文件失败", err)
			return
		}
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		img, err := h.svc.Upload(c.Request.Context(), fileHeader.Filename, contentType, data)
		if err != nil {
			InternalError(c, h.logger, "保存文件失败", err)
			return
		}
		uploaded = append(uploaded, *img)
	}

	Success(c, uploaded)
}
