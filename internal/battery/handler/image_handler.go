package handler

import (
	"errors"
	"net/http"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageHandler 维修前后图片处理器
type ImageHandler struct {
	svc    *service.ImageService
	logger *zap.Logger
}

// NewImageHandler 创建图片处理器
func NewImageHandler(svc *service.ImageService, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{svc: svc, logger: logger}
}

// Get 获取某电池某阶段的图片
// GET /api/images/:btCode/:phase
func (h *ImageHandler) Get(c *gin.Context) {
	images, err := h.svc.Get(c.Request.Context(), c.Param("phase"), c.Param("btCode"))
	if err != nil {
		h.fail(c, err, "无法读取图片")
		return
	}
	Success(c, images)
}

// Save 整体替换某电池某阶段的图片
// PUT /api/images/:btCode/:phase
func (h *ImageHandler) Save(c *gin.Context) {
	var images []entity.Image
	if err := c.ShouldBindJSON(&images); err != nil {
		if isTooLarge(err) {
			Error(c, http.StatusRequestEntityTooLarge, "图片过大")
			return
		}
		BadRequest(c, BindingMessage(err))
		return
	}
	saved, err := h.svc.Save(c.Request.Context(), c.Param("phase"), c.Param("btCode"), images)
	if err != nil {
		h.fail(c, err, "无法保存图片")
		return
	}
	Success(c, saved)
}

func (h *ImageHandler) fail(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrInvalidImagePhase) {
		BadRequest(c, "图片阶段只能是 before 或 after")
		return
	}
	InternalError(c, h.logger, message, err)
}
