package handler

import (
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler 数据看板处理器
type DashboardHandler struct {
	svc    *service.DashboardService
	logger *zap.Logger
}

// NewDashboardHandler 创建数据看板处理器
func NewDashboardHandler(svc *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get 看板统计
// GET /api/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context())
	if err != nil {
		InternalError(c, h.logger, "无法读取电池数据", err)
		return
	}
	Success(c, d)
}
