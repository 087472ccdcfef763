package handler

import (
	"errors"
	"net/http"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BackupHandler 备份恢复处理器
type BackupHandler struct {
	svc    *service.BackupService
	logger *zap.Logger
}

// NewBackupHandler 创建备份恢复处理器
func NewBackupHandler(svc *service.BackupService, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{svc: svc, logger: logger}
}

// Backup 导出全部记录与设置
// GET /api/backup
func (h *BackupHandler) Backup(c *gin.Context) {
	backup, err := h.svc.Backup(c.Request.Context())
	if err != nil {
		InternalError(c, h.logger, "无法创建数据备份", err)
		return
	}
	Success(c, backup)
}

// Restore 用备份覆盖数据
// POST /api/restore
func (h *BackupHandler) Restore(c *gin.Context) {
	var req service.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			Error(c, http.StatusRequestEntityTooLarge, "备份文件过大")
			return
		}
		BadRequest(c, "无效的备份数据: "+err.Error())
		return
	}
	if err := h.svc.Restore(c.Request.Context(), req); err != nil {
		if errors.Is(err, service.ErrEmptyBackup) {
			BadRequest(c, "备份数据中没有电池数据或系统设置")
			return
		}
		InternalError(c, h.logger, "无法恢复数据", err)
		return
	}
	OK(c)
}
