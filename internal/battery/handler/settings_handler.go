package handler

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettingsHandler 系统设置处理器
type SettingsHandler struct {
	svc    *service.SettingsService
	logger *zap.Logger
}

// NewSettingsHandler 创建系统设置处理器
func NewSettingsHandler(svc *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

// Get 获取系统设置
// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.svc.Get(c.Request.Context())
	if err != nil {
		InternalError(c, h.logger, "无法读取系统设置", err)
		return
	}
	Success(c, settings)
}

// Update 合并更新系统设置
// PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, BindingMessage(err))
		return
	}
	settings, err := h.svc.Merge(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSettings) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, h.logger, "无法更新系统设置", err)
		return
	}
	Success(c, settings)
}

// AddEntry 新增设置条目
// POST /api/settings/:list
func (h *SettingsHandler) AddEntry(c *gin.Context) {
	var req service.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, BindingMessage(err))
		return
	}
	entry, err := h.svc.AddEntry(c.Request.Context(), c.Param("list"), req)
	if err != nil {
		h.entryError(c, err)
		return
	}
	Created(c, entry)
}

// UpdateEntry 编辑设置条目
// PUT /api/settings/:list/:id
func (h *SettingsHandler) UpdateEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		BadRequest(c, "无效的条目ID")
		return
	}
	var req service.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, BindingMessage(err))
		return
	}
	entry, err := h.svc.UpdateEntry(c.Request.Context(), c.Param("list"), id, req)
	if err != nil {
		h.entryError(c, err)
		return
	}
	Success(c, entry)
}

// DeleteEntry 删除设置条目
// DELETE /api/settings/:list/:id
func (h *SettingsHandler) DeleteEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		BadRequest(c, "无效的条目ID")
		return
	}
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("list"), id); err != nil {
		h.entryError(c, err)
		return
	}
	OK(c)
}

func (h *SettingsHandler) entryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownList):
		NotFound(c, "未知的设置列表: "+c.Param("list"))
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "未找到设置条目")
	default:
		InternalError(c, h.logger, "无法更新系统设置", err)
	}
}
