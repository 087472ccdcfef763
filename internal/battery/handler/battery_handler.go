package handler

import (
	"encoding/json"
	"errors"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatteryHandler 电池维修记录处理器
type BatteryHandler struct {
	svc    *service.RecordService
	logger *zap.Logger
}

// NewBatteryHandler 创建电池维修记录处理器
func NewBatteryHandler(svc *service.RecordService, logger *zap.Logger) *BatteryHandler {
	return &BatteryHandler{svc: svc, logger: logger}
}

// List 获取全部记录
// GET /api/batteries
func (h *BatteryHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, h.logger, "无法读取电池数据", err)
		return
	}
	Success(c, records)
}

// Query 过滤分页查询
// GET /api/batteries/query?search=&status=&dateRange=&page=&pageSize=
func (h *BatteryHandler) Query(c *gin.Context) {
	var q service.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, BindingMessage(err))
		return
	}
	result, err := h.svc.Query(c.Request.Context(), q)
	if err != nil {
		InternalError(c, h.logger, "无法读取电池数据", err)
		return
	}
	Success(c, result)
}

// Get 获取单条记录
// GET /api/batteries/:id
func (h *BatteryHandler) Get(c *gin.Context) {
	rec, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "未找到电池数据")
			return
		}
		InternalError(c, h.logger, "无法读取电池数据", err)
		return
	}
	Success(c, rec)
}

// Create 新增记录，ID由服务端生成
// POST /api/batteries
func (h *BatteryHandler) Create(c *gin.Context) {
	var rec entity.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		BadRequest(c, BindingMessage(err))
		return
	}
	rec.ID = ""

	created, err := h.svc.Create(c.Request.Context(), rec)
	if err != nil {
		InternalError(c, h.logger, "无法保存电池数据", err)
		return
	}
	Created(c, created)
}

// Update 浅合并更新
// PUT /api/batteries/:id
func (h *BatteryHandler) Update(c *gin.Context) {
	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, BindingMessage(err))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "未找到要更新的电池数据")
		case errors.Is(err, repository.ErrInvalidPatch):
			BadRequest(c, err.Error())
		default:
			InternalError(c, h.logger, "无法更新电池数据", err)
		}
		return
	}
	Success(c, updated)
}

// Delete 删除记录
// DELETE /api/batteries/:id
func (h *BatteryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "未找到要删除的电池数据")
			return
		}
		InternalError(c, h.logger, "无法删除电池数据", err)
		return
	}
	OK(c)
}

// Dedupe 按电池BT码去重
// POST /api/batteries/dedupe
func (h *BatteryHandler) Dedupe(c *gin.Context) {
	result, err := h.svc.Dedupe(c.Request.Context())
	if err != nil {
		InternalError(c, h.logger, "无法清理重复数据", err)
		return
	}
	Success(c, result)
}
