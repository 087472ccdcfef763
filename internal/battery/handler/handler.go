package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/service"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handlers 处理器集合
type Handlers struct {
	Battery   *BatteryHandler
	Settings  *SettingsHandler
	Backup    *BackupHandler
	Transfer  *TransferHandler
	Dashboard *DashboardHandler
	Image     *ImageHandler
	Upload    *UploadHandler
	SSE       *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, hub *sse.Hub, maxUpload int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		Battery:   NewBatteryHandler(svc.Record, logger),
		Settings:  NewSettingsHandler(svc.Settings, logger),
		Backup:    NewBackupHandler(svc.Backup, logger),
		Transfer:  NewTransferHandler(svc.Import, svc.Export, maxUpload, logger),
		Dashboard: NewDashboardHandler(svc.Dashboard, logger),
		Image:     NewImageHandler(svc.Image, logger),
		Upload:    NewUploadHandler(svc.Image, maxUpload, logger),
		SSE:       NewSSEHandler(hub),
	}
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success 成功响应，直接返回数据本身
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// OK 无数据的成功响应
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Error 错误响应
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 服务器错误响应，原始错误只写日志
func InternalError(c *gin.Context, logger *zap.Logger, message string, err error) {
	logger.Error(message,
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err))
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, message)
}

var fieldNames = map[string]string{
	"Code": "编码",
	"Name": "名称",
}

// BindingMessage 把参数校验错误转换为中文提示
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "请求参数错误: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fieldNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, name+"不能为空")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s长度不能超过%s", name, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s不合法(%s)", name, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// isTooLarge 请求体超过限制
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
