package handler

import "github.com/gin-gonic/gin"

// Register 注册 /api 下的全部路由
func (h *Handlers) Register(api *gin.RouterGroup) {
	batteries := api.Group("/batteries")
	{
		batteries.GET("", h.Battery.List)
		batteries.POST("", h.Battery.Create)
		batteries.GET("/query", h.Battery.Query)
		batteries.POST("/import", h.Transfer.Import)
		batteries.GET("/export", h.Transfer.Export)
		batteries.GET("/template", h.Transfer.Template)
		batteries.POST("/dedupe", h.Battery.Dedupe)
		batteries.GET("/:id", h.Battery.Get)
		batteries.PUT("/:id", h.Battery.Update)
		batteries.DELETE("/:id", h.Battery.Delete)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", h.Settings.Get)
		settings.PUT("", h.Settings.Update)
		settings.POST("/:list", h.Settings.AddEntry)
		settings.PUT("/:list/:id", h.Settings.UpdateEntry)
		settings.DELETE("/:list/:id", h.Settings.DeleteEntry)
	}

	api.GET("/backup", h.Backup.Backup)
	api.POST("/restore", h.Backup.Restore)
	api.GET("/dashboard", h.Dashboard.Get)

	api.GET("/images/:btCode/:phase", h.Image.Get)
	api.PUT("/images/:btCode/:phase", h.Image.Save)
	api.POST("/upload", h.Upload.Upload)

	api.GET("/events", h.SSE.Stream)
}
