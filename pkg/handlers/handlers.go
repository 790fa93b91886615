package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"jrys/pkg/background"
	"jrys/pkg/bot"
)

// Service version reported by the health endpoint
const (
	ServiceName    = "jrys"
	ServiceVersion = "1.0.0"
)

// HandlerService HTTP处理器集合
type HandlerService struct {
	plugin    *bot.Plugin
	precacher *background.Precacher
	rootCtx   context.Context
}

// NewHandlerService 创建处理器集合。
// rootCtx约束手动触发的后台任务，服务关停时随之取消
func NewHandlerService(rootCtx context.Context, plugin *bot.Plugin, precacher *background.Precacher) *HandlerService {
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	return &HandlerService{plugin: plugin, precacher: precacher, rootCtx: rootCtx}
}

// GetHealth 健康检查
func (h *HandlerService) GetHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   ServiceName,
		"version":   ServiceVersion,
	})
}
