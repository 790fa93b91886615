package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jrys/pkg/logger"
)

// TriggerPrecache 手动触发一轮背景图预缓存，任务在后台执行
func (h *HandlerService) TriggerPrecache(c *gin.Context) {
	if h.precacher.Running() {
		c.JSON(http.StatusConflict, gin.H{
			"error":   true,
			"message": "precache already running",
		})
		return
	}

	go func() {
		if _, err := h.precacher.Run(h.rootCtx); err != nil {
			logger.Error("手动预缓存失败", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "precache started",
	})
}

// GetPrecacheStatus 返回最近一次预缓存任务的状态
func (h *HandlerService) GetPrecacheStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running": h.precacher.Running(),
		"last":    h.precacher.LastStatus(),
	})
}
