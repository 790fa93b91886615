package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jrys/pkg/config"
	"jrys/pkg/handlers"
	"jrys/pkg/logger"
	"jrys/pkg/middleware"
)

// Server timeouts
const (
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
	DefaultIdleTimeout  = 120 * time.Second
)

// HTTPServer 对外提供运势海报与预缓存管理接口
type HTTPServer struct {
	server     *http.Server
	engine     *gin.Engine
	handlerSvc *handlers.HandlerService
}

// NewHTTPServer 创建HTTP服务
func NewHTTPServer(cfg *config.ServerConfig, isDevelopment bool, handlerSvc *handlers.HandlerService) *HTTPServer {
	if !isDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.ErrorHandler(),
		middleware.Recovery(),
		cors.Default(),
	)

	s := &HTTPServer{
		engine:     engine,
		handlerSvc: handlerSvc,
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	logger.Info("HTTP服务初始化完成", zap.String("listen_addr", addr))
	return s
}

// setupRoutes 注册全部路由
func (s *HTTPServer) setupRoutes() {
	s.engine.GET("/health", s.handlerSvc.GetHealth)

	api := s.engine.Group("/api/v1")
	{
		api.GET("/fortune/:user_id", s.handlerSvc.GetFortunePoster)
		api.GET("/fortune/:user_id/text", s.handlerSvc.GetFortuneText)
		api.POST("/precache/trigger", s.handlerSvc.TriggerPrecache)
		api.GET("/precache/status", s.handlerSvc.GetPrecacheStatus)
	}
}

// Start 启动监听，阻塞到服务关闭
func (s *HTTPServer) Start() error {
	logger.Info("HTTP服务启动", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logger.Info("HTTP服务关闭中")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	return nil
}
