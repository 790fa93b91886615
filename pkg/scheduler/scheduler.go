package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jrys/pkg/background"
	"jrys/pkg/logger"
)

// Scheduler 定时触发背景图预缓存刷新
type Scheduler struct {
	cron      *cron.Cron
	precacher *background.Precacher
	spec      string
	entryID   cron.EntryID
}

// New 创建调度器，spec为标准5段Cron表达式
func New(precacher *background.Precacher, spec string) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		precacher: precacher,
		spec:      spec,
	}
}

// Start 注册预缓存任务并启动调度。
// ctx取消后在途任务随之终止。
func (s *Scheduler) Start(ctx context.Context) error {
	logger.Info("初始化预缓存调度器", zap.String("cron", s.spec))

	entryID, err := s.cron.AddFunc(s.spec, func() {
		status, err := s.precacher.Run(ctx)
		if err != nil {
			if err == background.ErrAlreadyRunning {
				logger.Warn("预缓存任务仍在运行，跳过本次调度")
				return
			}
			logger.Error("定时预缓存失败", zap.Error(err))
			return
		}
		logger.Info("定时预缓存完成",
			zap.Int("downloaded", status.Downloaded),
			zap.Int("failed", status.Failed))
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}
	s.entryID = entryID

	s.cron.Start()
	logger.Info("预缓存调度器已启动", zap.Time("next_run", s.NextRun()))
	return nil
}

// NextRun 下一次调度时间
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Stop 停止调度并等待在途任务回调返回
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info("预缓存调度器已停止")
}
