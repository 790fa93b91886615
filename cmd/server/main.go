package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jrys/pkg/avatar"
	"jrys/pkg/background"
	"jrys/pkg/bot"
	"jrys/pkg/config"
	"jrys/pkg/download"
	"jrys/pkg/fortune"
	"jrys/pkg/handlers"
	"jrys/pkg/kvstatus"
	"jrys/pkg/logger"
	"jrys/pkg/render"
	"jrys/pkg/scheduler"
	"jrys/pkg/server"
	"jrys/pkg/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径")
		precache   = flag.Bool("precache", false, "启动时立即执行一次背景图预缓存后退出")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "配置验证失败: %v\n", err)
		os.Exit(1)
	}

	appCfg := cfg.GetAppConfig()
	if err := logger.InitLogger(appCfg.IsDevelopment(), appCfg.LogFile, appCfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, *precache); err != nil {
		logger.Fatal("服务异常退出", zap.Error(err))
	}
}

func run(cfg *config.Config, precacheOnce bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dataCfg := cfg.GetDataConfig()
	layout := storage.NewLayout(dataCfg.CacheDir)
	if err := layout.Ensure(); err != nil {
		return fmt.Errorf("初始化缓存目录: %w", err)
	}
	migrateLegacyDirs(dataCfg.DataDir, layout)

	catalog, err := fortune.LoadCatalog(filepath.Join(dataCfg.DataDir, "jrys.json"))
	if err != nil {
		logger.Warn("运势文案加载失败，请求将返回失败提示", zap.Error(err))
		catalog, _ = fortune.ParseCatalog([]byte(`{}`))
	} else {
		logger.Info("运势文案加载完成", zap.Int("categories", catalog.Len()))
	}

	dlCfg := cfg.GetDownloadConfig()
	client := download.NewClient(time.Duration(dlCfg.TimeoutSeconds)*time.Second, dlCfg.Retries)

	avatarCfg := cfg.GetAvatarConfig()
	fetcher := avatar.NewFetcher(layout, client, avatarCfg.URLTemplate,
		time.Duration(avatarCfg.TTLSeconds)*time.Second)

	bgCfg := cfg.GetBackgroundConfig()
	picker := background.NewPicker(filepath.Join(dataCfg.DataDir, "backgrounds"),
		layout, client, bgCfg.PrecacheEnabled, bgCfg.CleanupDownloads)

	posterCfg := cfg.GetPosterConfig()
	fonts := render.LoadFontSet(posterCfg.FontDir, posterCfg.FontName)
	compositor := render.NewCompositor(fonts, posterCfg, avatarCfg)

	plugin := bot.NewPlugin(catalog, fetcher, picker, compositor, cfg.GetBotConfig().KeywordEnabled)

	sink := newStatusSink(ctx, cfg.GetRedisConfig())
	defer sink.Close()

	precacher := background.NewPrecacher(picker, client, sink, bgCfg.EffectiveConcurrency())

	if precacheOnce {
		status, err := precacher.Run(ctx)
		if err != nil {
			return fmt.Errorf("预缓存执行失败: %w", err)
		}
		logger.Info("预缓存完成",
			zap.Int("downloaded", status.Downloaded),
			zap.Int("failed", status.Failed))
		return nil
	}

	if bgCfg.PrecacheEnabled {
		go func() {
			if _, err := precacher.Run(ctx); err != nil {
				logger.Warn("启动预缓存未完成", zap.Error(err))
			}
		}()

		sched := scheduler.New(precacher, bgCfg.RefreshCron)
		if err := sched.Start(ctx); err != nil {
			logger.Warn("预缓存定时任务启动失败", zap.Error(err))
		} else {
			defer sched.Stop()
			logger.Info("预缓存定时任务已启动",
				zap.String("cron", bgCfg.RefreshCron),
				zap.Time("next_run", sched.NextRun()))
		}
	}

	serverCfg := cfg.GetServerConfig()
	if !serverCfg.Enabled {
		logger.Info("HTTP服务未启用，等待退出信号")
		<-ctx.Done()
		return nil
	}

	svc := handlers.NewHandlerService(ctx, plugin, precacher)
	httpServer := server.NewHTTPServer(serverCfg, cfg.GetAppConfig().IsDevelopment(), svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("收到退出信号，开始优雅关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP服务关闭失败", zap.Error(err))
	}
	return nil
}

// migrateLegacyDirs 把旧版本缓存目录迁移到统一的cache布局下，失败只告警不中断启动
func migrateLegacyDirs(dataDir string, layout *storage.Layout) {
	fsys := storage.OSFS{}
	pairs := []struct {
		legacy string
		dest   string
	}{
		{filepath.Join(dataDir, "avatars"), layout.AvatarDir()},
		{filepath.Join(dataDir, "background_images"), layout.BackgroundDir()},
		{filepath.Join(dataDir, "background_images_tmp"), layout.BackgroundTmpDir()},
	}
	for _, p := range pairs {
		if err := storage.Migrate(fsys, p.legacy, p.dest); err != nil {
			logger.Warn("旧缓存目录迁移失败",
				zap.String("legacy", p.legacy), zap.Error(err))
		}
	}
}

// newStatusSink 根据配置选择Redis或内存状态存储，Redis不可达时回退内存
func newStatusSink(ctx context.Context, redisCfg *config.RedisConfig) kvstatus.Sink {
	if redisCfg == nil || !redisCfg.Enabled {
		return kvstatus.NewMemorySink()
	}
	sink := kvstatus.NewRedisSink(redisCfg.Addr, redisCfg.Password, redisCfg.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sink.Ping(pingCtx); err != nil {
		logger.Warn("Redis连接失败，预缓存状态改用内存存储",
			zap.String("addr", redisCfg.Addr), zap.Error(err))
		sink.Close()
		return kvstatus.NewMemorySink()
	}
	logger.Info("预缓存状态将写入Redis", zap.String("addr", redisCfg.Addr))
	return sink
}
