package background

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"jrys/pkg/download"
	"jrys/pkg/kvstatus"
	"jrys/pkg/logger"
)

// StatusKey 预缓存状态在键值存储中的键
const StatusKey = "bg_cache_status"

// 预缓存任务状态值
const (
	StatusRunning   = "running"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

// Status 预缓存任务的状态快照
type Status struct {
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Cached     int    `json:"cached"`
	Download   int    `json:"download"`
	Downloaded int    `json:"downloaded"`
	Failed     int    `json:"failed"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at,omitempty"`
}

// Precacher 批量预下载背景图的后台任务
type Precacher struct {
	picker      *Picker
	client      *download.Client
	sink        kvstatus.Sink
	concurrency int

	running atomic.Bool
	mu      sync.RWMutex
	last    Status
}

// NewPrecacher 创建预缓存任务，concurrency应已做[1,10]限幅
func NewPrecacher(picker *Picker, client *download.Client, sink kvstatus.Sink, concurrency int) *Precacher {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 10 {
		concurrency = 10
	}
	return &Precacher{
		picker:      picker,
		client:      client,
		sink:        sink,
		concurrency: concurrency,
	}
}

// LastStatus 最近一次任务的状态快照
func (p *Precacher) LastStatus() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Running 任务是否正在执行
func (p *Precacher) Running() bool {
	return p.running.Load()
}

// Run 下载所有未缓存的背景图，受并发上限约束。
// 同一时刻只允许一个任务实例，开始与结束各上报一次状态。
// 取消时在途下载尽快结束，状态标记为cancelled。
func (p *Precacher) Run(ctx context.Context) (Status, error) {
	if !p.running.CompareAndSwap(false, true) {
		return p.LastStatus(), ErrAlreadyRunning
	}
	defer p.running.Store(false)

	urls, err := p.picker.CollectURLs()
	if err != nil {
		return Status{}, err
	}

	var pending []string
	cached := 0
	for _, url := range urls {
		if _, statErr := os.Stat(p.picker.CachePath(url)); statErr == nil {
			cached++
			continue
		}
		pending = append(pending, url)
	}

	status := Status{
		Status:    StatusRunning,
		Total:     len(urls),
		Cached:    cached,
		Download:  len(pending),
		StartedAt: time.Now().Format(time.RFC3339),
	}
	p.setStatus(ctx, status)
	logger.Info("背景图预缓存开始",
		zap.Int("total", status.Total),
		zap.Int("cached", status.Cached),
		zap.Int("download", status.Download))

	var downloaded, failed int64
	sem := semaphore.NewWeighted(int64(p.concurrency))
	var wg sync.WaitGroup

	for _, url := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			defer sem.Release(1)

			dest := p.picker.CachePath(url)
			// 拿到并发许可后再查一次，避免重复下载同一URL
			if _, statErr := os.Stat(dest); statErr == nil {
				atomic.AddInt64(&downloaded, 1)
				return
			}
			if err := p.client.Fetch(ctx, url, dest); err != nil {
				atomic.AddInt64(&failed, 1)
				if ctx.Err() == nil {
					logger.Warn("预缓存下载失败", zap.String("url", url), zap.Error(err))
				}
				return
			}
			atomic.AddInt64(&downloaded, 1)
		}(url)
	}
	wg.Wait()

	status.Downloaded = int(atomic.LoadInt64(&downloaded))
	status.Failed = int(atomic.LoadInt64(&failed))
	status.EndedAt = time.Now().Format(time.RFC3339)
	if ctx.Err() != nil {
		status.Status = StatusCancelled
	} else {
		status.Status = StatusDone
	}
	p.setStatus(context.WithoutCancel(ctx), status)

	logger.Info("背景图预缓存结束",
		zap.String("status", status.Status),
		zap.Int("downloaded", status.Downloaded),
		zap.Int("failed", status.Failed))

	if ctx.Err() != nil {
		return status, ctx.Err()
	}
	return status, nil
}

// setStatus 更新内存快照并上报键值存储，上报失败只记日志
func (p *Precacher) setStatus(ctx context.Context, status Status) {
	p.mu.Lock()
	p.last = status
	p.mu.Unlock()

	if p.sink == nil {
		return
	}
	if err := p.sink.Put(ctx, StatusKey, status); err != nil {
		logger.Warn("预缓存状态上报失败", zap.Error(err))
	}
}
