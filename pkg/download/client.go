package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jrys/pkg/logger"
)

// 线性退避基准间隔
const retryBaseDelay = 200 * time.Millisecond

// Client 带重试的文件下载器。
// 响应体先写入目标目录下的唯一临时文件，成功后原子改名到目标路径，
// 任何失败路径都不会在目标位置留下半成品。
type Client struct {
	httpClient *http.Client
	retries    int
}

// NewClient 创建下载器，timeout为单次请求超时，retries为额外重试次数
func NewClient(timeout time.Duration, retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    retries,
	}
}

// Fetch 下载URL到目标路径。
// 5xx与超时类错误按线性退避重试，其余状态码立即失败。
// 取消信号直接向上传播，不参与重试。
func (c *Client) Fetch(ctx context.Context, url, dest string) error {
	attempts := c.retries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// 线性退避：0.2s、0.4s、0.6s...
			delay := retryBaseDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			logger.Debug("重试下载",
				zap.String("url", url),
				zap.Int("attempt", attempt+1))
		}

		err := c.fetchOnce(ctx, url, dest)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrPermanentStatus) {
			return err
		}
		lastErr = err
		logger.Warn("下载失败",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return fmt.Errorf("%w: %d attempts: %v", ErrRetriesExhausted, attempts, lastErr)
}

// fetchOnce 单次下载尝试
func (c *Client) fetchOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanentStatus, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("server status %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrPermanentStatus, resp.StatusCode)
	}

	return writeAtomic(resp.Body, dest)
}

// writeAtomic 先写同目录临时文件再改名，退出时清理残留临时文件
func writeAtomic(body io.Reader, dest string) (err error) {
	if mkErr := os.MkdirAll(filepath.Dir(dest), 0755); mkErr != nil {
		return fmt.Errorf("create dest dir: %w", mkErr)
	}

	tmpPath := dest + "." + uuid.New().String() + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, copyErr := io.Copy(tmpFile, body); copyErr != nil {
		tmpFile.Close()
		return fmt.Errorf("write body: %w", copyErr)
	}
	if closeErr := tmpFile.Close(); closeErr != nil {
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if renameErr := os.Rename(tmpPath, dest); renameErr != nil {
		// 跨设备改名不被支持时退化为复制加删除
		if errors.Is(renameErr, syscall.EXDEV) {
			return moveAcrossDevices(tmpPath, dest)
		}
		return fmt.Errorf("rename temp file: %w", renameErr)
	}
	return nil
}

// moveAcrossDevices 复制后删除源文件，tmpPath失败时由调用方清理
func moveAcrossDevices(tmpPath, dest string) error {
	src, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create dest file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return fmt.Errorf("copy across devices: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close dest file: %w", err)
	}

	os.Remove(tmpPath)
	return nil
}
