package background

import (
	"bufio"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jrys/pkg/download"
	"jrys/pkg/logger"
	"jrys/pkg/storage"
)

// 单次取图最多尝试的候选URL数
const maxPickAttempts = 5

// Picker 从配置的URL清单中挑选并落盘一张背景图
type Picker struct {
	listDir          string
	layout           *storage.Layout
	client           *download.Client
	precacheEnabled  bool
	cleanupDownloads bool
}

// NewPicker 创建背景图选择器
func NewPicker(listDir string, layout *storage.Layout, client *download.Client, precacheEnabled, cleanupDownloads bool) *Picker {
	return &Picker{
		listDir:          listDir,
		layout:           layout,
		client:           client,
		precacheEnabled:  precacheEnabled,
		cleanupDownloads: cleanupDownloads,
	}
}

// Pick 返回一张背景图的本地路径。
// 随机选一个清单文件，打乱其候选URL后依次尝试，最多maxPickAttempts个。
// 每次调用独立随机，同一用户同一天也会换背景。
// cleanup为true表示路径是一次性文件，调用方用完必须删除。
func (p *Picker) Pick(ctx context.Context) (path string, cleanup bool, err error) {
	listFiles, err := filepath.Glob(filepath.Join(p.listDir, "*.txt"))
	if err != nil || len(listFiles) == 0 {
		return "", false, ErrNoListFiles
	}

	listFile := listFiles[rand.Intn(len(listFiles))]
	urls, err := readURLList(listFile)
	if err != nil {
		logger.Warn("读取背景清单失败", zap.String("file", listFile), zap.Error(err))
		return "", false, ErrNoBackground
	}
	if len(urls) == 0 {
		return "", false, ErrNoBackground
	}

	rand.Shuffle(len(urls), func(i, j int) {
		urls[i], urls[j] = urls[j], urls[i]
	})

	attempts := maxPickAttempts
	if len(urls) < attempts {
		attempts = len(urls)
	}

	for _, url := range urls[:attempts] {
		if !isHTTPURL(url) {
			continue
		}

		cachePath := p.layout.BackgroundCachePath(url)
		if _, statErr := os.Stat(cachePath); statErr == nil {
			return cachePath, false, nil
		}

		dest := cachePath
		cleanup := false
		if !p.precacheEnabled && p.cleanupDownloads {
			dest = p.layout.BackgroundTmpPath(url)
			cleanup = true
		}

		if fetchErr := p.client.Fetch(ctx, url, dest); fetchErr != nil {
			if ctx.Err() != nil {
				return "", false, ctx.Err()
			}
			logger.Warn("背景图下载失败", zap.String("url", url), zap.Error(fetchErr))
			continue
		}
		return dest, cleanup, nil
	}

	return "", false, ErrNoBackground
}

// CollectURLs 汇总全部清单文件的候选URL，去重排序。
// 单个清单读取失败只记日志
func (p *Picker) CollectURLs() ([]string, error) {
	listFiles, err := filepath.Glob(filepath.Join(p.listDir, "*.txt"))
	if err != nil || len(listFiles) == 0 {
		return nil, ErrNoListFiles
	}

	seen := map[string]struct{}{}
	for _, file := range listFiles {
		urls, err := readURLList(file)
		if err != nil {
			logger.Warn("读取背景清单失败", zap.String("file", file), zap.Error(err))
			continue
		}
		for _, url := range urls {
			if isHTTPURL(url) {
				seen[url] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(seen))
	for url := range seen {
		result = append(result, url)
	}
	sort.Strings(result)
	return result, nil
}

// CachePath 暴露给预缓存任务的持久缓存路径
func (p *Picker) CachePath(url string) string {
	return p.layout.BackgroundCachePath(url)
}

// readURLList 读取清单文件的非空行并去重，保持出现顺序
func readURLList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	seen := map[string]struct{}{}
	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func isHTTPURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
