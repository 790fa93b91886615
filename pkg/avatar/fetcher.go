package avatar

import (
	"context"
	"fmt"
	"time"

	"jrys/pkg/download"
	"jrys/pkg/storage"
)

// Fetcher 用户头像获取器，磁盘缓存按修改时间过期
type Fetcher struct {
	layout      *storage.Layout
	client      *download.Client
	urlTemplate string
	ttl         time.Duration
}

// NewFetcher 创建头像获取器，urlTemplate以用户ID填充%s
func NewFetcher(layout *storage.Layout, client *download.Client, urlTemplate string, ttl time.Duration) *Fetcher {
	return &Fetcher{
		layout:      layout,
		client:      client,
		urlTemplate: urlTemplate,
		ttl:         ttl,
	}
}

// Avatar 返回头像的本地路径，有效期内直接命中缓存，
// 过期或缺失则重新下载
func (f *Fetcher) Avatar(ctx context.Context, userID string) (string, error) {
	path := f.layout.AvatarPath(userID)
	if storage.IsFresh(path, f.ttl, time.Now()) {
		return path, nil
	}

	url := fmt.Sprintf(f.urlTemplate, userID)
	if err := f.client.Fetch(ctx, url, path); err != nil {
		return "", fmt.Errorf("fetch avatar for %s: %w", userID, err)
	}
	return path, nil
}
