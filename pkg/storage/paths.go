package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 无法从URL推断扩展名时的通用后缀
const genericExt = ".img"

// Layout 磁盘缓存目录布局。
// 持久背景图按 sha256(url)+扩展名 命名，头像按用户ID命名，
// 临时背景图放在独立目录便于单次使用后清理。
type Layout struct {
	cacheDir string
}

// NewLayout 创建缓存布局
func NewLayout(cacheDir string) *Layout {
	return &Layout{cacheDir: cacheDir}
}

// AvatarDir 头像缓存目录
func (l *Layout) AvatarDir() string {
	return filepath.Join(l.cacheDir, "avatars")
}

// BackgroundDir 持久背景图缓存目录
func (l *Layout) BackgroundDir() string {
	return filepath.Join(l.cacheDir, "background_images")
}

// BackgroundTmpDir 单次使用背景图目录
func (l *Layout) BackgroundTmpDir() string {
	return filepath.Join(l.cacheDir, "background_images_tmp")
}

// Ensure 创建全部缓存目录，可重复调用
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.AvatarDir(), l.BackgroundDir(), l.BackgroundTmpDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir %s: %w", dir, err)
		}
	}
	return nil
}

// AvatarPath 用户头像缓存路径
func (l *Layout) AvatarPath(userID string) string {
	return filepath.Join(l.AvatarDir(), userID+".jpg")
}

// BackgroundCachePath URL对应的持久缓存路径
func (l *Layout) BackgroundCachePath(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(l.BackgroundDir(), hex.EncodeToString(sum[:])+urlExt(rawURL))
}

// BackgroundTmpPath URL对应的一次性随机路径，每次调用都不同
func (l *Layout) BackgroundTmpPath(rawURL string) string {
	name := uuid.New().String()
	return filepath.Join(l.BackgroundTmpDir(), name+urlExt(rawURL))
}

// urlExt 从URL路径推断扩展名，无法识别时回退通用后缀
func urlExt(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return genericExt
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	if ext == "" || len(ext) > 10 {
		return genericExt
	}
	return ext
}

// IsFresh 判断缓存文件是否仍在有效期内，文件不存在视为过期
func IsFresh(path string, ttl time.Duration, now time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime()) < ttl
}
