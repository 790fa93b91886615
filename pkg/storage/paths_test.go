package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jrys/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(true, ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestBackgroundCachePath(t *testing.T) {
	layout := NewLayout("/cache")

	url := "https://example.com/images/bg.png"
	sum := sha256.Sum256([]byte(url))
	want := filepath.Join("/cache", "background_images", hex.EncodeToString(sum[:])+".png")

	if got := layout.BackgroundCachePath(url); got != want {
		t.Errorf("BackgroundCachePath = %s, want %s", got, want)
	}

	// 同一URL路径稳定
	if layout.BackgroundCachePath(url) != layout.BackgroundCachePath(url) {
		t.Error("cache path not stable for same url")
	}
}

func TestBackgroundCachePathLowercasesExt(t *testing.T) {
	layout := NewLayout("/cache")

	got := layout.BackgroundCachePath("https://example.com/images/BG.PNG")
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("expected lowercased extension, got %s", got)
	}
}

func TestBackgroundCachePathExtFallback(t *testing.T) {
	layout := NewLayout("/cache")

	cases := []string{
		"https://example.com/download",                       // 无扩展名
		"https://example.com/file.verylongextension",         // 扩展名过长
		"https://example.com/api?q=.png",                     // 扩展名只在query里
	}
	for _, url := range cases {
		got := layout.BackgroundCachePath(url)
		if !strings.HasSuffix(got, genericExt) {
			t.Errorf("expected generic ext for %s, got %s", url, got)
		}
	}
}

func TestBackgroundTmpPathUnique(t *testing.T) {
	layout := NewLayout("/cache")

	url := "https://example.com/bg.jpg"
	first := layout.BackgroundTmpPath(url)
	second := layout.BackgroundTmpPath(url)

	if first == second {
		t.Error("tmp paths should be unique per call")
	}
	if !strings.HasSuffix(first, ".jpg") {
		t.Errorf("tmp path should keep url extension: %s", first)
	}
	if filepath.Dir(first) != layout.BackgroundTmpDir() {
		t.Errorf("tmp path outside tmp dir: %s", first)
	}
}

func TestAvatarPath(t *testing.T) {
	layout := NewLayout("/cache")
	want := filepath.Join("/cache", "avatars", "1001.jpg")
	if got := layout.AvatarPath("1001"); got != want {
		t.Errorf("AvatarPath = %s, want %s", got, want)
	}
}

func TestEnsureCreatesLayout(t *testing.T) {
	layout := NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	for _, dir := range []string{layout.AvatarDir(), layout.BackgroundDir(), layout.BackgroundTmpDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", dir)
		}
	}
	// 可重复调用
	if err := layout.Ensure(); err != nil {
		t.Errorf("second Ensure failed: %v", err)
	}
}

func TestIsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1001.jpg")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	now := time.Now()
	if !IsFresh(path, 24*time.Hour, now) {
		t.Error("fresh file reported stale")
	}
	if IsFresh(path, 24*time.Hour, now.Add(25*time.Hour)) {
		t.Error("expired file reported fresh")
	}
	if IsFresh(filepath.Join(t.TempDir(), "missing.jpg"), 24*time.Hour, now) {
		t.Error("missing file reported fresh")
	}
}
