package avatar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"jrys/pkg/download"
	"jrys/pkg/logger"
	"jrys/pkg/storage"
)

func TestMain(m *testing.M) {
	if err := logger.InitLogger(true, ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newFetcher(t *testing.T, serverURL string, ttl time.Duration) (*Fetcher, *storage.Layout) {
	t.Helper()
	layout := storage.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	client := download.NewClient(5*time.Second, 1)
	return NewFetcher(layout, client, serverURL+"/g?nk=%s", ttl), layout
}

func TestAvatarCachedWithinTTL(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("avatar-bytes"))
	}))
	defer server.Close()

	fetcher, layout := newFetcher(t, server.URL, 24*time.Hour)

	path, err := fetcher.Avatar(context.Background(), "1001")
	if err != nil {
		t.Fatalf("Avatar failed: %v", err)
	}
	if path != layout.AvatarPath("1001") {
		t.Errorf("unexpected path %s", path)
	}

	// 有效期内第二次调用不发起网络请求
	if _, err := fetcher.Avatar(context.Background(), "1001"); err != nil {
		t.Fatalf("second Avatar failed: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 network call, got %d", got)
	}
}

func TestAvatarExpiredRedownloads(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("avatar-bytes"))
	}))
	defer server.Close()

	fetcher, layout := newFetcher(t, server.URL, time.Hour)

	if _, err := fetcher.Avatar(context.Background(), "1001"); err != nil {
		t.Fatalf("Avatar failed: %v", err)
	}

	// 把缓存文件改旧，触发重新下载
	stale := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(layout.AvatarPath("1001"), stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if _, err := fetcher.Avatar(context.Background(), "1001"); err != nil {
		t.Fatalf("Avatar after expiry failed: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("expected 2 network calls, got %d", got)
	}
}

func TestAvatarDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher, layout := newFetcher(t, server.URL, time.Hour)

	if _, err := fetcher.Avatar(context.Background(), "1001"); err == nil {
		t.Fatal("expected error for failed download")
	}
	if _, err := os.Stat(layout.AvatarPath("1001")); !os.IsNotExist(err) {
		t.Error("failed download left avatar file")
	}
	// 目录里不应有残留临时文件
	entries, err := os.ReadDir(filepath.Dir(layout.AvatarPath("1001")))
	if err != nil {
		t.Fatalf("read avatar dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected residue in avatar dir: %v", entries)
	}
}
