package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jrys/pkg/background"
	"jrys/pkg/bot"
	"jrys/pkg/download"
	"jrys/pkg/fortune"
	"jrys/pkg/kvstatus"
	"jrys/pkg/logger"
	"jrys/pkg/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.InitLogger(true, ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubAvatars struct{ path string }

func (s *stubAvatars) Avatar(context.Context, string) (string, error) { return s.path, nil }

type stubBackgrounds struct{ path string }

func (s *stubBackgrounds) Pick(context.Context) (string, bool, error) {
	return s.path, false, nil
}

type stubRenderer struct{ dir string }

func (s *stubRenderer) Render(_ fortune.Entry, _ time.Time, _, _ string, _ *rand.Rand) (string, error) {
	path := filepath.Join(s.dir, "poster.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	catalog, err := fortune.ParseCatalog([]byte(`{"cat1":[{"fortuneSummary":"大吉","luckyStar":"钻石","signText":"宜","unsignText":"诸事顺"}]}`))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	plugin := bot.NewPlugin(catalog,
		&stubAvatars{path: "/tmp/avatar.jpg"},
		&stubBackgrounds{path: "/tmp/bg.jpg"},
		&stubRenderer{dir: t.TempDir()}, true)

	layout := storage.NewLayout(t.TempDir())
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	client := download.NewClient(time.Second, 0)
	picker := background.NewPicker(t.TempDir(), layout, client, true, false)
	precacher := background.NewPrecacher(picker, client, kvstatus.NewMemorySink(), 3)

	svc := NewHandlerService(context.Background(), plugin, precacher)

	router := gin.New()
	router.GET("/health", svc.GetHealth)
	api := router.Group("/api/v1")
	api.GET("/fortune/:user_id", svc.GetFortunePoster)
	api.GET("/fortune/:user_id/text", svc.GetFortuneText)
	api.GET("/precache/status", svc.GetPrecacheStatus)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestGetFortunePoster(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/fortune/1001")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %s", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("empty poster body")
	}
}

func TestGetFortuneTextDeterministic(t *testing.T) {
	router := newTestRouter(t)

	first := doRequest(router, http.MethodGet, "/api/v1/fortune/1001/text?date=2024-01-01")
	second := doRequest(router, http.MethodGet, "/api/v1/fortune/1001/text?date=2024-01-01")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("status = %d / %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("same user and date returned different text")
	}

	var body map[string]any
	if err := json.Unmarshal(first.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["fortuneSummary"] != "大吉" {
		t.Errorf("unexpected summary: %v", body["fortuneSummary"])
	}
}

func TestGetFortuneTextInvalidDate(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/fortune/1001/text?date=not-a-date")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetPrecacheStatus(t *testing.T) {
	router := newTestRouter(t)
	w := doRequest(router, http.MethodGet, "/api/v1/precache/status")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["running"]; !ok {
		t.Errorf("missing running flag: %v", body)
	}
}

func TestTriggerPrecacheStopsWithRootContext(t *testing.T) {
	catalog, _ := fortune.ParseCatalog([]byte(`{}`))
	plugin := bot.NewPlugin(catalog, &stubAvatars{}, &stubBackgrounds{}, &stubRenderer{dir: t.TempDir()}, true)

	root := t.TempDir()
	listDir := filepath.Join(root, "backgrounds")
	if err := os.MkdirAll(listDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(listDir, "list.txt"),
		[]byte("https://example.invalid/bg.png\n"), 0644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	layout := storage.NewLayout(filepath.Join(root, "cache"))
	if err := layout.Ensure(); err != nil {
		t.Fatalf("ensure layout: %v", err)
	}
	client := download.NewClient(time.Second, 0)
	picker := background.NewPicker(listDir, layout, client, true, false)
	precacher := background.NewPrecacher(picker, client, kvstatus.NewMemorySink(), 2)

	// 服务关停后手动触发的任务必须随根上下文一起取消
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewHandlerService(ctx, plugin, precacher)

	router := gin.New()
	router.POST("/api/v1/precache/trigger", svc.TriggerPrecache)

	w := doRequest(router, http.MethodPost, "/api/v1/precache/trigger")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for precacher.Running() || precacher.LastStatus().Status != background.StatusCancelled {
		if time.Now().After(deadline) {
			t.Fatalf("precache ignored cancelled root context, last status %+v", precacher.LastStatus())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
