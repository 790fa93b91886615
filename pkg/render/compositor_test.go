package render

import (
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"jrys/pkg/config"
	"jrys/pkg/fortune"
)

func TestCropToCanvasExactSize(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"smaller both", 500, 900},
		{"smaller width", 800, 2500},
		{"exact", 1080, 1920},
		{"larger moderate", 1500, 2200},
		{"larger extreme", 4000, 8000},
		{"wide panorama", 9000, 1920},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := imaging.New(tc.w, tc.h, color.NRGBA{10, 20, 30, 255})
			out := CropToCanvas(src, 1080, 1920)
			if out.Bounds().Dx() != 1080 || out.Bounds().Dy() != 1920 {
				t.Errorf("got %dx%d, want 1080x1920", out.Bounds().Dx(), out.Bounds().Dy())
			}
		})
	}
}

func testCompositor(t *testing.T) *Compositor {
	t.Helper()
	fonts := LoadFontSet(t.TempDir(), "missing.ttf")
	return NewCompositor(fonts, config.NewPosterConfig(), config.NewAvatarConfig())
}

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{120, 160, 200, 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
}

func TestRenderProducesJPEG(t *testing.T) {
	dir := t.TempDir()
	bgPath := filepath.Join(dir, "bg.jpg")
	avatarPath := filepath.Join(dir, "avatar.png")
	writeTestImage(t, bgPath, 1200, 2000)
	writeTestImage(t, avatarPath, 640, 640)

	entry := fortune.Entry{
		FortuneSummary: "大吉",
		LuckyStar:      "钻石",
		SignText:       "宜出行",
		UnsignText:     "诸事顺",
	}
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	comp := testCompositor(t)
	outPath, err := comp.Render(entry, date, avatarPath, bgPath, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	defer os.Remove(outPath)

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output is empty")
	}

	img, err := imaging.Open(outPath)
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if img.Bounds().Dx() != 1080 || img.Bounds().Dy() != 1920 {
		t.Errorf("output size %dx%d, want 1080x1920", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRenderMissingBackgroundFails(t *testing.T) {
	comp := testCompositor(t)
	_, err := comp.Render(fortune.Entry{}, time.Now(), "", filepath.Join(t.TempDir(), "nope.jpg"), rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected error for missing background")
	}
}

func TestRenderMissingAvatarDegrades(t *testing.T) {
	dir := t.TempDir()
	bgPath := filepath.Join(dir, "bg.jpg")
	writeTestImage(t, bgPath, 1080, 1920)

	comp := testCompositor(t)
	outPath, err := comp.Render(fortune.Entry{
		FortuneSummary: "大吉",
		LuckyStar:      "钻石",
		SignText:       "宜",
		UnsignText:     "顺",
	}, time.Now(), filepath.Join(dir, "missing-avatar.jpg"), bgPath, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("render should degrade without avatar: %v", err)
	}
	defer os.Remove(outPath)

	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRenderRepositionsLongUnsignText(t *testing.T) {
	dir := t.TempDir()
	bgPath := filepath.Join(dir, "bg.jpg")
	writeTestImage(t, bgPath, 1080, 1920)

	// 超长文案触发避让逻辑，渲染仍需成功
	long := ""
	for i := 0; i < 200; i++ {
		long += "顺"
	}
	comp := testCompositor(t)
	outPath, err := comp.Render(fortune.Entry{
		FortuneSummary: "大吉",
		LuckyStar:      "钻石",
		SignText:       "宜出行",
		UnsignText:     long,
	}, time.Now(), "", bgPath, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	os.Remove(outPath)
}

func TestFontSetFallback(t *testing.T) {
	fs := fallbackFontSet()
	for _, size := range fontSizes {
		if fs.Face(size) == nil {
			t.Errorf("no face for size %d", size)
		}
	}
	// 未注册字号也要返回可用Face
	if fs.Face(999) == nil {
		t.Error("unknown size should fall back")
	}
}
