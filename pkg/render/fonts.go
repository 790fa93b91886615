package render

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"jrys/pkg/logger"
)

// 海报使用的字号
const (
	SizeDate    = 50
	SizeSummary = 60
	SizeMeasure = 36
	SizeBody    = 30
)

var fontSizes = []int{SizeDate, SizeSummary, SizeMeasure, SizeBody}

// FontSet 预构建各字号的字体Face，加载一次全程复用。
// 字体文件找不到时回退到内置点阵字体，保证海报始终能渲染。
type FontSet struct {
	faces map[int]font.Face
}

// LoadFontSet 按 配置目录 > findfont > 系统字体 的顺序加载字体
func LoadFontSet(fontDir, fontName string) *FontSet {
	tf := loadTruetypeFont(fontDir, fontName)
	if tf == nil {
		logger.Warn("未找到可用中文字体，使用内置点阵字体", zap.String("font", fontName))
		return fallbackFontSet()
	}

	faces := make(map[int]font.Face, len(fontSizes))
	for _, size := range fontSizes {
		faces[size] = truetype.NewFace(tf, &truetype.Options{
			Size: float64(size),
			DPI:  72,
		})
	}
	return &FontSet{faces: faces}
}

// Face 返回指定字号的Face
func (fs *FontSet) Face(size int) font.Face {
	if face, ok := fs.faces[size]; ok {
		return face
	}
	return basicfont.Face7x13
}

// fallbackFontSet 所有字号共用内置点阵字体
func fallbackFontSet() *FontSet {
	faces := make(map[int]font.Face, len(fontSizes))
	for _, size := range fontSizes {
		faces[size] = basicfont.Face7x13
	}
	return &FontSet{faces: faces}
}

// loadTruetypeFont 依次尝试各来源，全部失败返回nil
func loadTruetypeFont(fontDir, fontName string) *truetype.Font {
	var candidates []string
	if fontDir != "" && fontName != "" {
		candidates = append(candidates, filepath.Join(fontDir, fontName))
	}
	if fontName != "" {
		if path, err := findfont.Find(fontName); err == nil {
			candidates = append(candidates, path)
		}
	}
	candidates = append(candidates, systemFontPaths()...)

	for _, path := range candidates {
		tf, err := parseFontFile(path)
		if err != nil {
			continue
		}
		logger.Info("字体加载成功", zap.String("path", path))
		return tf
	}
	return nil
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}

// systemFontPaths 各平台常见中文字体位置
func systemFontPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/System/Library/Fonts/PingFang.ttc",
			"/System/Library/Fonts/STHeiti Light.ttc",
			"/Library/Fonts/Arial Unicode.ttf",
		}
	case "linux":
		return []string{
			"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
			"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
			"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
			"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		}
	case "windows":
		winFonts := `C:\Windows\Fonts`
		return []string{
			filepath.Join(winFonts, "msyh.ttc"),
			filepath.Join(winFonts, "simhei.ttf"),
			filepath.Join(winFonts, "simsun.ttc"),
		}
	}
	return nil
}
