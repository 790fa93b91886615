package render

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// 渐变用的浅色调色板
var lightPalette = []color.NRGBA{
	{255, 250, 205, 255}, // 浅黄色
	{173, 216, 230, 255}, // 浅蓝色
	{221, 160, 221, 255}, // 浅紫色
	{255, 182, 193, 255}, // 浅粉色
	{240, 230, 140, 255}, // 浅卡其色
	{224, 255, 255, 255}, // 浅青色
	{245, 245, 220, 255}, // 浅米色
	{230, 230, 250, 255}, // 浅薰衣草色
}

const gradientStopCount = 4

// RandomStops 从调色板有放回地抽取4个渐变色，
// 同一rng保证同一(用户, 日期)的颜色序列每天固定
func RandomStops(rng *rand.Rand) []color.NRGBA {
	stops := make([]color.NRGBA, gradientStopCount)
	for i := range stops {
		stops[i] = lightPalette[rng.Intn(len(lightPalette))]
	}
	return stops
}

// GlyphGradient 渲染单字符的横向渐变图像。
// 以字形光栅结果作为alpha蒙版，横向按等宽分段在相邻颜色间线性插值。
// 无墨迹字符（空格等）返回nil图像，调用方只推进笔位。
func GlyphGradient(char rune, face font.Face, stops []color.NRGBA) (image.Image, error) {
	if len(stops) < 2 {
		return nil, ErrInsufficientStops
	}

	s := string(char)
	bounds, _ := font.BoundString(face, s)
	width := (bounds.Max.X - bounds.Min.X).Ceil()
	height := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	// 字形蒙版：光栅化到Alpha图，原点平移到墨迹包围盒左上角
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	drawer := font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(color.Opaque),
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(s)

	// 横向渐变色条叠加蒙版alpha
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	segments := len(stops) - 1
	segWidth := float64(width) / float64(segments)
	for x := 0; x < width; x++ {
		seg := int(float64(x) / segWidth)
		if seg >= segments {
			seg = segments - 1
		}
		factor := (float64(x) - float64(seg)*segWidth) / segWidth
		c := lerpColor(stops[seg], stops[seg+1], factor)
		for y := 0; y < height; y++ {
			alpha := mask.AlphaAt(x, y).A
			if alpha == 0 {
				continue
			}
			out.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha})
		}
	}
	return out, nil
}

// DrawGradientString 在目标图上逐字绘制渐变文字，x和y为首字符左上角。
// 每个字符独立抽一组渐变色。单字渲染失败退化为白色普通字符，
// 不中断整行绘制。
func DrawGradientString(dst draw.Image, s string, face font.Face, rng *rand.Rand, x, y int) {
	penX := x
	for _, char := range s {
		stops := RandomStops(rng)
		glyph, err := GlyphGradient(char, face, stops)
		if err != nil {
			drawPlainGlyph(dst, char, face, penX, y)
		} else if glyph != nil {
			rect := glyph.Bounds().Add(image.Pt(penX, y))
			draw.Draw(dst, rect, glyph, image.Point{}, draw.Over)
		}

		bounds, _ := font.BoundString(face, string(char))
		penX += (bounds.Max.X - bounds.Min.X).Ceil() + bounds.Min.X.Floor()
	}
}

// drawPlainGlyph 渐变失败时的白色兜底绘制
func drawPlainGlyph(dst draw.Image, char rune, face font.Face, x, y int) {
	drawer := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y) + face.Metrics().Ascent,
		},
	}
	drawer.DrawString(string(char))
}

// lerpColor 按比例在两个颜色间线性插值
func lerpColor(a, b color.NRGBA, factor float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*factor)
	}
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
