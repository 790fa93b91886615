package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jrys/pkg/config"
	"jrys/pkg/fortune"
	"jrys/pkg/logger"
)

// WarningText 海报底部的固定提示语
const WarningText = "仅供娱乐 | 相信科学 | 请勿迷信"

// 背景图超过画布该倍数时先缩小，避免大图浪费内存
const maxBackgroundScale = 1.8

// 文字对齐方式
type alignment int

const (
	alignCenter alignment = iota
	alignLeft
)

// Compositor 海报合成器：裁切背景、叠半透明面板、六段文字、圆形头像，
// 最后编码JPEG写入一次性临时文件
type Compositor struct {
	fonts  *FontSet
	poster *config.PosterConfig
	avatar *config.AvatarConfig
}

// NewCompositor 创建合成器
func NewCompositor(fonts *FontSet, poster *config.PosterConfig, avatar *config.AvatarConfig) *Compositor {
	return &Compositor{fonts: fonts, poster: poster, avatar: avatar}
}

// Render 合成运势海报并返回JPEG临时文件路径，调用方负责删除。
// 传入的rng必须与运势抽取共用同一种子流，保证渐变色每天固定。
// 背景不可读是致命失败；头像缺失只降级为无头像海报。
func (c *Compositor) Render(entry fortune.Entry, date time.Time, avatarPath, backgroundPath string, rng *rand.Rand) (string, error) {
	bg, err := imaging.Open(backgroundPath)
	if err != nil {
		return "", fmt.Errorf("%w: open background: %v", ErrRenderFailure, err)
	}

	canvas := CropToCanvas(bg, c.poster.Width, c.poster.Height)
	dc := gg.NewContextForImage(canvas)

	// 半透明圆角面板提升文字可读性
	dc.SetRGBA(0, 0, 0, 128.0/255.0)
	dc.DrawRoundedRectangle(0, float64(c.poster.TextBoxY),
		float64(c.poster.Width), float64(c.poster.TextBoxHeight), float64(c.poster.TextBoxRadius))
	dc.Fill()

	// 非星座文案行数决定底部两块文字的避让量，
	// 行数沿用36号字测量
	measureLines := WrapText(entry.UnsignText, c.fonts.Face(SizeMeasure), c.poster.WrapWidth)
	unsignY, warningY := AdjustBlocks(len(measureLines), c.poster.UnsignY, c.poster.WarningY)

	c.drawBlock(dc, date.Format("2006/01/02"), SizeDate, alignCenter, c.poster.DateY, true, rng)
	c.drawBlock(dc, entry.FortuneSummary, SizeSummary, alignCenter, c.poster.SummaryY, false, rng)
	c.drawBlock(dc, entry.LuckyStar, SizeSummary, alignCenter, c.poster.LuckyStarY, true, rng)
	c.drawBlock(dc, entry.SignText, SizeBody, alignLeft, c.poster.SignTextY, false, rng)
	c.drawBlock(dc, entry.UnsignText, SizeBody, alignLeft, unsignY, false, rng)
	c.drawBlock(dc, WarningText, SizeBody, alignCenter, warningY, false, rng)

	c.drawAvatar(dc, avatarPath)

	outPath := filepath.Join(os.TempDir(), "jrys-"+uuid.New().String()+".jpg")
	if err := imaging.Save(imaging.Clone(dc.Image()), outPath, imaging.JPEGQuality(85)); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("%w: encode jpeg: %v", ErrRenderFailure, err)
	}
	return outPath, nil
}

// drawBlock 绘制一段自动换行的文字，y为首行顶端
func (c *Compositor) drawBlock(dc *gg.Context, text string, size int, align alignment, y int, gradient bool, rng *rand.Rand) {
	face := c.fonts.Face(size)
	lines := WrapText(text, face, c.poster.WrapWidth)
	spacing := LineSpacing(size)

	for _, line := range lines {
		x := c.poster.LeftPadding
		if align == alignCenter {
			x = CenterX(c.poster.Width, face, line)
		}

		if gradient {
			DrawGradientString(dc.Image().(draw.Image), line, face, rng, x, y)
		} else {
			dc.SetFontFace(face)
			dc.SetRGB(1, 1, 1)
			ascent := face.Metrics().Ascent.Ceil()
			dc.DrawString(line, float64(x), float64(y+ascent))
		}
		y += spacing
	}
}

// drawAvatar 圆形裁切头像后贴到固定位置，失败只降级不中断
func (c *Compositor) drawAvatar(dc *gg.Context, avatarPath string) {
	if avatarPath == "" {
		return
	}
	img, err := imaging.Open(avatarPath)
	if err != nil {
		logger.Warn("头像读取失败，跳过头像绘制", zap.String("path", avatarPath), zap.Error(err))
		return
	}

	resized := imaging.Resize(img, c.avatar.Width, c.avatar.Height, imaging.Lanczos)

	mask := gg.NewContext(c.avatar.Width, c.avatar.Height)
	mask.DrawEllipse(float64(c.avatar.Width)/2, float64(c.avatar.Height)/2,
		float64(c.avatar.Width)/2, float64(c.avatar.Height)/2)
	mask.Clip()
	mask.DrawImage(resized, 0, 0)

	dc.DrawImage(mask.Image(), c.avatar.X, c.avatar.Y)
}

// CropToCanvas 居中裁切到目标尺寸。
// 小于目标先按较大比例放大，超过1.8倍先按较小比例缩小，再居中裁。
func CropToCanvas(img image.Image, width, height int) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	if srcW < width || srcH < height {
		scaleX := float64(width) / float64(srcW)
		scaleY := float64(height) / float64(srcH)
		scale := scaleX
		if scaleY > scale {
			scale = scaleY
		}
		img = imaging.Resize(img, int(float64(srcW)*scale), int(float64(srcH)*scale), imaging.Lanczos)
	} else if float64(srcW) > float64(width)*maxBackgroundScale || float64(srcH) > float64(height)*maxBackgroundScale {
		scaleX := float64(width) * maxBackgroundScale / float64(srcW)
		scaleY := float64(height) * maxBackgroundScale / float64(srcH)
		scale := scaleX
		if scaleY < scale {
			scale = scaleY
		}
		img = imaging.Resize(img, int(float64(srcW)*scale), int(float64(srcH)*scale), imaging.Lanczos)
	}

	out := imaging.CropCenter(img, width, height)
	// 缩放取整可能差一两个像素，补黑边凑满目标尺寸
	if out.Bounds().Dx() != width || out.Bounds().Dy() != height {
		out = imaging.PasteCenter(imaging.New(width, height, color.Black), out)
	}
	return out
}
