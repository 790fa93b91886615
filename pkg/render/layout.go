package render

import (
	"golang.org/x/image/font"
)

// 非星座文案超过3行时与警告行互相避让的像素步长
const (
	warningShiftPerLine = 10
	unsignShiftPerLine  = 15
	maxUnsignLines      = 3
)

// WrapText 按像素宽度逐字换行。
// 中文没有空格词边界，逐字累积测量，超宽就断行。
// 单个字符超宽时独占一行，不做进一步拆分。
func WrapText(text string, face font.Face, maxWidth int) []string {
	if text == "" {
		return nil
	}

	var lines []string
	current := ""
	for _, r := range text {
		trial := current + string(r)
		if current == "" || LineWidth(face, trial) <= maxWidth {
			current = trial
			continue
		}
		lines = append(lines, current)
		current = string(r)
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// LineWidth 文字的墨迹包围盒像素宽度
func LineWidth(face font.Face, s string) int {
	bounds, _ := font.BoundString(face, s)
	return (bounds.Max.X - bounds.Min.X).Ceil()
}

// LeftBearing 首字符的左侧留白，可能为负
func LeftBearing(face font.Face, s string) int {
	bounds, _ := font.BoundString(face, s)
	return bounds.Min.X.Floor()
}

// CenterX 计算水平居中的起始x坐标，补偿负的左侧留白防止裁切
func CenterX(canvasWidth int, face font.Face, line string) int {
	return (canvasWidth-LineWidth(face, line))/2 - LeftBearing(face, line)
}

// LineSpacing 行距为字号的1.5倍
func LineSpacing(size int) int {
	return size * 3 / 2
}

// AdjustBlocks 非星座文案换行超过3行时，警告行下移、文案上移，
// 避免两块文字贴在一起。返回调整后的(unsignY, warningY)
func AdjustBlocks(unsignLineCount, unsignY, warningY int) (int, int) {
	if unsignLineCount <= maxUnsignLines {
		return unsignY, warningY
	}
	extra := unsignLineCount - maxUnsignLines
	return unsignY - extra*unsignShiftPerLine, warningY + extra*warningShiftPerLine
}
