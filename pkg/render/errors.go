package render

import "errors"

// Render pipeline error definitions using sentinel errors pattern
var (
	// ErrInsufficientStops 渐变至少需要两个颜色
	ErrInsufficientStops = errors.New("gradient requires at least two color stops")
	// ErrRenderFailure 合成阶段失败
	ErrRenderFailure = errors.New("poster render failed")
)
