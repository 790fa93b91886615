package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetFortunePoster 生成并返回运势海报JPEG。
// 可选query参数date=YYYY-MM-DD，缺省为今天。
func (h *HandlerService) GetFortunePoster(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   true,
			"message": "user_id is required",
		})
		return
	}

	date, ok := h.requestDate(c)
	if !ok {
		return
	}

	reply := h.plugin.Generate(c.Request.Context(), userID, date)
	if reply.Text != "" {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   true,
			"message": reply.Text,
		})
		return
	}
	defer reply.Cleanup()

	c.Header("Content-Type", "image/jpeg")
	c.File(reply.ImagePath)
}

// GetFortuneText 只返回当日运势文案，不渲染图片
func (h *HandlerService) GetFortuneText(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   true,
			"message": "user_id is required",
		})
		return
	}

	date, ok := h.requestDate(c)
	if !ok {
		return
	}

	entry, err := h.plugin.Entry(userID, date)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   true,
			"message": "fortune catalog unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":        userID,
		"date":           date.Format("2006-01-02"),
		"fortuneSummary": entry.FortuneSummary,
		"luckyStar":      entry.LuckyStar,
		"signText":       entry.SignText,
		"unsignText":     entry.UnsignText,
	})
}

// requestDate 解析可选的date参数，非法时直接写400响应
func (h *HandlerService) requestDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   true,
			"message": "invalid date, expected YYYY-MM-DD",
		})
		return time.Time{}, false
	}
	return date, true
}
