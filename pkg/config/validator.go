package config

import (
	"fmt"
	"strings"
)

// ValidateConfig 验证完整的配置
func (c *Config) ValidateConfig() error {
	if err := c.validateServerConfig(); err != nil {
		return err
	}

	if err := c.validateAvatarConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrAvatarConfig, err)
	}

	if err := c.validatePosterConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrPosterConfig, err)
	}

	if err := c.validateBackgroundConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackgroundConfig, err)
	}

	if err := c.validateDownloadConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadConfig, err)
	}

	if err := c.validateRedisConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisConfig, err)
	}

	return nil
}

// validateServerConfig 验证HTTP服务配置
func (c *Config) validateServerConfig() error {
	if c.Server == nil || !c.Server.Enabled {
		return nil // HTTP服务是可选的
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port必须在1-65535范围内", ErrInvalidValue)
	}

	return nil
}

// validateAvatarConfig 验证头像配置
func (c *Config) validateAvatarConfig() error {
	if c.Avatar == nil {
		return nil
	}

	av := c.Avatar

	if av.URLTemplate == "" {
		return fmt.Errorf("%w: url_template", ErrMissingRequired)
	}
	if !strings.Contains(av.URLTemplate, "%s") {
		return fmt.Errorf("%w: url_template必须包含%%s占位符", ErrInvalidValue)
	}
	if av.TTLSeconds <= 0 {
		return fmt.Errorf("%w: ttl_seconds必须大于0", ErrInvalidValue)
	}
	if av.Width <= 0 || av.Height <= 0 {
		return fmt.Errorf("%w: width和height必须大于0", ErrInvalidValue)
	}

	return nil
}

// validatePosterConfig 验证海报配置
func (c *Config) validatePosterConfig() error {
	if c.Poster == nil {
		return nil
	}

	p := c.Poster

	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: 画布尺寸必须大于0", ErrInvalidValue)
	}
	if p.WrapWidth <= 0 || p.WrapWidth > p.Width {
		return fmt.Errorf("%w: wrap_width必须在1-%d范围内", ErrInvalidValue, p.Width)
	}
	if p.FontName == "" {
		return fmt.Errorf("%w: font_name", ErrMissingRequired)
	}

	return nil
}

// validateBackgroundConfig 验证背景图配置
func (c *Config) validateBackgroundConfig() error {
	if c.Background == nil {
		return nil
	}

	bg := c.Background

	if bg.RefreshCron != "" && !isValidCronExpression(bg.RefreshCron) {
		return fmt.Errorf("%w: %s", ErrInvalidCron, bg.RefreshCron)
	}

	return nil
}

// validateDownloadConfig 验证下载器配置
func (c *Config) validateDownloadConfig() error {
	if c.Download == nil {
		return nil
	}

	if c.Download.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout_seconds必须大于0", ErrInvalidValue)
	}
	if c.Download.Retries < 0 {
		return fmt.Errorf("%w: retries不能为负数", ErrInvalidValue)
	}

	return nil
}

// validateRedisConfig 验证Redis配置
func (c *Config) validateRedisConfig() error {
	if c.Redis == nil || !c.Redis.Enabled {
		return nil // Redis是可选的
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("%w: addr", ErrMissingRequired)
	}

	return nil
}

// isValidCronExpression 简单验证：检查是否有5或6个字段（分 时 日 月 周 [年]）
func isValidCronExpression(cron string) bool {
	fields := strings.Fields(cron)
	return len(fields) == 5 || len(fields) == 6
}
