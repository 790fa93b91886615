package config

// Config 主配置结构体
type Config struct {
	App        *AppConfig        `json:"app" yaml:"app"`
	Server     *ServerConfig     `json:"server" yaml:"server"`
	Data       *DataConfig       `json:"data" yaml:"data"`
	Avatar     *AvatarConfig     `json:"avatar" yaml:"avatar"`
	Poster     *PosterConfig     `json:"poster" yaml:"poster"`
	Background *BackgroundConfig `json:"background" yaml:"background"`
	Download   *DownloadConfig   `json:"download" yaml:"download"`
	Bot        *BotConfig        `json:"bot" yaml:"bot"`
	Redis      *RedisConfig      `json:"redis" yaml:"redis"`
}

// getDefaultConfig 获取默认配置，所有配置项都使用各自的默认值
func getDefaultConfig() *Config {
	return &Config{
		App:        NewAppConfig(),
		Server:     NewServerConfig(),
		Data:       NewDataConfig(),
		Avatar:     NewAvatarConfig(),
		Poster:     NewPosterConfig(),
		Background: NewBackgroundConfig(),
		Download:   NewDownloadConfig(),
		Bot:        NewBotConfig(),
		Redis:      NewRedisConfig(),
	}
}

// GetAppConfig 获取应用配置
func (c *Config) GetAppConfig() *AppConfig {
	if c.App != nil {
		return c.App
	}
	return NewAppConfig()
}

// GetServerConfig 获取HTTP服务配置
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server != nil {
		return c.Server
	}
	return NewServerConfig()
}

// GetDataConfig 获取数据目录配置
func (c *Config) GetDataConfig() *DataConfig {
	if c.Data != nil {
		return c.Data
	}
	return NewDataConfig()
}

// GetAvatarConfig 获取头像配置
func (c *Config) GetAvatarConfig() *AvatarConfig {
	if c.Avatar != nil {
		return c.Avatar
	}
	return NewAvatarConfig()
}

// GetPosterConfig 获取海报布局配置
func (c *Config) GetPosterConfig() *PosterConfig {
	if c.Poster != nil {
		return c.Poster
	}
	return NewPosterConfig()
}

// GetBackgroundConfig 获取背景图配置
func (c *Config) GetBackgroundConfig() *BackgroundConfig {
	if c.Background != nil {
		return c.Background
	}
	return NewBackgroundConfig()
}

// GetDownloadConfig 获取下载器配置
func (c *Config) GetDownloadConfig() *DownloadConfig {
	if c.Download != nil {
		return c.Download
	}
	return NewDownloadConfig()
}

// GetBotConfig 获取机器人触发配置
func (c *Config) GetBotConfig() *BotConfig {
	if c.Bot != nil {
		return c.Bot
	}
	return NewBotConfig()
}

// GetRedisConfig 获取Redis状态上报配置
func (c *Config) GetRedisConfig() *RedisConfig {
	if c.Redis != nil {
		return c.Redis
	}
	return NewRedisConfig()
}
