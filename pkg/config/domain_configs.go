package config

// AppConfig 应用全局配置
type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFile     string `json:"log_file" yaml:"log_file"`
	Environment string `json:"environment" yaml:"environment"`
}

// NewAppConfig 创建默认应用配置
func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:    "info",
		LogFile:     "logs/jrys.log",
		Environment: "production",
	}
}

// IsDevelopment 是否开发环境
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
}

// NewServerConfig 创建默认HTTP服务配置
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Enabled: true,
		Host:    "0.0.0.0",
		Port:    8080,
	}
}

// DataConfig 数据与缓存目录配置
type DataConfig struct {
	// DataDir 存放运势文案目录 fortunes/ 与背景URL清单 backgrounds/
	DataDir string `json:"data_dir" yaml:"data_dir"`
	// CacheDir 存放 avatars/ background_images/ background_images_tmp/
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// NewDataConfig 创建默认目录配置
func NewDataConfig() *DataConfig {
	return &DataConfig{
		DataDir:  "data",
		CacheDir: "cache",
	}
}

// AvatarConfig 头像获取与绘制配置
type AvatarConfig struct {
	// URLTemplate 以用户ID填充 %s
	URLTemplate string `json:"url_template" yaml:"url_template"`
	TTLSeconds  int    `json:"ttl_seconds" yaml:"ttl_seconds"`
	Width       int    `json:"width" yaml:"width"`
	Height      int    `json:"height" yaml:"height"`
	X           int    `json:"x" yaml:"x"`
	Y           int    `json:"y" yaml:"y"`
}

// NewAvatarConfig 创建默认头像配置
func NewAvatarConfig() *AvatarConfig {
	return &AvatarConfig{
		URLTemplate: "http://q.qlogo.cn/g?b=qq&nk=%s&s=640",
		TTLSeconds:  86400,
		Width:       150,
		Height:      150,
		X:           60,
		Y:           1350,
	}
}

// PosterConfig 海报画布与排版配置
type PosterConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	FontName string `json:"font_name" yaml:"font_name"`
	FontDir  string `json:"font_dir" yaml:"font_dir"`

	WrapWidth   int `json:"wrap_width" yaml:"wrap_width"`
	LeftPadding int `json:"left_padding" yaml:"left_padding"`

	TextBoxY      int `json:"text_box_y" yaml:"text_box_y"`
	TextBoxHeight int `json:"text_box_height" yaml:"text_box_height"`
	TextBoxRadius int `json:"text_box_radius" yaml:"text_box_radius"`

	DateY      int `json:"date_y" yaml:"date_y"`
	SummaryY   int `json:"summary_y" yaml:"summary_y"`
	LuckyStarY int `json:"lucky_star_y" yaml:"lucky_star_y"`
	SignTextY  int `json:"sign_text_y" yaml:"sign_text_y"`
	UnsignY    int `json:"unsign_y" yaml:"unsign_y"`
	WarningY   int `json:"warning_y" yaml:"warning_y"`
}

// NewPosterConfig 创建默认海报配置
func NewPosterConfig() *PosterConfig {
	return &PosterConfig{
		Width:         1080,
		Height:        1920,
		FontName:      "千图马克手写体.ttf",
		FontDir:       "fonts",
		WrapWidth:     1000,
		LeftPadding:   20,
		TextBoxY:      1270,
		TextBoxHeight: 700,
		TextBoxRadius: 50,
		DateY:         1300,
		SummaryY:      1400,
		LuckyStarY:    1500,
		SignTextY:     1600,
		UnsignY:       1700,
		WarningY:      1850,
	}
}

// BackgroundConfig 背景图获取与预缓存配置
type BackgroundConfig struct {
	PrecacheEnabled  bool   `json:"precache_enabled" yaml:"precache_enabled"`
	Concurrency      int    `json:"concurrency" yaml:"concurrency"`
	CleanupDownloads bool   `json:"cleanup_downloads" yaml:"cleanup_downloads"`
	RefreshCron      string `json:"refresh_cron" yaml:"refresh_cron"`
}

// NewBackgroundConfig 创建默认背景图配置
func NewBackgroundConfig() *BackgroundConfig {
	return &BackgroundConfig{
		PrecacheEnabled:  true,
		Concurrency:      3,
		CleanupDownloads: true,
		RefreshCron:      "0 4 * * *",
	}
}

// EffectiveConcurrency 返回限制在[1,10]范围内的并发数
func (c *BackgroundConfig) EffectiveConcurrency() int {
	n := c.Concurrency
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	return n
}

// DownloadConfig 下载器配置
type DownloadConfig struct {
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`
	// Retries 5xx或超时后的额外重试次数
	Retries int `json:"retries" yaml:"retries"`
}

// NewDownloadConfig 创建默认下载器配置
func NewDownloadConfig() *DownloadConfig {
	return &DownloadConfig{
		TimeoutSeconds: 5,
		Retries:        1,
	}
}

// BotConfig 机器人触发配置
type BotConfig struct {
	// KeywordEnabled 是否允许纯关键词触发
	KeywordEnabled bool `json:"keyword_enabled" yaml:"keyword_enabled"`
}

// NewBotConfig 创建默认机器人配置
func NewBotConfig() *BotConfig {
	return &BotConfig{
		KeywordEnabled: true,
	}
}

// RedisConfig Redis状态上报配置，关闭时预缓存状态仅写日志
type RedisConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// NewRedisConfig 创建默认Redis配置
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Enabled: false,
		Addr:    "localhost:6379",
		DB:      0,
	}
}
