package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig 从指定路径加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 如果配置文件不存在，返回默认配置
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := getDefaultConfig()
		mergeEnvVars(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	config := &Config{}
	ext := filepath.Ext(configPath)

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	applyDefaults(config)
	mergeEnvVars(config)
	return config, nil
}

// SaveConfig 保存配置到指定路径
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 确保目录存在
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 优先级：当前目录 > 用户配置目录 > 系统配置目录
	paths := []string{
		"./config.yaml",
		"./config.json",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".jrys", "config.yaml"),
			filepath.Join(homeDir, ".jrys", "config.json"),
		)
	}

	paths = append(paths,
		"/etc/jrys/config.yaml",
		"/etc/jrys/config.json",
	)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// 默认返回当前目录的 yaml 配置
	return "./config.yaml"
}

// applyDefaults 对配置文件缺失的段落补充默认值
func applyDefaults(config *Config) {
	if config.App == nil {
		config.App = NewAppConfig()
	}
	if config.Server == nil {
		config.Server = NewServerConfig()
	}
	if config.Data == nil {
		config.Data = NewDataConfig()
	}
	if config.Avatar == nil {
		config.Avatar = NewAvatarConfig()
	}
	if config.Poster == nil {
		config.Poster = NewPosterConfig()
	}
	if config.Background == nil {
		config.Background = NewBackgroundConfig()
	}
	if config.Download == nil {
		config.Download = NewDownloadConfig()
	}
	if config.Bot == nil {
		config.Bot = NewBotConfig()
	}
	if config.Redis == nil {
		config.Redis = NewRedisConfig()
	}
}

// mergeEnvVars 将环境变量合并到配置中
func mergeEnvVars(config *Config) {
	applyDefaults(config)
	mergeAppEnvVars(config)
	mergeServerEnvVars(config)
	mergeDataEnvVars(config)
	mergeBackgroundEnvVars(config)
	mergeRedisEnvVars(config)
}

// mergeAppEnvVars 合并App环境变量
func mergeAppEnvVars(config *Config) {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.App.LogLevel = logLevel
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		config.App.LogFile = logFile
	}
	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		config.App.Environment = env
	}
}

// mergeServerEnvVars 合并Server环境变量
func mergeServerEnvVars(config *Config) {
	if port := getEnvInt("SERVER_PORT", 0); port != 0 {
		config.Server.Port = port
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if enabled := os.Getenv("SERVER_ENABLED"); enabled != "" {
		config.Server.Enabled = enabled == "true" || enabled == "1"
	}
}

// mergeDataEnvVars 合并目录环境变量
func mergeDataEnvVars(config *Config) {
	if dataDir := os.Getenv("JRYS_DATA_DIR"); dataDir != "" {
		config.Data.DataDir = dataDir
	}
	if cacheDir := os.Getenv("JRYS_CACHE_DIR"); cacheDir != "" {
		config.Data.CacheDir = cacheDir
	}
}

// mergeBackgroundEnvVars 合并背景图环境变量
func mergeBackgroundEnvVars(config *Config) {
	if enabled := os.Getenv("BG_PRECACHE_ENABLED"); enabled != "" {
		config.Background.PrecacheEnabled = enabled == "true" || enabled == "1"
	}
	if concurrency := getEnvInt("BG_PRECACHE_CONCURRENCY", 0); concurrency != 0 {
		config.Background.Concurrency = concurrency
	}
	if cleanup := os.Getenv("BG_CLEANUP_DOWNLOADS"); cleanup != "" {
		config.Background.CleanupDownloads = cleanup == "true" || cleanup == "1"
	}
	if cron := os.Getenv("BG_REFRESH_CRON"); cron != "" {
		config.Background.RefreshCron = cron
	}
}

// mergeRedisEnvVars 合并Redis环境变量
func mergeRedisEnvVars(config *Config) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
		config.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}
}

// getEnvInt 读取整数环境变量，解析失败时返回默认值
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return parseIntOrDefault(value, defaultValue)
}

// parseIntOrDefault 解析整数，失败返回默认值
func parseIntOrDefault(value string, defaultValue int) int {
	if intVal, err := strconv.Atoi(value); err == nil {
		return intVal
	}
	return defaultValue
}
