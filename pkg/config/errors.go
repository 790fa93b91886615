package config

import "errors"

// Configuration-related error definitions using sentinel errors pattern
var (
	// Generic errors
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidFormat  = errors.New("invalid configuration file format")

	// Configuration validation errors
	ErrMissingRequired = errors.New("missing required configuration item")
	ErrInvalidValue    = errors.New("invalid configuration value")

	// Section configuration errors
	ErrAvatarConfig     = errors.New("avatar configuration error")
	ErrPosterConfig     = errors.New("poster configuration error")
	ErrBackgroundConfig = errors.New("background configuration error")
	ErrDownloadConfig   = errors.New("download configuration error")
	ErrRedisConfig      = errors.New("redis configuration error")
	ErrInvalidCron      = errors.New("invalid Cron expression")
)
