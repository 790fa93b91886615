package background

import "errors"

// Background picker error definitions using sentinel errors pattern
var (
	// ErrNoListFiles 背景URL清单目录为空
	ErrNoListFiles = errors.New("no background list files")
	// ErrNoBackground 所有候选URL都获取失败
	ErrNoBackground = errors.New("no background available")
	// ErrAlreadyRunning 预缓存任务已在运行
	ErrAlreadyRunning = errors.New("precache already running")
)
