package storage

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"jrys/pkg/logger"
)

// ActionKind 迁移动作类型
type ActionKind int

const (
	// ActionMove 把旧文件移动到新位置
	ActionMove ActionKind = iota
	// ActionDiscard 新位置已有同名且不旧于旧文件，丢弃旧文件
	ActionDiscard
)

// Action 单个文件的迁移动作
type Action struct {
	Kind   ActionKind
	Source string
	Dest   string
}

// FileStat 参与迁移规划的文件信息
type FileStat struct {
	Name    string
	ModTime time.Time
}

// FS 迁移执行所需的文件系统操作，便于测试注入
type FS interface {
	ReadDir(dir string) ([]FileStat, error)
	Rename(oldPath, newPath string) error
	Remove(path string) error
	MkdirAll(dir string) error
}

// PlanMigration 计算旧目录到新目录的迁移计划。
// 同名冲突按修改时间取新：旧文件不比新位置的新，就丢弃旧文件。
// 纯函数，不接触磁盘。
func PlanMigration(legacyDir, destDir string, legacy []FileStat, existing map[string]time.Time) []Action {
	actions := make([]Action, 0, len(legacy))
	for _, file := range legacy {
		src := filepath.Join(legacyDir, file.Name)
		dst := filepath.Join(destDir, file.Name)

		if destMtime, ok := existing[file.Name]; ok && !file.ModTime.After(destMtime) {
			actions = append(actions, Action{Kind: ActionDiscard, Source: src, Dest: dst})
			continue
		}
		actions = append(actions, Action{Kind: ActionMove, Source: src, Dest: dst})
	}
	return actions
}

// Migrate 把旧目录下的缓存文件并入新目录。
// 单个文件失败只记日志不中断，旧目录不存在直接返回。
func Migrate(fsys FS, legacyDir, destDir string) error {
	legacy, err := fsys.ReadDir(legacyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(legacy) == 0 {
		return nil
	}

	if err := fsys.MkdirAll(destDir); err != nil {
		return err
	}

	existing := map[string]time.Time{}
	if destFiles, err := fsys.ReadDir(destDir); err == nil {
		for _, file := range destFiles {
			existing[file.Name] = file.ModTime
		}
	}

	plan := PlanMigration(legacyDir, destDir, legacy, existing)
	for _, action := range plan {
		switch action.Kind {
		case ActionMove:
			if err := fsys.Rename(action.Source, action.Dest); err != nil {
				logger.Warn("迁移缓存文件失败",
					zap.String("source", action.Source),
					zap.String("dest", action.Dest),
					zap.Error(err))
			}
		case ActionDiscard:
			if err := fsys.Remove(action.Source); err != nil {
				logger.Warn("清理过期旧缓存失败",
					zap.String("source", action.Source),
					zap.Error(err))
			}
		}
	}

	logger.Info("缓存目录迁移完成",
		zap.String("legacy", legacyDir),
		zap.String("dest", destDir),
		zap.Int("files", len(plan)))
	return nil
}

// OSFS 基于真实文件系统的FS实现
type OSFS struct{}

func (OSFS) ReadDir(dir string) ([]FileStat, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	stats := make([]FileStat, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats = append(stats, FileStat{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return stats, nil
}

func (OSFS) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }
func (OSFS) Remove(path string) error             { return os.Remove(path) }
func (OSFS) MkdirAll(dir string) error            { return os.MkdirAll(dir, 0755) }
