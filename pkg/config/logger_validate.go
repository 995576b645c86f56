package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ZapLevel 解析日志级别，只接受 debug/info/warn/error（大小写不敏感）
func (l *ZapLogConfig) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level)))
	if err != nil || level > zapcore.ErrorLevel {
		return zapcore.InfoLevel, fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", l.Level)
	}
	return level, nil
}

// Validate 日志配置校验；Path 为空时只输出控制台，非空时目录必须可写（不存在则创建）
func (l *ZapLogConfig) Validate() error {
	if err := valid.Struct(l); err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	if _, err := l.ZapLevel(); err != nil {
		return err
	}
	if strings.TrimSpace(l.Path) == "" {
		return nil
	}

	abs, err := filepath.Abs(l.Path)
	if err != nil {
		return fmt.Errorf("resolve log.path %q: %w", l.Path, err)
	}
	if err := ensureDir(abs); err != nil {
		return fmt.Errorf("log.path %q is not a usable directory: %w", l.Path, err)
	}
	return nil
}

func ensureDir(path string) error {
	stat, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(path, 0755)
	case err != nil:
		return err
	case !stat.IsDir():
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
