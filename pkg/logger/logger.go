package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teamspeak-exporter/pkg/config"
)

type Logger = zap.Logger

// wrapperSkip 包级函数 Info→log 两层包装
const wrapperSkip = 2

var (
	baseLogger = zap.NewNop()
	mu         sync.RWMutex
)

// InitLogger 初始化全局日志（控制台 + 按天滚动的 JSON 文件）
func InitLogger(cfg *config.ZapLogConfig) (*zap.Logger, error) {
	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder(cfg.Format), zapcore.AddSync(os.Stdout), level),
	}

	if strings.TrimSpace(cfg.Path) != "" {
		writer, err := newRotateWriter(cfg)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(writer), level))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(wrapperSkip), zap.AddStacktrace(zapcore.ErrorLevel))

	mu.Lock()
	baseLogger = l
	mu.Unlock()
	return l, nil
}

// newRotateWriter 日志文件滚动：按天或按大小切割，按天数或个数清理
func newRotateWriter(cfg *config.ZapLogConfig) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", cfg.Path, err)
	}

	opts := []rotatelogs.Option{
		rotatelogs.WithRotationTime(24 * time.Hour),
		rotatelogs.WithRotationSize(int64(cfg.MaxSize) * 1024 * 1024),
	}
	// rotatelogs 不允许 MaxAge 与 RotationCount 同时设置
	if cfg.MaxBackup > 0 {
		opts = append(opts, rotatelogs.WithMaxAge(-1), rotatelogs.WithRotationCount(uint(cfg.MaxBackup)))
	} else {
		opts = append(opts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	}

	writer, err := rotatelogs.New(filepath.Join(cfg.Path, "teamspeak-exporter-%Y%m%d.log"), opts...)
	if err != nil {
		return nil, fmt.Errorf("create rotate writer: %w", err)
	}
	return writer, nil
}

func stdoutEncoder(format string) zapcore.Encoder {
	if format == "json" {
		return zapcore.NewJSONEncoder(jsonEncoderConfig())
	}

	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.ConsoleSeparator = " "
	consoleEncoderCfg.EncodeLevel = coloredLevelEncoder
	// 控制台彩色时间
	consoleEncoderCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("\033[34m%s\033[0m", t.Format("2006-01-02 15:04:05.000 -07:00")))
	}
	// Caller 两级路径
	consoleEncoderCfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		rel := filepath.Join(filepath.Base(filepath.Dir(c.File)), filepath.Base(c.File))
		enc.AppendString(fmt.Sprintf("%s:%d", rel, c.Line))
	}
	return zapcore.NewConsoleEncoder(consoleEncoderCfg)
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.TimeKey = "timestamp"
	jsonCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000 -07:00"))
	}
	jsonCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return jsonCfg
}

func coloredLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var levelStr string
	switch level {
	case zapcore.DebugLevel:
		levelStr = "\033[36mDEBUG\033[0m"
	case zapcore.InfoLevel:
		levelStr = "\033[32mINFO \033[0m"
	case zapcore.WarnLevel:
		levelStr = "\033[33mWARN \033[0m"
	case zapcore.ErrorLevel:
		levelStr = "\033[31mERROR\033[0m"
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		levelStr = "\033[35m" + level.CapitalString() + "\033[0m"
	default:
		levelStr = "UNK  "
	}
	enc.AppendString(levelStr)
}

// getGID 获取当前 goroutine 的 ID
// 栈信息类似: "goroutine 123 [running]:\n"
func getGID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	idField := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	if len(idField) > 0 {
		if id, err := strconv.Atoi(idField[0]); err == nil {
			return strconv.Itoa(id)
		}
	}
	return "0"
}

func log(level zapcore.Level, msg string, fields ...zapcore.Field) {
	mu.RLock()
	l := baseLogger
	mu.RUnlock()

	if ce := l.Check(level, msg); ce != nil {
		ce.Write(append(fields, zap.String("goid", getGID()))...)
	}
}

func Debug(msg string, fields ...zapcore.Field) { log(zap.DebugLevel, msg, fields...) }
func Info(msg string, fields ...zapcore.Field)  { log(zap.InfoLevel, msg, fields...) }
func Warn(msg string, fields ...zapcore.Field)  { log(zap.WarnLevel, msg, fields...) }
func Error(msg string, fields ...zapcore.Field) { log(zap.ErrorLevel, msg, fields...) }
func Panic(msg string, fields ...zapcore.Field) { log(zap.PanicLevel, msg, fields...) }
func Fatal(msg string, fields ...zapcore.Field) { log(zap.FatalLevel, msg, fields...) }

// Sync 刷盘（忽略 stdout 不支持 fsync 的错误）
func Sync() error {
	mu.RLock()
	l := baseLogger
	mu.RUnlock()

	err := l.Sync()
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && pathErr.Path == "/dev/stdout" {
		return nil
	}
	return err
}

// ReplaceGlobal 替换全局 logger，返回恢复函数（与 zap.ReplaceGlobals 用法一致）
func ReplaceGlobal(l *zap.Logger) func() {
	mu.Lock()
	prev := baseLogger
	baseLogger = l
	mu.Unlock()
	return func() { ReplaceGlobal(prev) }
}

// GetGlobalLogger 返回全局 zap.Logger（未初始化时为 Nop），供直接调用的场景使用
func GetGlobalLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return baseLogger.WithOptions(zap.AddCallerSkip(-wrapperSkip))
}
