package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/palemoky/wudi/internal/config"
)

var (
	// Log 全局日志，Init 之前是一个不输出任何内容的 logger
	Log     = zap.NewNop()
	logPath string
)

// Init 按配置初始化全局日志。cfg.File 为空时输出到 stderr
func Init(cfg config.LogConfig) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("无法识别的日志级别 %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logPath = ""
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logPath = cfg.File
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}

	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Log = l
	Log.Info("logger initialized", zap.String("level", level.String()), zap.String("file", logPath))
	return nil
}

// L 返回全局日志
func L() *zap.Logger {
	return Log
}

// Close 刷新缓冲
func Close() {
	_ = Log.Sync()
}

// LogPanic 记录 recover 到的 panic 和调用栈
func LogPanic(r any) {
	Log.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
}
