package logger

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	global    atomic.Pointer[Logger]
	helper    atomic.Pointer[zap.Logger] // 跳过一层调用栈，供包级便捷函数使用
	nopLogger = zap.NewNop()
)

// Init 初始化全局日志
func Init(opts ...Option) error {
	l, err := New(opts...)
	if err != nil {
		return err
	}

	SetGlobal(l)
	return nil
}

// SetGlobal 设置全局日志实例，同时替换 zap 的全局 logger
func SetGlobal(l *Logger) {
	global.Store(l)
	helper.Store(l.WithOptions(zap.AddCallerSkip(1)))
	zap.ReplaceGlobals(l.Logger)
}

// GetGlobal 获取全局日志实例，未初始化时返回 nil
func GetGlobal() *Logger {
	return global.Load()
}

// L 返回全局 Logger（未初始化时返回 nop logger）
func L() *zap.Logger {
	if l := global.Load(); l != nil {
		return l.Logger
	}
	return nopLogger
}

// S 返回全局 SugaredLogger
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Sync 同步全局日志
func Sync() error {
	if l := global.Load(); l != nil {
		err := l.Sync()
		if isIgnorableSyncError(err) {
			return nil
		}
		return err
	}
	return nil
}

// Close 关闭全局日志并恢复为 nop logger
func Close() error {
	l := global.Swap(nil)
	helper.Store(nil)
	if l == nil {
		return nil
	}
	zap.ReplaceGlobals(nopLogger)
	return l.Close()
}

// 便捷方法 - 直接使用全局 logger，caller 指向调用方

func helperLogger() *zap.Logger {
	if h := helper.Load(); h != nil {
		return h
	}
	return nopLogger
}

// Debug 输出 Debug 级别日志
func Debug(msg string, fields ...zap.Field) {
	helperLogger().Debug(msg, fields...)
}

// Info 输出 Info 级别日志
func Info(msg string, fields ...zap.Field) {
	helperLogger().Info(msg, fields...)
}

// Warn 输出 Warn 级别日志
func Warn(msg string, fields ...zap.Field) {
	helperLogger().Warn(msg, fields...)
}

// Error 输出 Error 级别日志
func Error(msg string, fields ...zap.Field) {
	helperLogger().Error(msg, fields...)
}

// With 创建带有字段的 logger
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}
