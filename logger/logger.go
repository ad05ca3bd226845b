/*
Package logger 提供基于 zap 的日志系统：

- 函数选项配置
- 控制台与文件双输出
- 基于 file-rotatelogs 的文件轮转
- 环境变量自动配置
- 全局日志器

基本使用:

	log, _ := logger.New(logger.WithLevel("debug"))
	defer log.Close()
	log.Info("reading config", zap.String("path", path))
*/
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 默认值常量
const (
	DefaultLogDir       = "logs"
	DefaultFilename     = "confread.log"
	DefaultMaxAge       = 7  // 天
	DefaultRotationTime = 24 // 小时
)

var ErrNoOutputConfigured = errors.New("logger: no output configured")

// Config 日志配置
type Config struct {
	Level       string `json:"level"`       // debug/info/warn/error/dpanic/panic/fatal
	Encoding    string `json:"encoding"`    // console 或 json
	Environment string `json:"environment"` // development 或 production

	EnableConsole bool      `json:"enable_console"`
	ColorConsole  bool      `json:"color_console"`
	ConsoleWriter io.Writer `json:"-"` // 为空时使用 os.Stderr

	EnableFile    bool   `json:"enable_file"`
	LogDir        string `json:"log_dir"`
	Filename      string `json:"filename"`
	MaxAge        int    `json:"max_age"`        // 天，与 RotationCount 互斥
	RotationTime  int    `json:"rotation_time"`  // 小时
	RotationSize  int64  `json:"rotation_size"`  // MB
	RotationCount uint   `json:"rotation_count"` // 保留文件数量

	EnableStacktrace bool   `json:"enable_stacktrace"`
	StacktraceLevel  string `json:"stacktrace_level"`

	CallerSkip int `json:"caller_skip"`

	EnableSampling  bool `json:"enable_sampling"`
	SamplingInitial int  `json:"sampling_initial"`
	SamplingAfter   int  `json:"sampling_after"`
}

// DefaultConfig 返回默认配置。
// 控制台输出写到 stderr，stdout 留给程序本身的输出。
func DefaultConfig() *Config {
	return &Config{
		Level:            "warn",
		Encoding:         "console",
		Environment:      "development",
		EnableConsole:    true,
		ColorConsole:     false,
		EnableFile:       false,
		LogDir:           DefaultLogDir,
		Filename:         DefaultFilename,
		MaxAge:           DefaultMaxAge,
		RotationTime:     DefaultRotationTime,
		EnableStacktrace: false,
		StacktraceLevel:  "error",
		SamplingInitial:  100,
		SamplingAfter:    100,
	}
}

// Logger 包装 zap.Logger 并持有需要关闭的输出
type Logger struct {
	*zap.Logger
	closers []io.Closer
}

// New 使用函数选项创建日志器
func New(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
	}

	var (
		cores   []zapcore.Core
		closers []io.Closer
	)

	if cfg.EnableFile {
		rl, err := newRotateLogs(cfg)
		if err != nil {
			return nil, err
		}
		closers = append(closers, rl)
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(newEncoderConfig(false)),
			zapcore.AddSync(rl),
			level,
		))
	}

	if cfg.EnableConsole {
		w := cfg.ConsoleWriter
		if w == nil {
			w = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(
			newConsoleEncoder(cfg),
			zapcore.Lock(zapcore.AddSync(w)),
			level,
		))
	}

	if len(cores) == 0 {
		return nil, ErrNoOutputConfigured
	}

	core := zapcore.NewTee(cores...)
	if cfg.EnableSampling {
		core = zapcore.NewSamplerWithOptions(core, time.Second, cfg.SamplingInitial, cfg.SamplingAfter)
	}

	zapOpts := []zap.Option{zap.AddCaller()}

	if cfg.EnableStacktrace {
		stLevel, err := zapcore.ParseLevel(cfg.StacktraceLevel)
		if err != nil {
			return nil, fmt.Errorf("logger: invalid stacktrace level %q: %w", cfg.StacktraceLevel, err)
		}
		zapOpts = append(zapOpts, zap.AddStacktrace(stLevel))
	}

	if strings.EqualFold(cfg.Environment, "development") {
		zapOpts = append(zapOpts, zap.Development())
	}

	if cfg.CallerSkip > 0 {
		zapOpts = append(zapOpts, zap.AddCallerSkip(cfg.CallerSkip))
	}

	return &Logger{
		Logger:  zap.New(core, zapOpts...),
		closers: closers,
	}, nil
}

// MustNew 创建日志器，失败则 panic
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic(fmt.Errorf("failed to create logger: %w", err))
	}
	return l
}

// Close 刷新缓冲并关闭文件输出
func (l *Logger) Close() error {
	err := l.Sync()
	// 控制台为终端时 Sync 会返回 EINVAL 或 ENOTTY，忽略
	if isIgnorableSyncError(err) {
		err = nil
	}
	for _, c := range l.closers {
		err = multierr.Append(err, c.Close())
	}
	l.closers = nil
	return err
}

func isIgnorableSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl for device")
}

// newRotateLogs 按配置创建轮转文件写入器，文件名形如 logs/confread.20261019.log
func newRotateLogs(cfg *Config) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: creating log dir: %w", err)
	}

	base := filepath.Join(cfg.LogDir, cfg.Filename)
	ext := filepath.Ext(base)
	pattern := strings.TrimSuffix(base, ext) + ".%Y%m%d" + ext

	rlOpts := []rotatelogs.Option{
		rotatelogs.WithLinkName(base),
		rotatelogs.WithRotationTime(time.Duration(cfg.RotationTime) * time.Hour),
	}

	// MaxAge 与 RotationCount 不能同时设置，RotationCount 优先
	if cfg.RotationCount > 0 {
		rlOpts = append(rlOpts, rotatelogs.WithRotationCount(cfg.RotationCount))
	} else if cfg.MaxAge > 0 {
		rlOpts = append(rlOpts, rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour))
	}

	if cfg.RotationSize > 0 {
		rlOpts = append(rlOpts, rotatelogs.WithRotationSize(cfg.RotationSize*1024*1024))
	}

	rl, err := rotatelogs.New(pattern, rlOpts...)
	if err != nil {
		return nil, fmt.Errorf("logger: creating rotate logs: %w", err)
	}
	return rl, nil
}

// newEncoderConfig 返回标准的编码器配置
func newEncoderConfig(color bool) zapcore.EncoderConfig {
	encodeLevel := zapcore.CapitalLevelEncoder
	if color {
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func newConsoleEncoder(cfg *Config) zapcore.Encoder {
	if strings.EqualFold(cfg.Encoding, "json") {
		return zapcore.NewJSONEncoder(newEncoderConfig(false))
	}
	return zapcore.NewConsoleEncoder(newEncoderConfig(cfg.ColorConsole))
}
