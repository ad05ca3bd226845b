package logger

import (
	"io"
	"os"
	"strconv"
	"strings"
)

// Option 配置选项
type Option func(*Config)

// WithConfig 使用完整配置，通常放在选项列表最前面
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		*c = *cfg
	}
}

// WithLevel 设置日志级别，空字符串保持原值
func WithLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.Level = level
		}
	}
}

// WithEncoding 设置控制台编码格式 (console/json)
func WithEncoding(encoding string) Option {
	return func(c *Config) {
		c.Encoding = encoding
	}
}

// WithEnvironment 设置环境，production 会切换为 json 编码并开启采样
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
		if isProduction(env) {
			c.Environment = "production"
			c.Encoding = "json"
			c.EnableSampling = true
			c.ColorConsole = false
		}
	}
}

// WithConsole 配置控制台输出
func WithConsole(enabled, colored bool) Option {
	return func(c *Config) {
		c.EnableConsole = enabled
		c.ColorConsole = colored
	}
}

// WithConsoleWriter 设置控制台输出目标，默认 os.Stderr
func WithConsoleWriter(w io.Writer) Option {
	return func(c *Config) {
		c.ConsoleWriter = w
	}
}

// WithFile 配置文件输出，dir 或 filename 为空时保留默认值
func WithFile(enabled bool, dir, filename string) Option {
	return func(c *Config) {
		c.EnableFile = enabled
		if dir != "" {
			c.LogDir = dir
		}
		if filename != "" {
			c.Filename = filename
		}
	}
}

// WithRotation 配置按时间和大小轮转；maxAge 单位天，rotationTime 单位小时，rotationSize 单位 MB
func WithRotation(maxAge, rotationTime int, rotationSize int64) Option {
	return func(c *Config) {
		if maxAge > 0 {
			c.MaxAge = maxAge
		}
		if rotationTime > 0 {
			c.RotationTime = rotationTime
		}
		if rotationSize > 0 {
			c.RotationSize = rotationSize
		}
	}
}

// WithRotationCount 按数量保留轮转文件，会覆盖 MaxAge
func WithRotationCount(count uint) Option {
	return func(c *Config) {
		c.RotationCount = count
	}
}

// WithStacktrace 配置堆栈跟踪
func WithStacktrace(enabled bool, level string) Option {
	return func(c *Config) {
		c.EnableStacktrace = enabled
		if level != "" {
			c.StacktraceLevel = level
		}
	}
}

// WithCallerSkip 设置调用者跳过层数
func WithCallerSkip(skip int) Option {
	return func(c *Config) {
		c.CallerSkip = skip
	}
}

// WithSampling 配置采样
func WithSampling(enabled bool, initial, after int) Option {
	return func(c *Config) {
		c.EnableSampling = enabled
		if initial > 0 {
			c.SamplingInitial = initial
		}
		if after > 0 {
			c.SamplingAfter = after
		}
	}
}

// 环境变量
const (
	EnvLevel          = "LOG_LEVEL"
	EnvEnvironment    = "LOG_ENV"
	EnvFallbackEnv    = "ENV"
	EnvDir            = "LOG_DIR"
	EnvFileEnabled    = "LOG_FILE_ENABLED"
	EnvConsoleEnabled = "LOG_CONSOLE_ENABLED"
)

// WithEnvAutoConfig 根据环境变量自动配置，未设置的变量不改变配置
func WithEnvAutoConfig() Option {
	return func(c *Config) {
		if level := os.Getenv(EnvLevel); level != "" {
			c.Level = strings.ToLower(level)
		}

		env := os.Getenv(EnvEnvironment)
		if env == "" {
			env = os.Getenv(EnvFallbackEnv)
		}
		if env != "" {
			WithEnvironment(env)(c)
		}

		if dir := os.Getenv(EnvDir); dir != "" {
			c.LogDir = dir
		}

		if v, ok := envBool(EnvFileEnabled); ok {
			c.EnableFile = v
		}
		if v, ok := envBool(EnvConsoleEnabled); ok {
			c.EnableConsole = v
		}
	}
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func isProduction(env string) bool {
	return strings.EqualFold(env, "production") || strings.EqualFold(env, "prod")
}
