package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/constellation39/confread/buildinfo"
	"github.com/constellation39/confread/lifecycle"
	"github.com/constellation39/confread/loader"
	"github.com/constellation39/confread/logger"
)

// DefaultConfigPath 相对于当前工作目录解析
const DefaultConfigPath = "config.txt"

const (
	contentsHeader = "Config Contents:"
	successMessage = "Config file read successfully."
	failureMessage = "An error occurred while reading the config file."
)

// readConfig 是受保护区域内调用的读取函数，测试中可替换为会 panic 的 loader.MustReadConfig
var readConfig = loader.ReadConfig

// ExitError 表示已经向用户报告过的失败，只携带退出码
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "confread [path]",
		Short:         "Print the contents of a configuration file",
		Long:          "Print the contents of a configuration file. The path defaults to " + DefaultConfigPath + " in the current directory.",
		Args:          cobra.MaximumNArgs(1),
		Version:       buildinfo.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if _, err := zapcore.ParseLevel(logLevel); err != nil {
					return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
				}
			}
			path := DefaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			return readAndReport(stdout, stderr, path, logLevel)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error), overrides "+logger.EnvLevel)

	return cmd
}

// setupLogger 按环境变量初始化全局日志；环境配置无效时退回默认控制台日志，不影响读取
func setupLogger(stderr io.Writer, logLevel string) {
	log, err := logger.New(
		logger.WithEnvAutoConfig(),
		logger.WithLevel(logLevel),
		logger.WithConsoleWriter(stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "warning: %v; using default logging\n", err)
		log, err = logger.New(logger.WithLevel(logLevel), logger.WithConsoleWriter(stderr))
		if err != nil {
			fmt.Fprintf(stderr, "warning: %v; logging disabled\n", err)
			return
		}
	}
	logger.SetGlobal(log)
}

func readAndReport(stdout, stderr io.Writer, path, logLevel string) error {
	setupLogger(stderr, logLevel)

	lc := lifecycle.New()
	lc.AddCleanupHook(logger.Close)
	defer func() {
		if err := lc.Shutdown(); err != nil {
			fmt.Fprintf(stderr, "cleanup: %v\n", err)
		}
	}()

	logger.Debug("starting", buildinfo.Get().Fields()...)

	var contents string
	err := lc.Guard(func() error {
		c, err := readConfig(path)
		if err != nil {
			return err
		}
		contents = c
		return nil
	})
	if err != nil {
		logger.Error("failed to read config file",
			zap.String("path", path),
			zap.Stringer("kind", loader.KindOf(err)),
			zap.Error(err),
		)
		fmt.Fprintln(stdout, failureMessage)
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintf(stdout, "%s\n%s\n", contentsHeader, contents)
	fmt.Fprintln(stdout, successMessage)
	logger.Info("config file read", zap.String("path", path), zap.Int("bytes", len(contents)))

	return nil
}
