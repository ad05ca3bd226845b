package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constellation39/confread/lifecycle"
	"github.com/constellation39/confread/loader"
	"github.com/constellation39/confread/logger"
)

// inConfigDir 切换到临时目录，content 非 nil 时写入 config.txt
func inConfigDir(t *testing.T, content *string) string {
	t.Helper()
	dir := t.TempDir()
	if content != nil {
		err := os.WriteFile(filepath.Join(dir, DefaultConfigPath), []byte(*content), 0o600)
		require.NoError(t, err, "failed to set up config file")
	}
	t.Chdir(dir)
	return dir
}

func ptr(s string) *string { return &s }

func TestRun_PrintsContents(t *testing.T) {
	inConfigDir(t, ptr("hello=world\n"))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.NoError(t, err)
	assert.Equal(t, "Config Contents:\nhello=world\n\nConfig file read successfully.\n", stdout.String())
}

func TestRun_MissingFile(t *testing.T) {
	inConfigDir(t, nil)
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.Error(t, err)
	assert.Equal(t, "An error occurred while reading the config file.\n", stdout.String())

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.True(t, loader.IsOpenFailure(err), "missing file should surface as an open failure")

	assert.Contains(t, stderr.String(), "failed to read config file")
	assert.Contains(t, stderr.String(), "open")
}

func TestRun_EmptyFile(t *testing.T) {
	inConfigDir(t, ptr(""))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.NoError(t, err)
	assert.Equal(t, "Config Contents:\n\nConfig file read successfully.\n", stdout.String())
}

func TestRun_UnreadablePathLooksLikeMissingFile(t *testing.T) {
	dir := inConfigDir(t, nil)
	// config.txt 是目录：打开成功，读取失败
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultConfigPath), 0o755))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.Error(t, err)
	assert.True(t, loader.IsReadFailure(err))
	assert.Equal(t, "An error occurred while reading the config file.\n", stdout.String())
	assert.NotContains(t, stdout.String(), "Config Contents:")
}

func TestRun_InvalidTextIsReadFailure(t *testing.T) {
	inConfigDir(t, ptr("\xff\xfe"))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrInvalidText)
	assert.Equal(t, "An error occurred while reading the config file.\n", stdout.String())
}

func TestRun_PathArgument(t *testing.T) {
	dir := inConfigDir(t, ptr("ignored=true\n"))
	other := filepath.Join(dir, "other.conf")
	require.NoError(t, os.WriteFile(other, []byte("port=8080\n"), 0o600))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{other, "--log-level", "info"})

	require.NoError(t, err)
	assert.Equal(t, "Config Contents:\nport=8080\n\nConfig file read successfully.\n", stdout.String())
	assert.Contains(t, stderr.String(), "config file read")
}

func TestRun_UsageErrors(t *testing.T) {
	inConfigDir(t, ptr("a=b\n"))

	var stdout, stderr bytes.Buffer
	err := run(&stdout, &stderr, []string{"one", "two"})
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "usage errors are not reported as exit errors")
	assert.Empty(t, stdout.String())

	stdout.Reset()
	err = run(&stdout, &stderr, []string{"--log-level", "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
	assert.Empty(t, stdout.String())
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{"--version"})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "version dev")
}

func TestRun_BadLogEnvStillReadsConfig(t *testing.T) {
	inConfigDir(t, ptr("hello=world\n"))
	t.Setenv(logger.EnvLevel, "verbose")
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.NoError(t, err)
	assert.Equal(t, "Config Contents:\nhello=world\n\nConfig file read successfully.\n", stdout.String())
	assert.Contains(t, stderr.String(), "using default logging")
}

func TestRun_UnwritableLogDirStillReportsFailure(t *testing.T) {
	dir := inConfigDir(t, nil)
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	t.Setenv(logger.EnvFileEnabled, "true")
	t.Setenv(logger.EnvDir, filepath.Join(blocker, "logs"))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.Error(t, err)
	assert.True(t, loader.IsOpenFailure(err))
	assert.Equal(t, "An error occurred while reading the config file.\n", stdout.String())
	assert.Contains(t, stderr.String(), "using default logging")
}

func TestRun_ErrorLogNamesCaller(t *testing.T) {
	inConfigDir(t, nil)
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "confread/root.go:")
	assert.NotContains(t, stderr.String(), "logger/global.go")
}

func TestRun_EmptyPathIsOpenFailure(t *testing.T) {
	inConfigDir(t, ptr("a=b\n"))
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{""})

	require.Error(t, err)
	assert.True(t, loader.IsOpenFailure(err))
	assert.Equal(t, "An error occurred while reading the config file.\n", stdout.String())
}

func TestRun_AbortingReaderIsIntercepted(t *testing.T) {
	inConfigDir(t, nil)
	orig := readConfig
	readConfig = func(path string) (string, error) {
		return loader.MustReadConfig(path), nil
	}
	t.Cleanup(func() { readConfig = orig })
	var stdout, stderr bytes.Buffer

	err := run(&stdout, &stderr, []string{})

	require.Error(t, err)
	var pe *lifecycle.PanicError
	require.ErrorAs(t, err, &pe)
	assert.True(t, loader.IsOpenFailure(err), "the panic value should still carry the open failure")
	assert.Equal(t, "An error occurred while reading the config file.\n", stdout.String())
	assert.NotContains(t, stdout.String(), "Config Contents:")
}
