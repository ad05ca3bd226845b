// Package loader 读取配置文件的完整文本内容。
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// ErrInvalidText 表示文件内容不是合法的 UTF-8 文本
var ErrInvalidText = errors.New("content is not valid UTF-8 text")

// Kind 区分失败发生的阶段
type Kind int

const (
	KindOpen Kind = iota + 1 // 打开文件失败
	KindRead                 // 读取或解码失败
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindRead:
		return "read"
	default:
		return "unknown"
	}
}

// Error 携带失败阶段和路径
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s config file %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReadConfig 打开 path 指向的文件并以文本形式返回全部内容。
// 失败时返回 *Error，不会返回部分内容。
func ReadConfig(path string) (string, error) {
	// filepath.Abs 会把空路径解析成当前目录
	if path == "" {
		return "", &Error{Kind: KindOpen, Path: path, Err: &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", &Error{Kind: KindOpen, Path: path, Err: err}
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", &Error{Kind: KindOpen, Path: absPath, Err: err}
	}
	defer f.Close()

	return readAll(f, absPath)
}

// ReadConfigFS 与 ReadConfig 语义相同，但从 fsys 中读取 name
func ReadConfigFS(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", &Error{Kind: KindOpen, Path: name, Err: err}
	}
	defer f.Close()

	return readAll(f, name)
}

// MustReadConfig 读取配置文件，失败则以 *Error panic
func MustReadConfig(path string) string {
	content, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}
	return content
}

func readAll(r io.Reader, path string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &Error{Kind: KindRead, Path: path, Err: err}
	}

	if !utf8.Valid(data) {
		return "", &Error{Kind: KindRead, Path: path, Err: ErrInvalidText}
	}

	return string(data), nil
}

// IsOpenFailure 报告 err 是否为打开阶段的失败
func IsOpenFailure(err error) bool {
	return KindOf(err) == KindOpen
}

// IsReadFailure 报告 err 是否为读取阶段的失败
func IsReadFailure(err error) bool {
	return KindOf(err) == KindRead
}

// KindOf 返回 err 链中 *Error 的阶段，不存在时为 0
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
