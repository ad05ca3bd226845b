// Package lifecycle 提供受保护的执行区域和退出清理。
package lifecycle

import (
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/multierr"
)

// PanicError 表示受保护区域内发生的 panic
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic occurred: %v", e.Value)
}

// Unwrap 在 panic 的值本身是 error 时返回它
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Lifecycle 生命周期管理器
type Lifecycle struct {
	mu           sync.Mutex
	cleanupHooks []func() error
	shutdownOnce sync.Once
	shutdownErr  error
}

// New 创建新的生命周期管理器
func New() *Lifecycle {
	return &Lifecycle{}
}

// AddCleanupHook 添加清理钩子，Shutdown 时按注册的逆序执行
func (l *Lifecycle) AddCleanupHook(hook func() error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupHooks = append(l.cleanupHooks, hook)
}

// Guard 在当前 goroutine 中执行 f，f 中的 panic 会被转换为 *PanicError 返回
func (l *Lifecycle) Guard(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return f()
}

// Shutdown 执行所有清理钩子，可重复调用，只执行一次
func (l *Lifecycle) Shutdown() error {
	l.shutdownOnce.Do(func() {
		l.mu.Lock()
		hooks := l.cleanupHooks
		l.cleanupHooks = nil
		l.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			err := l.Guard(hooks[i])
			l.shutdownErr = multierr.Append(l.shutdownErr, err)
		}
	})
	return l.shutdownErr
}
