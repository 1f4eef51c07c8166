package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLocker 组合进程内互斥与锁文件上的 flock，按锁文件路径串行化
// 同一缓存键的失效与解包。锁文件为零字节，进程崩溃时内核自动释放 flock。
type FileLocker struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// NewFileLocker 构建 FileLocker。
func NewFileLocker() *FileLocker {
	return &FileLocker{locks: make(map[string]*entryLock)}
}

// Lock 阻塞直到获得 path 对应的锁。平台不支持 flock 时返回 ErrLockUnavailable，
// 此时 release 仍持有进程内锁，调用方必须照常调用。
func (l *FileLocker) Lock(path string) (func(), error) {
	unlock := l.lockInProcess(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		unlock()
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	releaseFile, err := acquireFileLock(path)
	if err != nil {
		if errors.Is(err, ErrLockUnavailable) {
			return unlock, err
		}
		unlock()
		return nil, err
	}

	return func() {
		releaseFile()
		unlock()
	}, nil
}

func (l *FileLocker) lockInProcess(path string) func() {
	l.mu.Lock()
	lock := l.locks[path]
	if lock == nil {
		lock = &entryLock{}
		l.locks[path] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, path)
		}
		l.mu.Unlock()
	}
}
