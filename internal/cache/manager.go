package cache

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/warp-runner/warp-runner/internal/logging"
)

// ManagerOptions 汇总 Manager 的依赖，零值字段由 NewManager 填充生产默认值
// （Extractor 除外，必须显式提供）。
type ManagerOptions struct {
	Fs        afero.Fs
	Extractor Extractor
	Locker    Locker
	Logger    *logrus.Logger
	Now       func() time.Time
	NewID     func() string
}

// Manager 判定缓存条目是否可用，并在 Absent/Stale 时重建它。
type Manager struct {
	fs        afero.Fs
	extractor Extractor
	locker    Locker
	logger    *logrus.Logger
	now       func() time.Time
	newID     func() string
}

// NewManager 构建 Manager，默认使用真实文件系统、flock 锁与 time.Now。
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		fs:        opts.Fs,
		extractor: opts.Extractor,
		locker:    opts.Locker,
		logger:    opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}
	if m.locker == nil {
		m.locker = NewFileLocker()
	}
	if m.logger == nil {
		m.logger = logrus.New()
		m.logger.SetOutput(io.Discard)
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// Classify 计算 entryPath 相对当前可执行文件的判定。条目不存在为 Absent；
// 其它 stat 错误以 IOError 返回。目录 mtime >= 可执行文件 mtime 为 Fresh，
// 否则为 Stale。同名的非目录文件一律视为 Stale。
func (m *Manager) Classify(self SelfInfo, entryPath string) (Verdict, error) {
	info, err := m.fs.Stat(entryPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Absent, nil
		}
		return Absent, &IOError{Op: "stat", Path: entryPath, Err: err}
	}
	if !info.IsDir() {
		return Stale, nil
	}
	if !info.ModTime().Before(self.ModTime) {
		return Fresh, nil
	}
	return Stale, nil
}

// Ensure 保证 entryPath 是当前可执行文件的新鲜解包结果，返回驱动本次动作的判定。
// Fresh 时不加锁、不解包；否则在键级锁内复查，清理旧条目，解包到私有临时目录后
// 原子 rename 到位。解包失败时临时目录被清理，错误原样上抛，不做重试。
func (m *Manager) Ensure(ctx context.Context, self SelfInfo, entryPath string) (Verdict, error) {
	key := filepath.Base(entryPath)
	verdict, err := m.Classify(self, entryPath)
	if err != nil {
		return verdict, err
	}
	m.logger.WithFields(logging.CacheFields(key, entryPath, verdict.String())).Trace("cache checked")
	if verdict == Fresh {
		return verdict, nil
	}

	parent := filepath.Dir(entryPath)
	if err := m.fs.MkdirAll(parent, 0o755); err != nil {
		return verdict, &IOError{Op: "mkdir", Path: parent, Err: err}
	}

	release, err := m.locker.Lock(lockPath(entryPath))
	switch {
	case errors.Is(err, ErrLockUnavailable):
		m.logger.WithFields(logging.BaseFields("cache_lock", key)).Debug(err.Error())
	case err != nil:
		return verdict, &IOError{Op: "lock", Path: lockPath(entryPath), Err: err}
	}
	defer release()

	// 等锁期间其它进程可能已经完成解包。
	verdict, err = m.Classify(self, entryPath)
	if err != nil {
		return verdict, err
	}
	if verdict == Fresh {
		m.logger.WithFields(logging.CacheFields(key, entryPath, verdict.String())).Trace("cache refreshed by another process")
		return verdict, nil
	}

	BestEffortClear(m.fs, entryPath)

	id := m.newID()
	tempDir := filepath.Join(parent, "."+key+"."+id+".tmp")
	if err := m.extractor.Extract(ctx, self.Path, tempDir); err != nil {
		BestEffortClear(m.fs, tempDir)
		return verdict, &IOError{Op: "extract", Path: self.Path, Err: err}
	}

	// 目录 mtime 即"最近一次成功解包"的时间，不得早于可执行文件本身。
	stamp := m.now()
	if stamp.Before(self.ModTime) {
		stamp = self.ModTime
	}
	if err := m.fs.Chtimes(tempDir, stamp, stamp); err != nil {
		BestEffortClear(m.fs, tempDir)
		return verdict, &IOError{Op: "chtimes", Path: tempDir, Err: err}
	}

	// 清理失败留下的旧条目先移到一旁，否则 rename 会因目标已存在而失败。
	var asideDir string
	if _, err := m.fs.Stat(entryPath); err == nil {
		asideDir = filepath.Join(parent, "."+key+"."+id+".old")
		if err := m.fs.Rename(entryPath, asideDir); err != nil {
			BestEffortClear(m.fs, tempDir)
			return verdict, &IOError{Op: "rename", Path: entryPath, Err: err}
		}
	}
	if err := m.fs.Rename(tempDir, entryPath); err != nil {
		BestEffortClear(m.fs, tempDir)
		return verdict, &IOError{Op: "rename", Path: entryPath, Err: err}
	}
	if asideDir != "" {
		BestEffortClear(m.fs, asideDir)
	}

	m.logger.WithFields(logging.CacheFields(key, entryPath, verdict.String())).Trace("cache extracted")
	return verdict, nil
}

// BestEffortClear 递归删除 path，永不返回错误：缺失或只删掉一部分的目录
// 都不能阻止后续解包。需要传播错误的删除请直接使用 afero.Fs.RemoveAll。
func BestEffortClear(fsys afero.Fs, path string) {
	_ = fsys.RemoveAll(path)
}
