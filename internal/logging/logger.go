package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/warp-runner/warp-runner/internal/config"
)

// InitLogger 根据运行期配置初始化诊断日志。未设置 WARP_TRACE 与 WARP_LOG_FILE 时
// 日志被丢弃，runner 不向目标程序的 stdout/stderr 混入任何额外输出。
// 返回的 closer 必须在进程退出前调用，以便释放日志文件句柄。
func InitLogger(cfg config.Config, stderr io.Writer) (*logrus.Logger, io.Closer) {
	logger := logrus.New()

	if !cfg.Trace && cfg.LogFile == "" {
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.WarnLevel)
		return logger, nopCloser{}
	}

	level := logrus.InfoLevel
	if cfg.Trace {
		level = logrus.TraceLevel
	}
	logger.SetLevel(level)

	output, closer, outErr := buildOutput(cfg, stderr)
	logger.SetOutput(output)
	if output == stderr {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	if outErr != nil {
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFile,
		}).Warn(outErr.Error())
	}

	return logger, closer
}

// buildOutput 根据配置创建日志输出 Writer；失败时降级到 stderr 并返回错误。
func buildOutput(cfg config.Config, stderr io.Writer) (io.Writer, io.Closer, error) {
	if cfg.LogFile == "" {
		return stderr, nopCloser{}, nil
	}

	dir := filepath.Dir(cfg.LogFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stderr, nopCloser{}, fmt.Errorf("创建日志目录失败: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSize.Megabytes(),
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}
	return rotator, rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
