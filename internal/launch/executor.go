package launch

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
)

// Executor 运行目标程序并返回其退出码。
type Executor interface {
	Execute(ctx context.Context, target string, args []string) (int, error)
}

// ProcessExecutor 以子进程方式运行目标，继承标准输入输出与环境变量，
// 运行期间把 SIGINT/SIGTERM 转发给子进程。
type ProcessExecutor struct{}

func (ProcessExecutor) Execute(ctx context.Context, target string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, target, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	signals := make(chan os.Signal, 4)
	signal.Notify(signals, forwardedSignals...)
	defer signal.Stop(signals)

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-signals:
				_ = cmd.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return 0, err
	}
	return exitCode(cmd.ProcessState), nil
}
