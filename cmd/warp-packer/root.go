package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp-runner/warp-runner/internal/version"
)

// newRootCmd 构建 warp-packer 根命令。
func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "warp-packer",
		Short:         "Create self-contained single binary applications",
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress details")

	newLogger := func() *logrus.Logger {
		logger := logrus.New()
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
		logger.SetLevel(logrus.WarnLevel)
		if verbose {
			logger.SetLevel(logrus.InfoLevel)
		}
		return logger
	}

	cmd.AddCommand(newPackCmd(newLogger))
	return cmd
}
