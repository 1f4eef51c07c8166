package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp-runner/warp-runner/internal/packer"
)

// newPackCmd 构建 pack 子命令：给 runner 打补丁并追加应用目录的 payload。
func newPackCmd(newLogger func() *logrus.Logger) *cobra.Command {
	var opts packer.Options

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack an application directory into a self-extracting executable",
		Long: `Copies the runner binary, patches its build UID and target name, and appends
a gzip-compressed tar of the input directory. At run time the runner unpacks the
payload into the local cache once per build and executes the target from there.`,
		Example: `  warp-packer pack --runner ./warp-runner --input-dir ./dist --exec bin/app --output ./app`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Logger = newLogger()
			res, err := packer.Pack(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("pack failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (build %s, %d bytes payload)\n", res.Output, res.BuildUID, res.ArchiveBytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Runner, "runner", "", "path to the unpatched runner binary")
	cmd.Flags().StringVarP(&opts.InputDir, "input-dir", "i", "", "application directory to pack")
	cmd.Flags().StringVarP(&opts.Exec, "exec", "e", "", "target executable, relative to the input directory")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output executable path")
	cmd.Flags().StringVar(&opts.BuildUID, "uid", "", "build UID keying the cache (default: random UUID)")
	for _, name := range []string{"runner", "input-dir", "exec", "output"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
