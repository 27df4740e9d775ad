// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"log/slog"
	"path/filepath"

	"daml.com/x/elm-outdated/pkg/batch"
	"daml.com/x/elm-outdated/pkg/outdated"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/report"
	"github.com/spf13/cobra"
)

func Cmd(config *outdatedconfig.Config, exitFn func(exitCode int)) *cobra.Command {
	var all bool
	var output string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "check every elm project below a directory",
		Long: `check every elm project below a directory

	inside a git worktree only manifests tracked by git are considered,
	otherwise the directory tree is walked, skipping elm-stuff and node_modules.
	exits with code 1 if any project could not be checked.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}

			root, err := rootDir(args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			projects, err := batch.Discover(root)
			if err != nil {
				return err
			}
			slog.Debug("projects discovered", "root", root, "count", len(projects))
			if len(projects) == 0 {
				cmd.Println("no elm projects found")
				return nil
			}

			load, err := outdated.NewLoader(config, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			results, err := batch.Run(cmd.Context(), projects, load, concurrency)
			if err != nil {
				return err
			}

			if err := batch.Write(cmd.OutOrStdout(), root, results, format, all); err != nil {
				return err
			}
			if failed := batch.Failed(results); failed > 0 {
				slog.Warn("some projects could not be checked", "failed", failed)
				exitFn(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include up-to-date dependencies")
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatTable), "output format: table, json, yaml")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", config.Concurrency, "projects checked in parallel")
	return cmd
}

func rootDir(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	return outdatedconfig.GetProjectDir()
}
