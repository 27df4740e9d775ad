// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"daml.com/x/elm-outdated/cmd/elm-outdated/cmd/batch"
	"daml.com/x/elm-outdated/cmd/elm-outdated/cmd/cache"
	"daml.com/x/elm-outdated/cmd/elm-outdated/cmd/mcp"
	"daml.com/x/elm-outdated/cmd/elm-outdated/cmd/mirror"
	"daml.com/x/elm-outdated/cmd/elm-outdated/cmd/versions"
	"daml.com/x/elm-outdated/pkg/appversion"
	"daml.com/x/elm-outdated/pkg/logging"
	"daml.com/x/elm-outdated/pkg/outdated"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/report"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const Name = outdatedconfig.AppName

func RootCmd(ctx context.Context, eo *outdated.ElmOutdated) (*cobra.Command, error) {
	if len(eo.OsArgs) == 0 {
		return nil, fmt.Errorf("ElmOutdated.OsArgs must contain at least one entry similar to os.Args")
	}

	var logOut io.Writer = os.Stderr
	if eo.Stderr != nil {
		logOut = eo.Stderr
	}
	if err := logging.InitLogging(logOut); err != nil {
		return nil, err
	}

	config, err := outdatedconfig.Get()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}

	cmd := checkCmd(config)
	defer eo.SetOutputStreams(cmd)
	cmd.SetArgs(eo.OsArgs[1:])

	cmd.PersistentFlags().StringVar(&config.Registry, "registry", config.Registry, "registry to read packages from: https://host, oci://host/repo or a local path")
	cmd.PersistentFlags().BoolVar(&config.NoCache, "no-cache", config.NoCache, "always fetch a fresh registry snapshot")
	cmd.PersistentFlags().BoolVar(&config.Insecure, "insecure", config.Insecure, "allow plain http for oci:// registries")

	cmd.AddCommand(
		versions.Cmd(config),
		batch.Cmd(config, eo.Exit),
		mirror.Cmd(config),
		cache.Cmd(config),
		mcp.Cmd(config),
	)

	version, err := yaml.Marshal(appversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(version)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}

func checkCmd(config *outdatedconfig.Config) *cobra.Command {
	var all bool
	var output string

	cmd := &cobra.Command{
		Use:   Name + " [project dir]",
		Short: "show outdated dependencies of an elm project",
		Long: `show outdated dependencies of an elm project

	Reads elm.json, or elm-package.json for elm 0.18 projects, and lists for every dependency
	the locked version (current), the highest version the declared range allows (wanted)
	and the highest published version (latest).
	Packages the registry does not know are shown as custom.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}

			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			load, err := outdated.NewLoader(config, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			_, r, err := outdated.Check(cmd.Context(), load, dir)
			if err != nil {
				return err
			}

			if !all {
				r = r.Outdated()
			}
			return r.Write(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include up-to-date dependencies")
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatTable), "output format: table, json, yaml")
	return cmd
}

func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return outdatedconfig.GetProjectDir()
}
