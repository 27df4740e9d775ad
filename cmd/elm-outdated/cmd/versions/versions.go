// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package versions

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/outdated"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/report"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/versions"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func Cmd(config *outdatedconfig.Config) *cobra.Command {
	var output, elmVersion string
	var last int

	cmd := &cobra.Command{
		Use:   "versions <package>",
		Short: "show published versions of a package",
		Long: `show published versions of a package

	inside an elm project the current, wanted and latest versions are tagged
	and versions outside the declared range are dimmed.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}
			name := args[0]

			s, entry, err := projectEntry(name)
			if err != nil {
				return err
			}
			if elmVersion != "" {
				requested, err := schema.Parse(elmVersion)
				if err != nil {
					return err
				}
				if requested != s {
					entry = nil
				}
				s = requested
			}
			cmd.SilenceUsage = true

			load, err := outdated.NewLoader(config, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			idx, err := load(cmd.Context(), s)
			if err != nil {
				return err
			}
			if !idx.Has(name) {
				return fmt.Errorf("package %q is not published in the %s registry", name, s.ElmVersion())
			}

			v := versions.New(idx, name, entry).Last(last)

			switch format {
			case report.FormatTable:
				cmd.Println(v.Table())
			case report.FormatJSON:
				data, err := json.MarshalIndent(v, "", "    ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
			case report.FormatYAML:
				data, err := yaml.Marshal(v)
				if err != nil {
					return err
				}
				cmd.Print(string(data))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatTable), "output format: table, json, yaml")
	cmd.Flags().StringVar(&elmVersion, "elm-version", "", "registry to query: 0.19 or 0.18 (default: the project's, else 0.19)")
	cmd.Flags().IntVarP(&last, "last", "n", 0, "show only the n highest versions")
	return cmd
}

// projectEntry looks name up in the manifest of the current project, if there is one
func projectEntry(name string) (schema.Schema, *manifest.Entry, error) {
	dir, err := outdatedconfig.GetProjectDir()
	if err != nil {
		return schema.New, nil, err
	}

	m, err := manifest.FindAndRead(dir)
	if errors.Is(err, manifest.ErrManifestNotFound) {
		return schema.New, nil, nil
	}
	if err != nil {
		slog.Warn("ignoring unreadable manifest", "dir", dir, "err", err.Error())
		return schema.New, nil, nil
	}

	entry, ok := lo.Find(m.Entries, func(e manifest.Entry) bool { return e.Name == name })
	if !ok {
		return m.Schema, nil, nil
	}
	return m.Schema, &entry, nil
}
