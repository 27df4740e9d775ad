// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"

	"daml.com/x/elm-outdated/pkg/ociremote"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/registrysource"
	"daml.com/x/elm-outdated/pkg/schema"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func Cmd(config *outdatedconfig.Config) *cobra.Command {
	var elmVersions []string

	cmd := &cobra.Command{
		Use:   "mirror <oci://registry/repo>",
		Short: "copy registry snapshots into an OCI registry",
		Long: `copy registry snapshots into an OCI registry

	the package lists of the configured registry (see --registry) are pushed as OCI artifacts
	tagged 0.19 and 0.18, so that other machines can use --registry oci://registry/repo.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := ociremote.ParseReference(args[0])
			if err != nil {
				return err
			}
			schemas, err := parseSchemas(elmVersions)
			if err != nil {
				return err
			}
			if ref.String() == config.Registry {
				return fmt.Errorf("cannot mirror %s onto itself", ref)
			}
			cmd.SilenceUsage = true

			remote, err := ociremote.NewFromConfig(config, ref)
			if err != nil {
				return err
			}

			// always read the upstream, never a cached copy
			noCache := *config
			noCache.NoCache = true
			src, err := registrysource.New(&noCache)
			if err != nil {
				return err
			}

			results, err := registrysource.Mirror(cmd.Context(), src, remote, ref.Repo, schemas)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(results)
			if err != nil {
				return err
			}
			cmd.Print(string(out))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&elmVersions, "elm-version", []string{"0.19", "0.18"}, "registries to mirror")
	return cmd
}

func parseSchemas(elmVersions []string) ([]schema.Schema, error) {
	schemas := make([]schema.Schema, 0, len(elmVersions))
	for _, v := range elmVersions {
		s, err := schema.Parse(v)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return lo.Uniq(schemas), nil
}
