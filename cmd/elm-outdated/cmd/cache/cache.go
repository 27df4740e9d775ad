// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/registrysource"
	"github.com/spf13/cobra"
)

func Cmd(config *outdatedconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "manage the local registry cache",
	}
	cmd.AddCommand(cleanCmd(config))
	return cmd
}

func cleanCmd(config *outdatedconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "delete cached registry snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := registrysource.Clean(cmd.Context(), config.CachePath, config.CacheLockPath)
			if err != nil {
				return err
			}
			for _, p := range removed {
				cmd.Printf("removed %s\n", p)
			}
			if len(removed) == 0 {
				cmd.Println("cache is already empty")
			}
			return nil
		},
	}
}
