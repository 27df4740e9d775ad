// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"daml.com/x/elm-outdated/pkg/mcpserver"
	"daml.com/x/elm-outdated/pkg/outdated"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func Cmd(config *outdatedconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "serve the outdated check as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// stdout carries the protocol, so no spinner
			load, err := outdated.NewLoader(config, nil)
			if err != nil {
				return err
			}
			return mcpserver.New(load).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
