// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	"daml.com/x/elm-outdated/pkg/appversion"
	"daml.com/x/elm-outdated/pkg/batch"
	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/report"
	"daml.com/x/elm-outdated/pkg/resolver"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/version"
	"daml.com/x/elm-outdated/pkg/versions"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
)

const (
	CheckToolName    = "elm_outdated_check"
	VersionsToolName = "elm_outdated_versions"
)

// Server exposes the outdated check as MCP tools
type Server struct {
	load batch.IndexLoader
}

func New(load batch.IndexLoader) *Server {
	return &Server{load: load}
}

func (s *Server) mcpServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    outdatedconfig.AppName,
			Version: appversion.GetVersion(),
		},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        CheckToolName,
		Description: "Report current, wanted and latest versions of every dependency of an Elm project",
	}, s.handleCheck)

	mcp.AddTool(server, &mcp.Tool{
		Name:        VersionsToolName,
		Description: "List the published versions of an Elm package",
	}, s.handleVersions)

	return server
}

// Run serves until ctx is cancelled or the client disconnects
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	slog.Debug("starting mcp server")
	return s.mcpServer().Run(ctx, transport)
}

type checkInput struct {
	Path string `json:"path" jsonschema:"path to the project directory holding elm.json or elm-package.json"`
	All  bool   `json:"all,omitempty" jsonschema:"include up-to-date dependencies"`
}

type outcomeOutput struct {
	Package  string `json:"package"`
	Category string `json:"category"`
	Custom   bool   `json:"custom"`
	Current  string `json:"current"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Purl     string `json:"purl"`
}

type checkOutput struct {
	Manifest   string          `json:"manifest"`
	ElmVersion string          `json:"elm_version"`
	UpToDate   bool            `json:"up_to_date"`
	Outcomes   []outcomeOutput `json:"outcomes"`
}

func (s *Server) handleCheck(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[checkInput]) (*mcp.CallToolResultFor[checkOutput], error) {
	input := params.Arguments
	if input.Path == "" {
		return &mcp.CallToolResultFor[checkOutput]{IsError: true}, fmt.Errorf("path is required")
	}

	m, err := manifest.FindAndRead(input.Path)
	if err != nil {
		return &mcp.CallToolResultFor[checkOutput]{IsError: true}, outdatederrors.Standardize(err)
	}
	idx, err := s.load(ctx, m.Schema)
	if err != nil {
		return &mcp.CallToolResultFor[checkOutput]{IsError: true}, outdatederrors.Standardize(err)
	}

	r := resolver.Resolve(m, idx)
	outdated := r.Outdated()
	view := outdated
	if input.All {
		view = r
	}

	result := checkOutput{
		Manifest:   m.Path,
		ElmVersion: m.Schema.ElmVersion(),
		UpToDate:   outdated.IsEmpty(),
		Outcomes:   lo.Map(view.Outcomes, func(o report.Outcome, _ int) outcomeOutput { return toOutput(o) }),
	}
	return &mcp.CallToolResultFor[checkOutput]{StructuredContent: result}, nil
}

func toOutput(o report.Outcome) outcomeOutput {
	return outcomeOutput{
		Package:  o.Package,
		Category: string(o.Category),
		Custom:   o.Custom,
		Current:  version.StringOr(o.Current, ""),
		Wanted:   version.StringOr(o.Wanted, ""),
		Latest:   version.StringOr(o.Latest, ""),
		Purl:     o.PackageURL(),
	}
}

type versionsInput struct {
	Package    string `json:"package" jsonschema:"package name, e.g. elm/http"`
	ElmVersion string `json:"elm_version,omitempty" jsonschema:"registry to query, 0.19 (default) or 0.18"`
}

type versionOutput struct {
	Version string   `json:"version"`
	Tags    []string `json:"tags,omitempty"`
}

type versionsOutput struct {
	Package  string          `json:"package"`
	Versions []versionOutput `json:"versions"`
}

func (s *Server) handleVersions(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[versionsInput]) (*mcp.CallToolResultFor[versionsOutput], error) {
	input := params.Arguments
	if input.Package == "" {
		return &mcp.CallToolResultFor[versionsOutput]{IsError: true}, fmt.Errorf("package is required")
	}

	sch := schema.New
	if input.ElmVersion != "" {
		var err error
		if sch, err = schema.Parse(input.ElmVersion); err != nil {
			return &mcp.CallToolResultFor[versionsOutput]{IsError: true}, err
		}
	}

	idx, err := s.load(ctx, sch)
	if err != nil {
		return &mcp.CallToolResultFor[versionsOutput]{IsError: true}, outdatederrors.Standardize(err)
	}
	if !idx.Has(input.Package) {
		return &mcp.CallToolResultFor[versionsOutput]{IsError: true}, fmt.Errorf("package %q is not published in the %s registry", input.Package, sch.ElmVersion())
	}

	result := versionsOutput{
		Package: input.Package,
		Versions: lo.Map(versions.New(idx, input.Package, nil), func(v *versions.Version, _ int) versionOutput {
			return versionOutput{Version: v.Version.String(), Tags: v.Tags}
		}),
	}
	return &mcp.CallToolResultFor[versionsOutput]{StructuredContent: result}, nil
}
