// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mcpserver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/testutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLoader(_ context.Context, s schema.Schema) (*registry.Index, error) {
	if s == schema.Old {
		return nil, outdatederrors.NewRegistryUnavailableError(errors.New("connection refused"))
	}
	return registry.Build([]registry.Record{
		{Name: "elm/core", Version: "1.0.2"},
		{Name: "elm/core", Version: "1.0.5"},
		{Name: "elm/json", Version: "1.1.3"},
	}), nil
}

func project(t *testing.T, filename, contents string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(contents), 0o644))
	return dir
}

const app = `{
    "type": "application",
    "dependencies": {
        "direct": {"elm/core": "1.0.5", "acme/private": "1.0.0"},
        "indirect": {"elm/json": "1.1.2"}
    }
}`

func TestHandleCheck(t *testing.T) {
	s := New(stubLoader)
	dir := project(t, "elm.json", app)

	result, err := s.handleCheck(testutil.Context(t), nil, &mcp.CallToolParamsFor[checkInput]{
		Arguments: checkInput{Path: dir},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	out := result.StructuredContent
	assert.Equal(t, "0.19", out.ElmVersion)
	assert.Equal(t, filepath.Join(dir, "elm.json"), out.Manifest)
	assert.False(t, out.UpToDate)
	assert.Equal(t, []string{"acme/private", "elm/json"}, lo.Map(out.Outcomes, func(o outcomeOutput, _ int) string { return o.Package }))
	assert.True(t, out.Outcomes[0].Custom)
	assert.Equal(t, "1.1.3", out.Outcomes[1].Latest)
	assert.Equal(t, "pkg:elm/elm/json@1.1.2", out.Outcomes[1].Purl)

	t.Run("all", func(t *testing.T) {
		result, err := s.handleCheck(testutil.Context(t), nil, &mcp.CallToolParamsFor[checkInput]{
			Arguments: checkInput{Path: dir, All: true},
		})
		require.NoError(t, err)
		assert.Len(t, result.StructuredContent.Outcomes, 3)
	})
}

func TestHandleCheckErrors(t *testing.T) {
	s := New(stubLoader)

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing manifest", t.TempDir(), outdatederrors.ManifestNotFound},
		{"malformed manifest", project(t, "elm.json", `{"type": "application"`), outdatederrors.MalformedManifest},
		{"registry down", project(t, "elm-package.json", `{"dependencies": {}}`), outdatederrors.RegistryUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := s.handleCheck(testutil.Context(t), nil, &mcp.CallToolParamsFor[checkInput]{
				Arguments: checkInput{Path: tc.path},
			})
			require.Error(t, err)
			assert.True(t, result.IsError)
			var runErr *outdatederrors.RunError
			require.ErrorAs(t, err, &runErr)
			assert.Equal(t, tc.code, runErr.Code)
		})
	}

	t.Run("path required", func(t *testing.T) {
		_, err := s.handleCheck(testutil.Context(t), nil, &mcp.CallToolParamsFor[checkInput]{})
		assert.ErrorContains(t, err, "path is required")
	})
}

func TestHandleVersions(t *testing.T) {
	s := New(stubLoader)

	result, err := s.handleVersions(testutil.Context(t), nil, &mcp.CallToolParamsFor[versionsInput]{
		Arguments: versionsInput{Package: "elm/core"},
	})
	require.NoError(t, err)
	assert.Equal(t, []versionOutput{
		{Version: "1.0.2"},
		{Version: "1.0.5", Tags: []string{"latest"}},
	}, result.StructuredContent.Versions)

	tests := []struct {
		name  string
		input versionsInput
	}{
		{"package required", versionsInput{}},
		{"unknown package", versionsInput{Package: "acme/private"}},
		{"bad elm version", versionsInput{Package: "elm/core", ElmVersion: "0.17"}},
		{"registry down", versionsInput{Package: "elm/core", ElmVersion: "0.18"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := s.handleVersions(testutil.Context(t), nil, &mcp.CallToolParamsFor[versionsInput]{Arguments: tc.input})
			assert.Error(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestRegisterTools(t *testing.T) {
	assert.NotPanics(t, func() { New(stubLoader).mcpServer() })
}
