// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/report"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/testutil"
	"github.com/fatih/color"
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	appManifest    = `{"type": "application", "dependencies": {"direct": {"elm/core": "1.0.2"}, "indirect": {}}}`
	legacyManifest = `{"dependencies": {"elm-lang/core": "5.0.0"}}`
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	for p, contents := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
	}
}

func dirs(root string, projects []Project) []string {
	var result []string
	for _, p := range projects {
		result = append(result, relative(root, p.ManifestPath))
	}
	return result
}

func TestDiscoverWalk(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"app/elm.json":                  appManifest,
		"app/elm-stuff/0.19.1/elm.json": appManifest,
		"both/elm.json":                 appManifest,
		"both/elm-package.json":         legacyManifest,
		"legacy/elm-package.json":       legacyManifest,
		"web/node_modules/pkg/elm.json": appManifest,
		"notes/readme.md":               "# notes",
	})

	projects, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/elm.json", "both/elm.json", "legacy/elm-package.json"}, dirs(root, projects))
	assert.Equal(t, schema.Old, projects[2].Schema)
}

func TestDiscoverGitTrackedOnly(t *testing.T) {
	root := t.TempDir()
	r, err := git.PlainInit(root, false)
	require.NoError(t, err)
	writeFiles(t, root, map[string]string{
		"tracked/elm.json":               appManifest,
		"nested/legacy/elm-package.json": legacyManifest,
		"untracked/elm.json":             appManifest,
	})

	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("tracked/elm.json")
	require.NoError(t, err)
	_, err = wt.Add("nested/legacy/elm-package.json")
	require.NoError(t, err)

	projects, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"nested/legacy/elm-package.json", "tracked/elm.json"}, dirs(root, projects))

	t.Run("subdirectory of the worktree", func(t *testing.T) {
		projects, err := Discover(filepath.Join(root, "nested"))
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, schema.Old, projects[0].Schema)
	})
}

func indexLoader(calls *atomic.Int32, failing ...schema.Schema) IndexLoader {
	return func(_ context.Context, s schema.Schema) (*registry.Index, error) {
		calls.Add(1)
		for _, f := range failing {
			if f == s {
				return nil, outdatederrors.NewRegistryUnavailableError(errors.New("connection refused"))
			}
		}
		return registry.Build([]registry.Record{
			{Name: "elm/core", Version: "1.0.2"},
			{Name: "elm/core", Version: "1.0.5"},
			{Name: "elm-lang/core", Version: "5.1.1"},
		}), nil
	}
}

func TestRun(t *testing.T) {
	ctx := testutil.Context(t)
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/elm.json":         appManifest,
		"b/elm.json":         `{"type": "application"}`,
		"c/elm-package.json": legacyManifest,
		"d/elm.json":         appManifest,
	})
	projects, err := Discover(root)
	require.NoError(t, err)

	var calls atomic.Int32
	results, err := Run(ctx, projects, indexLoader(&calls), 2)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, int32(2), calls.Load(), "one index per schema")

	assert.Equal(t, "elm/core", results[0].Report.Outcomes[0].Package)
	assert.Equal(t, "1.0.5", results[0].Report.Outcomes[0].Latest.String())
	assert.Nil(t, results[1].Report)
	assert.Equal(t, outdatederrors.MalformedManifest, results[1].Error.Code)
	assert.Equal(t, "5.1.1", results[2].Report.Outcomes[0].Wanted.String())
	assert.Equal(t, results[0].Report, results[3].Report)
	assert.Equal(t, 1, Failed(results))
}

func TestRunRegistryFailureOnlyAffectsItsSchema(t *testing.T) {
	ctx := testutil.Context(t)
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/elm.json":         appManifest,
		"c/elm-package.json": legacyManifest,
	})
	projects, err := Discover(root)
	require.NoError(t, err)

	var calls atomic.Int32
	results, err := Run(ctx, projects, indexLoader(&calls, schema.Old), 4)
	require.NoError(t, err)
	assert.NotNil(t, results[0].Report)
	assert.Equal(t, outdatederrors.RegistryUnavailable, results[1].Error.Code)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	projects := []Project{{Dir: "x", ManifestPath: "x/elm.json", Schema: schema.New}}
	_, err := Run(ctx, projects, func(ctx context.Context, s schema.Schema) (*registry.Index, error) {
		return nil, ctx.Err()
	}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	color.NoColor = true
	ctx := testutil.Context(t)
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/elm.json": appManifest,
		"b/elm.json": `{"type": "application"}`,
	})
	projects, err := Discover(root)
	require.NoError(t, err)
	var calls atomic.Int32
	results, err := Run(ctx, projects, indexLoader(&calls), 1)
	require.NoError(t, err)

	var table bytes.Buffer
	require.NoError(t, Write(&table, root, results, report.FormatTable, false))
	assert.Contains(t, table.String(), "a/elm.json")
	assert.Contains(t, table.String(), "1.0.5")
	assert.Contains(t, table.String(), "MALFORMED_MANIFEST")

	var out bytes.Buffer
	require.NoError(t, Write(&out, root, results, report.FormatJSON, false))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "a", decoded[0]["dir"])
	assert.Equal(t, "elm.json", decoded[0]["manifest"])
	assert.Len(t, decoded[0]["outcomes"], 1)
	assert.Equal(t, "MALFORMED_MANIFEST", decoded[1]["error"].(map[string]any)["code"])
}
