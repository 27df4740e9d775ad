// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"daml.com/x/elm-outdated/pkg/oci"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/testutil"
	"daml.com/x/elm-outdated/pkg/version"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, s schema.Schema) string {
	data, err := os.ReadFile(filepath.Join("testdata", oci.SnapshotFileName(s)))
	require.NoError(t, err)
	return string(data)
}

func elmRegistry(t *testing.T) *testutil.ElmRegistry {
	return testutil.StartElmRegistry(t, map[string]string{
		"0.19": payload(t, schema.New),
		"0.18": payload(t, schema.Old),
	})
}

func TestHTTPSource(t *testing.T) {
	ctx := testutil.Context(t)
	reg := elmRegistry(t)
	src := NewHTTPSource(reg.URL+"/", NewFetcher())

	assert.Equal(t, reg.URL+"/all-packages?elm-package-version=0.19", src.URL(schema.New))

	idx, err := Load(ctx, src, schema.New)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, version.MustParse("1.0.5"), *idx.MaxOverall("elm/core"))

	idx, err = Load(ctx, src, schema.Old)
	require.NoError(t, err)
	assert.Equal(t, version.MustParse("5.1.1"), *idx.MaxOverall("elm-lang/core"))
}

func TestLoadErrors(t *testing.T) {
	ctx := testutil.Context(t)

	t.Run("unavailable", func(t *testing.T) {
		reg := elmRegistry(t)
		reg.SetStatus(http.StatusNotFound)

		_, err := Load(ctx, NewHTTPSource(reg.URL, NewFetcher()), schema.New)
		var runErr *outdatederrors.RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, outdatederrors.RegistryUnavailable, runErr.Code)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "all-packages.json")
		require.NoError(t, os.WriteFile(p, []byte(`<html>maintenance</html>`), 0o644))

		_, err := Load(ctx, NewFileSource(p), schema.New)
		var runErr *outdatederrors.RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, outdatederrors.MalformedRegistry, runErr.Code)
	})
}

func TestFileSource(t *testing.T) {
	ctx := testutil.Context(t)

	dirSource := NewFileSource("testdata")
	data, err := dirSource.Fetch(ctx, schema.Old)
	require.NoError(t, err)
	assert.Equal(t, payload(t, schema.Old), string(data))

	fileSource := NewFileSource(filepath.Join("testdata", "all-packages-0.19.json"))
	data, err = fileSource.Fetch(ctx, schema.Old)
	require.NoError(t, err)
	assert.Equal(t, payload(t, schema.New), string(data))

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(ctx, schema.New)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type countingSource struct {
	data  string
	err   error
	calls int
}

func (c *countingSource) Fetch(context.Context, schema.Schema) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.data), nil
}

func (c *countingSource) String() string { return "counting" }

func newCached(t *testing.T, inner Source) (*CachedSource, *time.Time) {
	dir := t.TempDir()
	cached := NewCachedSource(inner, filepath.Join(dir, "cache"), filepath.Join(dir, "cache", ".lock"), time.Hour)
	now := time.Now().Add(time.Minute)
	cached.now = func() time.Time { return now }
	return cached, &now
}

func TestCachedSource(t *testing.T) {
	ctx := testutil.Context(t)
	inner := &countingSource{data: `{"elm/core": ["1.0.0"]}`}
	cached, now := newCached(t, inner)

	for range 2 {
		data, err := cached.Fetch(ctx, schema.New)
		require.NoError(t, err)
		assert.JSONEq(t, inner.data, string(data))
	}
	assert.Equal(t, 1, inner.calls, "second fetch is served from cache")
	assert.FileExists(t, filepath.Join(cached.dir, "registry-0.19.json"))

	_, err := cached.Fetch(ctx, schema.Old)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "schemas are cached separately")

	*now = now.Add(2 * time.Hour)
	inner.data = `{"elm/core": ["1.0.0", "1.0.1"]}`
	data, err := cached.Fetch(ctx, schema.New)
	require.NoError(t, err)
	assert.JSONEq(t, inner.data, string(data), "expired entries are refreshed")
	assert.Equal(t, 3, inner.calls)
}

func TestCachedSourceFallsBackToStale(t *testing.T) {
	ctx := testutil.Context(t)
	inner := &countingSource{data: `{"elm/core": ["1.0.0"]}`}
	cached, now := newCached(t, inner)

	_, err := cached.Fetch(ctx, schema.New)
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	inner.err = errors.New("connection refused")
	data, err := cached.Fetch(ctx, schema.New)
	require.NoError(t, err)
	assert.JSONEq(t, `{"elm/core": ["1.0.0"]}`, string(data))

	_, err = cached.Fetch(ctx, schema.Old)
	assert.ErrorContains(t, err, "connection refused", "nothing stale to fall back to")
}

func TestCachedSourceNeverCachesGarbage(t *testing.T) {
	ctx := testutil.Context(t)
	inner := &countingSource{data: `maintenance`}
	cached, _ := newCached(t, inner)

	_, err := cached.Fetch(ctx, schema.New)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(cached.dir, "registry-0.19.json"))
}

func TestClean(t *testing.T) {
	ctx := testutil.Context(t)
	cached, _ := newCached(t, &countingSource{data: `{}`})
	for _, s := range schema.All {
		_, err := cached.Fetch(ctx, s)
		require.NoError(t, err)
	}

	removed, err := Clean(ctx, cached.dir, cached.lockPath)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	removed, err = Clean(ctx, cached.dir, cached.lockPath)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestOCISnapshotRoundTrip(t *testing.T) {
	ctx := testutil.Context(t)
	remote, _ := testutil.StartRegistry(t, "elm/registry")

	for _, s := range schema.All {
		desc, err := PushSnapshot(ctx, remote, "elm/registry", s, []byte(payload(t, s)), oci.SnapshotAnnotations{Packages: 2, Source: "testdata"})
		require.NoError(t, err)
		assert.Equal(t, v1.MediaTypeImageManifest, desc.MediaType)
	}

	tags, found, err := remote.Tags(ctx, "elm/registry")
	require.NoError(t, err)
	assert.True(t, found)
	assert.ElementsMatch(t, []string{"0.19", "0.18"}, tags)

	src := NewOCISource(remote, "elm/registry")
	idx, err := Load(ctx, src, schema.Old)
	require.NoError(t, err)
	assert.True(t, idx.Has("elm-lang/html"))

	_, found, err = remote.Tags(ctx, "elm/missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNew(t *testing.T) {
	tests := []struct {
		registry string
		noCache  bool
		check    func(t *testing.T, src Source)
	}{
		{
			registry: "https://package.elm-lang.org",
			check: func(t *testing.T, src Source) {
				cached, ok := src.(*CachedSource)
				require.True(t, ok)
				assert.IsType(t, &HTTPSource{}, cached.inner)
			},
		},
		{
			registry: "https://package.elm-lang.org",
			noCache:  true,
			check: func(t *testing.T, src Source) {
				assert.IsType(t, &HTTPSource{}, src)
			},
		},
		{
			registry: "oci://localhost:5000/elm/registry",
			check: func(t *testing.T, src Source) {
				assert.Equal(t, "oci://localhost:5000/elm/registry", src.String())
			},
		},
		{
			registry: "file:///srv/elm/all-packages.json",
			check: func(t *testing.T, src Source) {
				assert.Equal(t, &FileSource{path: "/srv/elm/all-packages.json"}, src)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.registry, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv(outdatedconfig.RegistryEnvVar, tc.registry)
			t.Setenv(outdatedconfig.RegistryAuthConfigPathEnvVar, testutil.TestdataPath(t, "empty-docker-config.json"))
			config, err := outdatedconfig.GetWithCustomHome(home)
			require.NoError(t, err)
			config.NoCache = tc.noCache

			src, err := New(config)
			require.NoError(t, err)
			tc.check(t, src)
		})
	}

	_, err := newUncached(&outdatedconfig.Config{Registry: "oci://nohost"})
	assert.Error(t, err)
}

func TestMirror(t *testing.T) {
	ctx := testutil.Context(t)
	remote, _ := testutil.StartRegistry(t, "mirror/elm")
	upstream := NewHTTPSource(elmRegistry(t).URL, NewFetcher())

	results, err := Mirror(ctx, upstream, remote, "mirror/elm", schema.All)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "0.19", results[0].Tag)
	assert.NotEmpty(t, results[0].Digest)

	mirrored := NewOCISource(remote, "mirror/elm")
	for _, s := range schema.All {
		want, err := Load(ctx, upstream, s)
		require.NoError(t, err)
		got, err := Load(ctx, mirrored, s)
		require.NoError(t, err)
		assert.Equal(t, want.Names(), got.Names())
	}

	t.Run("malformed payload is not pushed", func(t *testing.T) {
		bad := testutil.StartElmRegistry(t, map[string]string{"0.19": "not json"})
		results, err := Mirror(ctx, NewHTTPSource(bad.URL, NewFetcher()), remote, "mirror/bad", []schema.Schema{schema.New})
		assert.ErrorIs(t, err, registry.ErrMalformedPayload)
		assert.Empty(t, results)

		_, found, err := remote.Tags(ctx, "mirror/bad")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
