// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"testing"

	"daml.com/x/elm-outdated/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotNames(t *testing.T) {
	assert.Equal(t, "0.19", SnapshotTag(schema.New))
	assert.Equal(t, "all-packages-0.18.json", SnapshotFileName(schema.Old))
}

func TestSnapshotAnnotations(t *testing.T) {
	m := map[string]string{"org.opencontainers.image.created": "2026-01-01T00:00:00Z"}
	SnapshotAnnotations{Schema: schema.Old, Packages: 42, Source: "https://package.elm-lang.org"}.AppendToMap(m)

	assert.Equal(t, "0.18", m[SnapshotSchemaAnnotation])
	assert.Equal(t, "42", m[SnapshotPackagesAnnotation])

	a, err := SnapshotAnnotationsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, SnapshotAnnotations{Schema: schema.Old, Packages: 42, Source: "https://package.elm-lang.org"}, a)

	t.Run("source is optional", func(t *testing.T) {
		m := map[string]string{}
		SnapshotAnnotations{Schema: schema.New}.AppendToMap(m)
		assert.NotContains(t, m, SnapshotSourceAnnotation)
	})

	tests := []struct {
		name string
		m    map[string]string
	}{
		{"missing schema", map[string]string{SnapshotPackagesAnnotation: "1"}},
		{"unknown schema", map[string]string{SnapshotSchemaAnnotation: "0.17"}},
		{"bad package count", map[string]string{SnapshotSchemaAnnotation: "0.19", SnapshotPackagesAnnotation: "many"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SnapshotAnnotationsFromMap(tc.m)
			assert.Error(t, err)
		})
	}
}
