// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		format string
		page   string
		index  string
	}{
		{format: "md", page: "elm-outdated_batch.md", index: "- [elm-outdated batch](elm-outdated_batch.md)"},
		{format: "rst", page: "elm-outdated_batch.rst", index: "   elm-outdated_batch\n"},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			t.Setenv(outdatedconfig.HomeEnvVar, t.TempDir())
			t.Setenv(outdatedconfig.RegistryEnvVar, "")
			dir := filepath.Join(t.TempDir(), "reference")

			require.NoError(t, generate(testutil.Context(t), dir, formats[tc.format]))

			page, err := os.ReadFile(filepath.Join(dir, tc.page))
			require.NoError(t, err)
			assert.Contains(t, string(page), "elm-outdated batch")

			index, err := os.ReadFile(filepath.Join(dir, "index"+formats[tc.format].ext))
			require.NoError(t, err)
			assert.Contains(t, string(index), tc.index)
		})
	}
}

func TestDocsCmdRejectsUnknownFormat(t *testing.T) {
	c := docsCmd()
	c.SetArgs([]string{t.TempDir(), "--format", "pdf"})
	c.SetContext(testutil.Context(t))
	assert.ErrorContains(t, c.Execute(), `unsupported format "pdf"`)
}
