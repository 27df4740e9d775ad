// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"os"
	"path/filepath"

	"daml.com/x/elm-outdated/pkg/oci"
	"daml.com/x/elm-outdated/pkg/schema"
)

// FileSource reads a payload from disk. A directory holds one all-packages-<elm version>.json
// per schema; a file is used for both schemas.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Fetch(_ context.Context, s schema.Schema) ([]byte, error) {
	p := f.path
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		p = filepath.Join(p, oci.SnapshotFileName(s))
	}
	return os.ReadFile(p)
}

func (f *FileSource) String() string {
	return f.path
}
