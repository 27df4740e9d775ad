// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"fmt"
	"log/slog"

	"daml.com/x/elm-outdated/pkg/oci"
	"daml.com/x/elm-outdated/pkg/ociremote"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/schema"
)

type MirrorResult struct {
	Schema   schema.Schema `json:"schema" yaml:"schema"`
	Tag      string        `json:"tag" yaml:"tag"`
	Digest   string        `json:"digest" yaml:"digest"`
	Packages int           `json:"packages" yaml:"packages"`
}

// Mirror copies the snapshot of every schema in schemas from src into repoName.
// Each payload is validated before it is pushed; nothing is pushed for a schema whose payload is malformed.
func Mirror(ctx context.Context, src Source, remote *ociremote.Remote, repoName string, schemas []schema.Schema) ([]MirrorResult, error) {
	results := make([]MirrorResult, 0, len(schemas))
	for _, s := range schemas {
		data, err := src.Fetch(ctx, s)
		if err != nil {
			return results, fmt.Errorf("reading %s registry from %s: %w", s.ElmVersion(), src, err)
		}
		idx, err := registry.Load(data)
		if err != nil {
			return results, fmt.Errorf("%s registry from %s: %w", s.ElmVersion(), src, err)
		}

		desc, err := PushSnapshot(ctx, remote, repoName, s, data, oci.SnapshotAnnotations{
			Packages: idx.Len(),
			Source:   src.String(),
		})
		if err != nil {
			return results, fmt.Errorf("pushing %s snapshot: %w", s.ElmVersion(), err)
		}
		slog.Info("mirrored registry snapshot", "schema", s.ElmVersion(), "digest", desc.Digest.String(), "packages", idx.Len())

		results = append(results, MirrorResult{
			Schema:   s,
			Tag:      oci.SnapshotTag(s),
			Digest:   desc.Digest.String(),
			Packages: idx.Len(),
		})
	}
	return results, nil
}
