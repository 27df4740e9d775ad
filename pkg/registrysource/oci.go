// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"daml.com/x/elm-outdated/pkg/oci"
	"daml.com/x/elm-outdated/pkg/ociremote"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/schema"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/samber/lo"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
)

// OCISource reads registry snapshots stored as OCI artifacts, tagged by elm version
type OCISource struct {
	remote   *ociremote.Remote
	repoName string
}

var _ Source = (*OCISource)(nil)

func NewOCISource(remote *ociremote.Remote, repoName string) *OCISource {
	return &OCISource{remote: remote, repoName: repoName}
}

func (o *OCISource) Fetch(ctx context.Context, s schema.Schema) ([]byte, error) {
	repo, err := o.remote.Repo(o.repoName)
	if err != nil {
		return nil, err
	}

	_, manifestBytes, err := oras.FetchBytes(ctx, repo, oci.SnapshotTag(s), oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot manifest %s:%s: %w", o, oci.SnapshotTag(s), err)
	}

	var manifest v1.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("decoding snapshot manifest: %w", err)
	}

	annotations, err := oci.SnapshotAnnotationsFromMap(manifest.Annotations)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot %s:%s: %s", registry.ErrMalformedPayload, o, oci.SnapshotTag(s), err.Error())
	}
	if annotations.Schema != s {
		return nil, fmt.Errorf("%w: snapshot %s:%s holds the %s registry", registry.ErrMalformedPayload, o, oci.SnapshotTag(s), annotations.Schema.ElmVersion())
	}

	layer, ok := lo.Find(manifest.Layers, func(d v1.Descriptor) bool {
		return d.MediaType == oci.SnapshotLayerMediaType
	})
	if !ok {
		return nil, fmt.Errorf("%w: snapshot %s:%s has no %s layer", registry.ErrMalformedPayload, o, oci.SnapshotTag(s), oci.SnapshotLayerMediaType)
	}

	return content.FetchAll(ctx, repo, layer)
}

func (o *OCISource) String() string {
	return ociremote.Reference{Registry: o.remote.Registry, Repo: o.repoName}.String()
}

// PushSnapshot stores payload as the snapshot of schema s in repoName and returns the manifest descriptor
func PushSnapshot(ctx context.Context, remote *ociremote.Remote, repoName string, s schema.Schema, payload []byte, annotations oci.SnapshotAnnotations) (*v1.Descriptor, error) {
	store := memory.New()

	layer := content.NewDescriptorFromBytes(oci.SnapshotLayerMediaType, payload)
	layer.Annotations = map[string]string{oci.SnapshotLayerTitleAnnotation: oci.SnapshotFileName(s)}
	if err := store.Push(ctx, layer, bytes.NewReader(payload)); err != nil {
		return nil, err
	}

	manifestAnnotations := map[string]string{}
	annotations.Schema = s
	annotations.AppendToMap(manifestAnnotations)

	packOpts := oras.PackManifestOptions{
		Layers:              []v1.Descriptor{layer},
		ManifestAnnotations: manifestAnnotations,
	}
	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, oci.SnapshotArtifactType, packOpts)
	if err != nil {
		return nil, err
	}

	tag := oci.SnapshotTag(s)
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return nil, err
	}

	repo, err := remote.Repo(repoName)
	if err != nil {
		return nil, err
	}
	d, err := oras.Copy(ctx, store, tag, repo, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
