// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"fmt"
	"strconv"

	"daml.com/x/elm-outdated/pkg/schema"
)

const (
	SnapshotArtifactType   = "application/vnd.elm-outdated.registry.artifact"
	SnapshotLayerMediaType = "application/vnd.elm-outdated.registry.v1+json"

	AnnotationPrefix             = "org.elm-outdated."
	SnapshotSchemaAnnotation     = AnnotationPrefix + "schema"
	SnapshotPackagesAnnotation   = AnnotationPrefix + "packages"
	SnapshotSourceAnnotation     = AnnotationPrefix + "source"
	SnapshotLayerTitleAnnotation = "org.opencontainers.image.title"
)

// SnapshotTag is the tag a registry snapshot of schema s is stored under, e.g. "0.19"
func SnapshotTag(s schema.Schema) string {
	return s.ElmVersion()
}

// SnapshotFileName names the snapshot layer, e.g. "all-packages-0.19.json"
func SnapshotFileName(s schema.Schema) string {
	return fmt.Sprintf("all-packages-%s.json", s.ElmVersion())
}

// SnapshotAnnotations are the manifest annotations of a pushed snapshot
type SnapshotAnnotations struct {
	Schema   schema.Schema
	Packages int
	Source   string
}

func (a SnapshotAnnotations) AppendToMap(annotations map[string]string) {
	annotations[SnapshotSchemaAnnotation] = a.Schema.ElmVersion()
	annotations[SnapshotPackagesAnnotation] = strconv.Itoa(a.Packages)
	if a.Source != "" {
		annotations[SnapshotSourceAnnotation] = a.Source
	}
}

func SnapshotAnnotationsFromMap(annotations map[string]string) (SnapshotAnnotations, error) {
	raw, ok := annotations[SnapshotSchemaAnnotation]
	if !ok {
		return SnapshotAnnotations{}, fmt.Errorf("snapshot missing required %q annotation", SnapshotSchemaAnnotation)
	}
	s, err := schema.Parse(raw)
	if err != nil {
		return SnapshotAnnotations{}, err
	}

	a := SnapshotAnnotations{Schema: s, Source: annotations[SnapshotSourceAnnotation]}
	if n, ok := annotations[SnapshotPackagesAnnotation]; ok {
		if a.Packages, err = strconv.Atoi(n); err != nil {
			return SnapshotAnnotations{}, fmt.Errorf("invalid %q annotation: %w", SnapshotPackagesAnnotation, err)
		}
	}
	return a, nil
}
