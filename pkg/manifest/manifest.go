// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"daml.com/x/elm-outdated/pkg/constraint"
	"daml.com/x/elm-outdated/pkg/schema"
	"daml.com/x/elm-outdated/pkg/version"
)

var (
	ErrManifestParse    = errors.New("cannot parse manifest")
	ErrManifestNotFound = errors.New("no manifest found")
)

type Category string

const (
	Direct       Category = "direct"
	Indirect     Category = "indirect"
	DirectTest   Category = "direct-test"
	IndirectTest Category = "indirect-test"
)

// Entry is one declared dependency, normalized across schemas.
// Current is nil when nothing is locked for the package.
type Entry struct {
	Name       string
	Category   Category
	Current    *version.Version
	Constraint *constraint.Constraint
}

// Manifest lists entries in declaration order
type Manifest struct {
	Schema  schema.Schema
	Path    string
	Entries []Entry
}

func (m *Manifest) Names() []string {
	names := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		names[i] = e.Name
	}
	return names
}

// ParseError is returned for any manifest that cannot be fully understood.
// It matches ErrManifestParse as well as its underlying cause.
type ParseError struct {
	File     string
	Fragment string
	Err      error
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "manifest"
	}
	if e.Fragment == "" {
		return fmt.Sprintf("cannot parse %s: %s", file, e.Err.Error())
	}
	return fmt.Sprintf("cannot parse %s at %s: %s", file, e.Fragment, e.Err.Error())
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrManifestParse, e.Err}
}

// Find looks for a manifest in dir, preferring elm.json over elm-package.json
func Find(dir string) (string, schema.Schema, error) {
	for _, s := range schema.All {
		p := filepath.Join(dir, s.ManifestFilename())
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, s, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", 0, err
		}
	}
	return "", 0, fmt.Errorf("%w in %s: expected %s or %s", ErrManifestNotFound, dir, schema.NewManifestFilename, schema.OldManifestFilename)
}

func Read(path string, s schema.Schema) (*Manifest, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, err.Error())
		}
		return nil, err
	}
	m, err := parse(bytes, s, path)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// FindAndRead is Find followed by Read
func FindAndRead(dir string) (*Manifest, error) {
	p, s, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return Read(p, s)
}

// Parse reads manifest contents of the given schema
func Parse(contents []byte, s schema.Schema) (*Manifest, error) {
	return parse(contents, s, "")
}

func parse(contents []byte, s schema.Schema, file string) (*Manifest, error) {
	doc, err := decode(contents, file)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	switch s {
	case schema.Old:
		entries, err = oldEntries(doc, file)
	default:
		entries, err = newEntries(doc, file)
	}
	if err != nil {
		return nil, err
	}

	return &Manifest{Schema: s, Entries: dedupe(entries)}, nil
}
