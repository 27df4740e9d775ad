// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
)

// Schema discriminates the two supported manifest generations.
type Schema int

const (
	// New is the elm.json schema (Elm 0.19)
	New Schema = iota
	// Old is the elm-package.json schema (Elm 0.18)
	Old
)

const (
	NewManifestFilename = "elm.json"
	OldManifestFilename = "elm-package.json"
)

// All lists schemas in lookup preference order
var All = []Schema{New, Old}

func (s Schema) ManifestFilename() string {
	switch s {
	case Old:
		return OldManifestFilename
	default:
		return NewManifestFilename
	}
}

// ElmVersion is the value of the registry's elm-package-version query parameter
func (s Schema) ElmVersion() string {
	switch s {
	case Old:
		return "0.18"
	default:
		return "0.19"
	}
}

func (s Schema) String() string {
	return s.ElmVersion()
}

func (s Schema) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Schema) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse accepts an elm version ("0.19"), a manifest filename, or "new"/"old"
func Parse(s string) (Schema, error) {
	switch s {
	case "0.19", NewManifestFilename, "new":
		return New, nil
	case "0.18", OldManifestFilename, "old":
		return Old, nil
	}
	return 0, fmt.Errorf("unsupported schema %q. expected one of 0.19, 0.18", s)
}

// FromFilename returns the schema whose manifest is named filename
func FromFilename(filename string) (Schema, bool) {
	for _, s := range All {
		if s.ManifestFilename() == filename {
			return s, true
		}
	}
	return 0, false
}
