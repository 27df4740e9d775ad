// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"log/slog"
	"slices"

	"daml.com/x/elm-outdated/pkg/constraint"
	"daml.com/x/elm-outdated/pkg/version"
	"github.com/samber/lo"
)

// Record is a single published (package, version) pair as found in a registry payload
type Record struct {
	Name    string
	Version string
}

// Index maps a package name to its published versions, ascending and without duplicates.
// An Index is never mutated after Build and is safe for concurrent reads.
type Index struct {
	packages map[string][]version.Version
}

// Build parses every record's version. Records whose version does not parse are skipped.
func Build(records []Record) *Index {
	packages := map[string][]version.Version{}
	skipped := 0

	for _, r := range records {
		v, err := version.Parse(r.Version)
		if err != nil {
			skipped++
			slog.Debug("skipping registry record", "package", r.Name, "version", r.Version, "err", err.Error())
			continue
		}
		packages[r.Name] = append(packages[r.Name], v)
	}

	for name, vs := range packages {
		slices.SortFunc(vs, version.Compare)
		packages[name] = slices.Compact(vs)
	}

	if skipped > 0 {
		slog.Debug("registry records skipped", "count", skipped)
	}
	return &Index{packages: packages}
}

func (i *Index) Has(name string) bool {
	_, ok := i.packages[name]
	return ok
}

// Len is the number of distinct packages
func (i *Index) Len() int {
	return len(i.packages)
}

// Names returns all package names, sorted
func (i *Index) Names() []string {
	names := lo.Keys(i.packages)
	slices.Sort(names)
	return names
}

// Versions returns a copy of the ascending version list, or nil for unknown packages
func (i *Index) Versions(name string) []version.Version {
	return slices.Clone(i.packages[name])
}

// MaxSatisfying returns the highest version of name satisfying c,
// or nil when the package is unknown or nothing satisfies c.
func (i *Index) MaxSatisfying(name string, c constraint.Constraint) *version.Version {
	vs := i.packages[name]
	for idx := len(vs) - 1; idx >= 0; idx-- {
		if c.Satisfies(vs[idx]) {
			return version.Ptr(vs[idx])
		}
	}
	return nil
}

// MaxOverall returns the highest version of name, or nil when the package is unknown
func (i *Index) MaxOverall(name string) *version.Version {
	vs := i.packages[name]
	if len(vs) == 0 {
		return nil
	}
	return version.Ptr(vs[len(vs)-1])
}
